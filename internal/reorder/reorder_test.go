package reorder

import (
	"testing"
	"time"

	"go-shop-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(name string, cat *uuid.UUID, catName string, stock, min int, price int64, age time.Duration) model.Product {
	p := model.Product{
		Name:         name,
		CategoryID:   cat,
		CategoryName: catName,
		Stock:        stock,
		MinStock:     min,
		Price:        decimal.NewFromInt(price),
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(age)
	return p
}

func TestAggregateMergesDuplicateRows(t *testing.T) {
	displays := uuid.New()
	a1 := product("Display A", &displays, "Displays", 1, 5, 800, 0)
	a2 := product("  display a ", &displays, "Displays", 1, 0, 900, time.Hour)

	groups := Aggregate([]model.Product{a2, a1})
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Lines, 1)

	line := groups[0].Lines[0]
	assert.Equal(t, "Displays", groups[0].CategoryName)
	assert.Equal(t, 2, line.Stock)
	assert.Equal(t, 5, line.MinStock)
	assert.Equal(t, 3, line.OrderQty)
	assert.Equal(t, a1.ID, line.ProductID, "oldest row is representative")
	assert.ElementsMatch(t, []uuid.UUID{a1.ID, a2.ID}, line.ProductIDs)
	assert.Equal(t, NoSubcategoryName, line.SubcategoryName)
}

func TestAggregateDoesNotMergeAcrossCategories(t *testing.T) {
	c1, c2 := uuid.New(), uuid.New()
	groups := Aggregate([]model.Product{
		product("Battery", &c1, "Batteries", 0, 2, 100, 0),
		product("Battery", &c2, "Spares", 5, 2, 100, 0),
	})
	require.Len(t, groups, 1)
	assert.Equal(t, "Batteries", groups[0].CategoryName)
	assert.Equal(t, 2, groups[0].Lines[0].OrderQty)
}

func TestAggregateFiltersAndSorts(t *testing.T) {
	cat := uuid.New()
	groups := Aggregate([]model.Product{
		product("Expensive", &cat, "Displays", 0, 3, 500, 0),
		product("Cheap", &cat, "Displays", 1, 3, 50, 0),
		product("Healthy", &cat, "Displays", 10, 3, 10, 0),
		product("", &cat, "Displays", 0, 3, 10, 0),
		product("Loose", nil, "", 0, 1, 5, 0),
	})

	require.Len(t, groups, 2)
	assert.Equal(t, "Displays", groups[0].CategoryName)
	assert.Equal(t, Uncategorized, groups[1].CategoryName)

	names := []string{}
	for _, l := range groups[0].Lines {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{"Cheap", "Expensive"}, names)
	assert.True(t, groups[1].Lines[0].Key[:len(UnknownCategory)] == UnknownCategory)
}

func TestAggregateIsIdempotent(t *testing.T) {
	cat := uuid.New()
	catalog := []model.Product{
		product("A", &cat, "X", 0, 4, 10, 0),
		product("a", &cat, "X", 1, 2, 12, time.Minute),
		product("B", &cat, "X", 2, 3, 10, 0),
		product("C", nil, "Y", 0, 1, 1, 0),
	}
	first := Aggregate(catalog)

	reversed := make([]model.Product, len(catalog))
	for i := range catalog {
		reversed[len(catalog)-1-i] = catalog[i]
	}
	assert.Equal(t, first, Aggregate(catalog))
	assert.Equal(t, first, Aggregate(reversed))
}

func TestOrderQtyFloor(t *testing.T) {
	assert.Equal(t, 1, OrderQty(4, 5))
	assert.Equal(t, 1, OrderQty(5, 5))
	assert.Equal(t, 4, OrderQty(1, 5))
}

func TestFind(t *testing.T) {
	groups := []CategoryGroup{{CategoryName: "A"}, {CategoryName: "B"}}
	g, ok := Find(groups, "B")
	assert.True(t, ok)
	assert.Equal(t, "B", g.CategoryName)
	_, ok = Find(groups, "C")
	assert.False(t, ok)
}
