// Package reorder merges duplicate catalog rows and proposes purchase order
// lines for everything below its minimum stock.
package reorder

import (
	"sort"
	"strings"

	"go-shop-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	UnknownCategory   = "unknown"
	Uncategorized     = "Uncategorized"
	NoSubcategoryName = "—"
)

// Line is one merged product group that needs restocking.
type Line struct {
	Key             string          `json:"key"`
	ProductID       uuid.UUID       `json:"product_id"`  // representative row
	ProductIDs      []uuid.UUID     `json:"product_ids"` // every merged row
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	Stock           int             `json:"stock"`
	MinStock        int             `json:"min_stock"`
	OrderQty        int             `json:"order_qty"`
	CategoryID      *uuid.UUID      `json:"category_id,omitempty"`
	CategoryName    string          `json:"category_name"`
	SubcategoryID   *uuid.UUID      `json:"subcategory_id,omitempty"`
	SubcategoryName string          `json:"subcategory_name"`
}

// CategoryGroup is the set of low-stock lines for one category.
type CategoryGroup struct {
	CategoryName string `json:"category_name"`
	Lines        []Line `json:"lines"`
}

// NormalizeName trims, collapses inner whitespace and lower-cases a name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Key is the merge key: category id (or "unknown") plus the normalized name.
func Key(p *model.Product) string {
	cat := UnknownCategory
	if p.CategoryID != nil {
		cat = p.CategoryID.String()
	}
	return cat + "_" + NormalizeName(p.Name)
}

// Merge collapses rows sharing a Key: stock is summed, minStock is the max.
// The oldest row supplies name, price and category data. Rows without a name
// are ignored.
func Merge(products []model.Product) []Line {
	rows := make([]*model.Product, len(products))
	for i := range products {
		rows[i] = &products[i]
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.Before(rows[j].CreatedAt)
		}
		return rows[i].ID.String() < rows[j].ID.String()
	})

	byKey := make(map[string]*Line)
	order := make([]string, 0, len(rows))

	for _, p := range rows {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		k := Key(p)
		if existing, ok := byKey[k]; ok {
			existing.Stock += p.Stock
			if p.MinStock > existing.MinStock {
				existing.MinStock = p.MinStock
			}
			existing.ProductIDs = append(existing.ProductIDs, p.ID)
			continue
		}
		byKey[k] = &Line{
			Key:             k,
			ProductID:       p.ID,
			ProductIDs:      []uuid.UUID{p.ID},
			Name:            strings.TrimSpace(p.Name),
			Price:           p.Price,
			Stock:           p.Stock,
			MinStock:        p.MinStock,
			CategoryID:      p.CategoryID,
			CategoryName:    p.CategoryName,
			SubcategoryID:   p.SubcategoryID,
			SubcategoryName: p.SubcategoryName,
		}
		order = append(order, k)
	}

	out := make([]Line, 0, len(order))
	for _, k := range order {
		out = append(out, *byKey[k])
	}
	return out
}

// OrderQty is the shortfall, never less than one unit.
func OrderQty(stock, minStock int) int {
	if q := minStock - stock; q > 1 {
		return q
	}
	return 1
}

// Aggregate runs the full pipeline: merge, keep stock < minStock, compute
// order quantities, group by category name and sort. The result is
// deterministic for a given catalog regardless of input order.
func Aggregate(products []model.Product) []CategoryGroup {
	groups := make(map[string][]Line)

	for _, l := range Merge(products) {
		if l.Stock >= l.MinStock {
			continue
		}
		l.OrderQty = OrderQty(l.Stock, l.MinStock)
		if l.CategoryName == "" {
			l.CategoryName = Uncategorized
		}
		if l.SubcategoryName == "" {
			l.SubcategoryName = NoSubcategoryName
		}
		groups[l.CategoryName] = append(groups[l.CategoryName], l)
	}

	out := make([]CategoryGroup, 0, len(groups))
	for name, lines := range groups {
		sort.Slice(lines, func(i, j int) bool {
			if c := lines[i].Price.Cmp(lines[j].Price); c != 0 {
				return c < 0
			}
			if lines[i].Name != lines[j].Name {
				return lines[i].Name < lines[j].Name
			}
			return lines[i].Key < lines[j].Key
		})
		out = append(out, CategoryGroup{CategoryName: name, Lines: lines})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryName < out[j].CategoryName })
	return out
}

// Find returns the group for categoryName, if any.
func Find(groups []CategoryGroup, categoryName string) (CategoryGroup, bool) {
	for _, g := range groups {
		if g.CategoryName == categoryName {
			return g, true
		}
	}
	return CategoryGroup{}, false
}
