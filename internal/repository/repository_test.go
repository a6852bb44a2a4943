package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"go-shop-pos/internal/model"
	"go-shop-pos/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open("sqlite", "file:"+name+"?mode=memory&cache=shared", logger.Silent)
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func product(name string, stock, minStock int, kw ...string) *model.Product {
	return &model.Product{
		Name:     name,
		Price:    decimal.NewFromInt(100),
		Stock:    stock,
		MinStock: minStock,
		Keywords: model.Keywords(kw),
	}
}

func TestProductFilterMatchesWholeKeyword(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, product("Redmi Note 9 Display", 3, 2, "redmi note 9 display", "redmi", "note", "9", "display")))
	require.NoError(t, repo.Create(ctx, product("Redmi 9A Battery", 3, 2, "redmi 9a battery", "redmi", "9a", "battery")))
	require.NoError(t, repo.Create(ctx, product("Nokia Charger", 3, 2, "nokia charger", "nokia", "charger")))

	n, err := repo.Count(ctx, ProductFilter{Keyword: "Redmi"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// "9" must not match the "9a" element.
	n, err = repo.Count(ctx, ProductFilter{Keyword: "9"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	page, err := repo.FindByFilter(ctx, ProductFilter{Keyword: "redmi", Page: 2, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Redmi Note 9 Display", page[0].Name)
}

func TestProductDeleteMissingRow(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepo(db)
	ctx := context.Background()

	err := repo.Delete(ctx, uuid.New(), "u-1")
	assert.True(t, database.IsNotFound(err))

	p := product("Tempered glass", 1, 1)
	require.NoError(t, repo.Create(ctx, p))
	require.NoError(t, repo.Delete(ctx, p.ID, "u-1"))

	_, err = repo.FindByID(ctx, p.ID)
	assert.True(t, database.IsNotFound(err))

	var deleted model.Product
	require.NoError(t, db.Unscoped().First(&deleted, "id = ?", p.ID).Error)
	assert.Equal(t, "u-1", deleted.DeletedBy)
}

func TestFindByNameAndSubcategoryTreatsNilAsNull(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepo(db)
	ctx := context.Background()

	sub := uuid.New()
	withSub := product("USB hub", 1, 1)
	withSub.SubcategoryID = &sub
	require.NoError(t, repo.Create(ctx, withSub))
	require.NoError(t, repo.Create(ctx, product("USB hub", 4, 1)))

	got, err := repo.FindByNameAndSubcategory(ctx, "USB hub", nil)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Stock)

	got, err = repo.FindByNameAndSubcategory(ctx, "USB hub", &sub)
	require.NoError(t, err)
	assert.Equal(t, withSub.ID, got.ID)
}

func TestCustomerPhoneIsUnique(t *testing.T) {
	db := newTestDB(t)
	repo := NewCustomerRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Customer{Phone: "9876543210", Name: "Anil"}))
	err := repo.Create(ctx, &model.Customer{Phone: "9876543210", Name: "Anil again"})
	assert.True(t, database.IsDuplicateKey(err), "got %v", err)
}

func TestOnePendingOrderPerCategory(t *testing.T) {
	db := newTestDB(t)
	repo := NewPurchaseOrderRepo(db)
	ctx := context.Background()

	first := &model.PurchaseOrder{CategoryName: "Displays", Date: time.Now(), Status: model.OrderPending}
	require.NoError(t, repo.Create(ctx, first))

	err := repo.Create(ctx, &model.PurchaseOrder{CategoryName: "Displays", Date: time.Now(), Status: model.OrderPending})
	assert.True(t, database.IsDuplicateKey(err), "got %v", err)

	require.NoError(t, repo.Complete(ctx, first.ID, time.Now(), "u-1"))
	require.NoError(t, repo.Create(ctx, &model.PurchaseOrder{CategoryName: "Displays", Date: time.Now(), Status: model.OrderPending}))
}

func TestPurchaseOrderDeleteRemovesLines(t *testing.T) {
	db := newTestDB(t)
	repo := NewPurchaseOrderRepo(db)
	ctx := context.Background()

	order := &model.PurchaseOrder{CategoryName: "Batteries", Date: time.Now(), Status: model.OrderPending}
	require.NoError(t, repo.Create(ctx, order))
	require.NoError(t, db.Create(&[]model.PurchaseOrderItem{
		{PurchaseOrderID: order.ID, Name: "A10 Battery", OrderQty: 2, Price: decimal.NewFromInt(90)},
		{PurchaseOrderID: order.ID, Name: "A20 Battery", OrderQty: 3, Price: decimal.NewFromInt(120)},
	}).Error)

	require.NoError(t, repo.Delete(ctx, order.ID))

	var orders, items int64
	require.NoError(t, db.Unscoped().Model(&model.PurchaseOrder{}).Count(&orders).Error)
	require.NoError(t, db.Unscoped().Model(&model.PurchaseOrderItem{}).Count(&items).Error)
	assert.Zero(t, orders)
	assert.Zero(t, items)

	// the category is free for a new pending order
	require.NoError(t, repo.Create(ctx, &model.PurchaseOrder{CategoryName: "Batteries", Date: time.Now(), Status: model.OrderPending}))

	err := repo.Delete(ctx, uuid.New())
	assert.True(t, database.IsNotFound(err))
}

func TestSubcategoryIncrementCount(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	cat := model.Category{Name: "Chargers"}
	require.NoError(t, NewCategoryRepo(db).Create(ctx, &cat))
	subs := NewSubcategoryRepo(db)
	sub := model.Subcategory{CategoryID: cat.ID, CategoryName: cat.Name, Name: "Fast"}
	require.NoError(t, subs.Create(ctx, &sub))

	ok, err := subs.IncrementCount(ctx, sub.ID, 4)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := subs.FindByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Count)

	ok, err = subs.IncrementCount(ctx, uuid.New(), 4)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInventoryStats(t *testing.T) {
	db := newTestDB(t)
	products := NewProductRepo(db)
	ctx := context.Background()

	sold := time.Now().Add(-24 * time.Hour)
	fast := product("Cable", 20, 5)
	fast.SalesCount = 11
	fast.LastSoldAt = &sold
	require.NoError(t, products.Create(ctx, fast))
	require.NoError(t, products.Create(ctx, product("Case", 0, 2)))
	require.NoError(t, products.Create(ctx, product("Glass", 1, 3)))

	stats, err := NewStockMovementRepo(db).GetInventoryStats(ctx, time.Now().AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalProducts)
	assert.Equal(t, int64(21), stats.TotalStock)
	assert.Equal(t, int64(1), stats.OutOfStock)
	assert.Equal(t, int64(2), stats.LowStock)
	assert.Equal(t, int64(1), stats.FastMoving)
	assert.Equal(t, int64(2), stats.DeadStock)
}
