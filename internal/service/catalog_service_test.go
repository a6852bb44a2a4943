package service

import (
	"context"
	"fmt"
	"testing"

	"go-shop-pos/internal/model"
	"go-shop-pos/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCatalogService(db *gorm.DB) CatalogService {
	return NewCatalogService(db,
		repository.NewCategoryRepo(db),
		repository.NewSubcategoryRepo(db),
		repository.NewProductRepo(db),
		repository.NewPurchaseOrderRepo(db),
		repository.NewStockMovementRepo(db),
		nil,
	)
}

func TestCatalogCategoriesAndProducts(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(db)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, &CategoryRequest{Name: "Displays"}, testActor)
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, &CategoryRequest{Name: "Displays"}, testActor)
	assert.ErrorIs(t, err, ErrCategoryExists)

	sub, err := svc.CreateSubcategory(ctx, &SubcategoryRequest{CategoryID: cat.ID, Name: "Samsung"}, testActor)
	require.NoError(t, err)
	assert.Equal(t, "Displays", sub.CategoryName)

	p, err := svc.CreateProduct(ctx, &ProductRequest{
		Name:          "Samsung A10 / A10s Display",
		Price:         dec("800"),
		SellingPrice:  dec("1200"),
		Stock:         4,
		CategoryID:    &cat.ID,
		SubcategoryID: &sub.ID,
	}, testActor)
	require.NoError(t, err)
	assert.Equal(t, "Displays", p.CategoryName)
	assert.Equal(t, "Samsung", p.SubcategoryName)
	assert.Equal(t, []string{"samsung a10", "samsung", "a10", "a10s display", "a10s", "display"}, []string(p.Keywords))
	assert.Equal(t, 3, p.MinStock, "six keywords map to a threshold of three")

	page, err := svc.ListProducts(ctx, repository.ProductFilter{Keyword: "A10S"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, p.ID, page.Items[0].ID)

	page, err = svc.ListProducts(ctx, repository.ProductFilter{Keyword: "a1"})
	require.NoError(t, err)
	assert.Zero(t, page.Total, "keywords match whole tokens only")

	updated, err := svc.UpdateProduct(ctx, p.ID, &ProductRequest{
		Name: "Samsung M10 Display", Price: dec("750"), SellingPrice: dec("1100"), Stock: 7, MinStock: 4,
		CategoryID: &cat.ID,
	}, testActor)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Stock)
	assert.Equal(t, 4, updated.MinStock)
	assert.Nil(t, updated.SubcategoryID)
	assert.Contains(t, []string(updated.Keywords), "m10")

	_, err = svc.UpdateProduct(ctx, p.ID, &ProductRequest{Name: ""}, testActor)
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID, testActor))
	_, err = svc.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, svc.DeleteProduct(ctx, p.ID, testActor), ErrProductNotFound)
}

func TestDeleteProductInPendingOrder(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(db)
	reorderSvc, _ := newReorderServices(db)
	ctx := context.Background()

	cat, _ := seedCategory(t, db, "Chargers")
	p := seedProduct(t, db, model.Product{Name: "Type C 25W", Stock: 0, MinStock: 2,
		CategoryID: uuidPtr(cat.ID), CategoryName: cat.Name})
	_, err := reorderSvc.CreateOrder(ctx, "Chargers", testActor)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteProduct(ctx, p.ID, testActor), ErrProductInPendingOrder)
}

func TestBackfillKeywords(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(db)
	ctx := context.Background()

	n := BackfillBatchSize + 5
	for i := 0; i < n; i++ {
		seedProduct(t, db, model.Product{Name: fmt.Sprintf("Back Cover %d", i)})
	}

	updated, err := svc.BackfillKeywords(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, updated)

	all, err := repository.NewProductRepo(db).FindAll(ctx)
	require.NoError(t, err)
	for _, p := range all {
		assert.Contains(t, []string(p.Keywords), "cover")
		assert.Equal(t, 3, p.MinStock)
	}
}
