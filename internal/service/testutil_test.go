package service

import (
	"context"
	"strings"
	"testing"

	"go-shop-pos/internal/model"
	"go-shop-pos/internal/repository"
	"go-shop-pos/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testActor = Actor{ID: "u-1", Name: "Ravi", Email: "ravi@example.com"}

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

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedProduct(t *testing.T, db *gorm.DB, p model.Product) model.Product {
	t.Helper()
	require.NoError(t, repository.NewProductRepo(db).Create(context.Background(), &p))
	return p
}

func seedCategory(t *testing.T, db *gorm.DB, name string) (model.Category, model.Subcategory) {
	t.Helper()
	ctx := context.Background()
	cat := model.Category{Name: name}
	require.NoError(t, repository.NewCategoryRepo(db).Create(ctx, &cat))
	sub := model.Subcategory{CategoryID: cat.ID, CategoryName: name, Name: name + " parts"}
	require.NoError(t, repository.NewSubcategoryRepo(db).Create(ctx, &sub))
	return cat, sub
}

func uuidPtr(id uuid.UUID) *uuid.UUID {
	return &id
}
