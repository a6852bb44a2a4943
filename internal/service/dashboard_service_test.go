package service

import (
	"context"
	"testing"
	"time"

	"go-shop-pos/internal/model"
	"go-shop-pos/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlySeries(t *testing.T) {
	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	series := MonthlySeries([]repository.SalePoint{
		{Date: feb, Total: dec("50")},
		{Date: jan, Total: dec("100")},
		{Date: jan.AddDate(0, 0, 5), Total: dec("25.50")},
	})
	require.Len(t, series, 2)
	assert.Equal(t, "2026-01", series[0].Month)
	assert.True(t, series[0].Total.Equal(dec("125.50")))
	assert.Equal(t, 2, series[0].Count)
	assert.Equal(t, "2026-02", series[1].Month)
}

func TestDashboardStats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	sales := newSaleService(db)
	dash := NewDashboardService(repository.NewStockMovementRepo(db), repository.NewSaleRepo(db))

	fast := seedProduct(t, db, model.Product{Name: "Tempered glass", SellingPrice: dec("100"), Stock: 20, MinStock: 2})
	seedProduct(t, db, model.Product{Name: "Old stock", Stock: 0, MinStock: 1})

	_, err := sales.Checkout(ctx, &CheckoutRequest{
		CustomerPhone: "9898989898", CustomerName: "Kiran",
		Items:       []CartLine{{ProductID: fast.ID, Qty: 11, SellingPrice: dec("100")}},
		PaymentMode: model.PaymentPartial, PaidAmount: dec("600"),
	}, testActor)
	require.NoError(t, err)

	stats, err := dash.GetDashboardStats(ctx, 6)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalProducts)
	assert.EqualValues(t, 9, stats.TotalStock)
	assert.EqualValues(t, 1, stats.OutOfStock)
	assert.EqualValues(t, 1, stats.LowStock)
	assert.EqualValues(t, 1, stats.FastMoving)
	assert.EqualValues(t, 1, stats.DeadStock)
	assert.True(t, stats.TotalSalesAmount.Equal(dec("1100")))
	assert.True(t, stats.TotalPendingAmount.Equal(dec("500")))
	require.Len(t, stats.MonthlySales, 1)
	assert.Equal(t, time.Now().Format("2006-01"), stats.MonthlySales[0].Month)
}
