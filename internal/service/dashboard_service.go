package service

import (
	"context"
	"sort"
	"time"

	"go-shop-pos/internal/repository"

	"github.com/shopspring/decimal"
)

// deadStockAfter is how long a product may go unsold before it counts as
// dead stock.
const deadStockAfter = 90 * 24 * time.Hour

type MonthlySales struct {
	Month string          `json:"month"` // YYYY-MM
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type DashboardStats struct {
	repository.InventoryStats
	TotalSalesAmount   decimal.Decimal `json:"total_sales_amount"`
	TotalPendingAmount decimal.Decimal `json:"total_pending_amount"`
	MonthlySales       []MonthlySales  `json:"monthly_sales"`
}

type DashboardService interface {
	GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(ctx context.Context, months int) (*DashboardStats, error)
}

type dashboardService struct {
	movementRepo repository.StockMovementRepository
	saleRepo     repository.SaleRepository
}

func NewDashboardService(movementRepo repository.StockMovementRepository, saleRepo repository.SaleRepository) DashboardService {
	return &dashboardService{movementRepo: movementRepo, saleRepo: saleRepo}
}

func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error) {
	if days < 1 {
		days = 7
	}
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.movementRepo.GetStockMovement(ctx, startDate, endDate)
}

func (s *dashboardService) GetDashboardStats(ctx context.Context, months int) (*DashboardStats, error) {
	if months < 1 {
		months = 12
	}
	now := time.Now()
	inv, err := s.movementRepo.GetInventoryStats(ctx, now.Add(-deadStockAfter))
	if err != nil {
		return nil, err
	}
	total, pending, err := s.saleRepo.SumTotals(ctx)
	if err != nil {
		return nil, err
	}

	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(months - 1), 0)
	points, err := s.saleRepo.TotalSince(ctx, since)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		InventoryStats:     *inv,
		TotalSalesAmount:   total,
		TotalPendingAmount: pending,
		MonthlySales:       MonthlySeries(points),
	}, nil
}

// MonthlySeries buckets sale points by calendar month, oldest first.
func MonthlySeries(points []repository.SalePoint) []MonthlySales {
	byMonth := make(map[string]*MonthlySales)
	for _, p := range points {
		key := p.Date.Format("2006-01")
		m, ok := byMonth[key]
		if !ok {
			m = &MonthlySales{Month: key, Total: decimal.Zero}
			byMonth[key] = m
		}
		m.Total = m.Total.Add(p.Total)
		m.Count++
	}
	out := make([]MonthlySales, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
