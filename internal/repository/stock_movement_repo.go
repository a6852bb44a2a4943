package repository

import (
	"context"
	"time"

	"go-shop-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockMovementRepository interface {
	WithTx(tx *gorm.DB) StockMovementRepository
	Create(ctx context.Context, m *model.StockMovement) error
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]model.StockMovement, error)
	GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error)
	GetInventoryStats(ctx context.Context, deadSince time.Time) (*InventoryStats, error)
}

// StockMovementData is one day of the IN/OUT chart.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

type InventoryStats struct {
	TotalProducts int64 `json:"total_products"`
	TotalStock    int64 `json:"total_stock"`
	OutOfStock    int64 `json:"out_of_stock"`
	LowStock      int64 `json:"low_stock"`
	FastMoving    int64 `json:"fast_moving"`
	DeadStock     int64 `json:"dead_stock"`
}

// FastMovingThreshold is the salesCount above which a product counts as fast
// moving.
const FastMovingThreshold = 10

type stockMovementRepo struct {
	db *gorm.DB
}

func NewStockMovementRepo(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db}
}

func (r *stockMovementRepo) WithTx(tx *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{tx}
}

func (r *stockMovementRepo) Create(ctx context.Context, m *model.StockMovement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *stockMovementRepo) FindByProduct(ctx context.Context, productID uuid.UUID) ([]model.StockMovement, error) {
	var moves []model.StockMovement
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&moves).Error
	return moves, err
}

func (r *stockMovementRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	rows, err := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN type = 'IN' THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN type = 'OUT' THEN quantity ELSE 0 END), 0) as outbound
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		// postgres hands DATE back as a timestamp string
		if len(data.Date) > 10 {
			data.Date = data.Date[:10]
		}
		results = append(results, data)
	}
	return results, rows.Err()
}

func (r *stockMovementRepo) GetInventoryStats(ctx context.Context, deadSince time.Time) (*InventoryStats, error) {
	var stats InventoryStats
	db := r.db.WithContext(ctx)
	products := func() *gorm.DB { return db.Model(&model.Product{}) }

	if err := products().Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := products().Select("COALESCE(SUM(stock), 0)").Scan(&stats.TotalStock).Error; err != nil {
		return nil, err
	}
	if err := products().Where("stock <= 0").Count(&stats.OutOfStock).Error; err != nil {
		return nil, err
	}
	if err := products().Where("stock < min_stock").Count(&stats.LowStock).Error; err != nil {
		return nil, err
	}
	if err := products().Where("sales_count > ?", FastMovingThreshold).Count(&stats.FastMoving).Error; err != nil {
		return nil, err
	}
	if err := products().Where("last_sold_at IS NULL OR last_sold_at < ?", deadSince).Count(&stats.DeadStock).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
