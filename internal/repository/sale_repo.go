package repository

import (
	"context"
	"time"

	"go-shop-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaleFilter narrows sale listings. Zero values mean "no filter".
type SaleFilter struct {
	CustomerPhone string
	From          *time.Time
	To            *time.Time
	PendingOnly   bool
}

// SalePoint is one sale reduced to what the dashboard charts need.
type SalePoint struct {
	Date  time.Time
	Total decimal.Decimal
}

type SaleRepository interface {
	WithTx(tx *gorm.DB) SaleRepository
	Create(ctx context.Context, sale *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	FindByFilter(ctx context.Context, f SaleFilter) ([]model.Sale, error)
	FindByCustomerPhone(ctx context.Context, phone string) ([]model.Sale, error)
	UpdatePayment(ctx context.Context, sale *model.Sale) error
	TotalSince(ctx context.Context, since time.Time) ([]SalePoint, error)
	SumTotals(ctx context.Context) (decimal.Decimal, decimal.Decimal, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) WithTx(tx *gorm.DB) SaleRepository {
	return &saleRepo{tx}
}

// Create inserts the sale header together with its items.
func (r *saleRepo) Create(ctx context.Context, sale *model.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.WithContext(ctx).Preload("Items").First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) FindByFilter(ctx context.Context, f SaleFilter) ([]model.Sale, error) {
	var sales []model.Sale
	q := r.db.WithContext(ctx).Preload("Items")
	if f.CustomerPhone != "" {
		q = q.Where("customer_phone = ?", f.CustomerPhone)
	}
	if f.From != nil {
		q = q.Where("date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("date <= ?", *f.To)
	}
	if f.PendingOnly {
		q = q.Where("pending_amount > 0")
	}
	err := q.Order("date DESC, id DESC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) FindByCustomerPhone(ctx context.Context, phone string) ([]model.Sale, error) {
	return r.FindByFilter(ctx, SaleFilter{CustomerPhone: phone})
}

func (r *saleRepo) UpdatePayment(ctx context.Context, sale *model.Sale) error {
	return r.db.WithContext(ctx).Model(&model.Sale{}).
		Where("id = ?", sale.ID).
		Updates(map[string]interface{}{
			"paid_amount":          sale.PaidAmount,
			"pending_amount":       sale.PendingAmount,
			"payment_status":       sale.PaymentStatus,
			"payment_completed_at": sale.PaymentCompletedAt,
			"updated_by":           sale.UpdatedBy,
		}).Error
}

func (r *saleRepo) TotalSince(ctx context.Context, since time.Time) ([]SalePoint, error) {
	var points []SalePoint
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select("date, total").
		Where("date >= ?", since).
		Order("date ASC").
		Scan(&points).Error
	return points, err
}

// SumTotals returns the sum of sale totals and of pending amounts.
func (r *saleRepo) SumTotals(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	var row struct {
		Total   decimal.Decimal
		Pending decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select("COALESCE(SUM(total), 0) AS total, COALESCE(SUM(pending_amount), 0) AS pending").
		Scan(&row).Error
	return row.Total, row.Pending, err
}
