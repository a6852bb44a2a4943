package repository

import (
	"context"

	"go-shop-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	WithTx(tx *gorm.DB) PaymentRepository
	Create(ctx context.Context, p *model.Payment) error
	FindByStatus(ctx context.Context, status model.LedgerStatus) ([]model.Payment, error)
	FindBySale(ctx context.Context, saleID uuid.UUID) ([]model.Payment, error)
}

type paymentRepo struct {
	db *gorm.DB
}

func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db}
}

func (r *paymentRepo) WithTx(tx *gorm.DB) PaymentRepository {
	return &paymentRepo{tx}
}

func (r *paymentRepo) Create(ctx context.Context, p *model.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// FindByStatus lists ledger rows newest first; an empty status lists all.
func (r *paymentRepo) FindByStatus(ctx context.Context, status model.LedgerStatus) ([]model.Payment, error) {
	var payments []model.Payment
	q := r.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC").Find(&payments).Error
	return payments, err
}

func (r *paymentRepo) FindBySale(ctx context.Context, saleID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("created_at ASC").
		Find(&payments).Error
	return payments, err
}
