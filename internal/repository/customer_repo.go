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

type CustomerRepository interface {
	WithTx(tx *gorm.DB) CustomerRepository
	Create(ctx context.Context, c *model.Customer) error
	FindAll(ctx context.Context) ([]model.Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*model.Customer, error)
	TouchLastVisit(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdateTotals(ctx context.Context, id uuid.UUID, purchases, pending decimal.Decimal, lastVisit time.Time) error
	UpdatePending(ctx context.Context, id uuid.UUID, pending decimal.Decimal, paidAt time.Time) error
	TouchLastPayment(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdateName(ctx context.Context, id uuid.UUID, name, updatedBy string) error
	MarkCampaignSent(ctx context.Context, id uuid.UUID, at time.Time) error
	FindWithPending(ctx context.Context) ([]model.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepo(db *gorm.DB) CustomerRepository {
	return &customerRepo{db}
}

func (r *customerRepo) WithTx(tx *gorm.DB) CustomerRepository {
	return &customerRepo{tx}
}

func (r *customerRepo) Create(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customerRepo) FindAll(ctx context.Context) ([]model.Customer, error) {
	var customers []model.Customer
	err := r.db.WithContext(ctx).Order("last_visit_at DESC, created_at DESC").Find(&customers).Error
	return customers, err
}

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepo) FindByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	var c model.Customer
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepo) TouchLastVisit(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Customer{}).
		Where("id = ?", id).
		Update("last_visit_at", at).Error
}

func (r *customerRepo) UpdateTotals(ctx context.Context, id uuid.UUID, purchases, pending decimal.Decimal, lastVisit time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Customer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_purchases":      purchases,
			"total_pending_amount": pending,
			"last_visit_at":        lastVisit,
		}).Error
}

func (r *customerRepo) UpdatePending(ctx context.Context, id uuid.UUID, pending decimal.Decimal, paidAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Customer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_pending_amount": pending,
			"last_payment_at":      paidAt,
		}).Error
}

func (r *customerRepo) TouchLastPayment(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Customer{}).
		Where("id = ?", id).
		Update("last_payment_at", at).Error
}

func (r *customerRepo) UpdateName(ctx context.Context, id uuid.UUID, name, updatedBy string) error {
	res := r.db.WithContext(ctx).Model(&model.Customer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "updated_by": updatedBy})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *customerRepo) MarkCampaignSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Customer{}).
		Where("id = ?", id).
		Update("last_campaign_sent_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *customerRepo) FindWithPending(ctx context.Context) ([]model.Customer, error) {
	var customers []model.Customer
	err := r.db.WithContext(ctx).
		Where("total_pending_amount > 0").
		Order("total_pending_amount DESC").
		Find(&customers).Error
	return customers, err
}

// Delete removes the row outright so the phone can register again.
func (r *customerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Unscoped().Delete(&model.Customer{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
