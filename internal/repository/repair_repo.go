package repository

import (
	"context"
	"strings"
	"time"

	"go-shop-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RepairFilter struct {
	Status model.RepairStatus
	From   *time.Time
	To     *time.Time
	Search string // customer name, phone or device
}

type RepairRepository interface {
	WithTx(tx *gorm.DB) RepairRepository
	Create(ctx context.Context, repair *model.Repair) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Repair, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Repair, error)
	FindByFilter(ctx context.Context, f RepairFilter) ([]model.Repair, error)
	FindByCustomerPhone(ctx context.Context, phone string) ([]model.Repair, error)
	Update(ctx context.Context, repair *model.Repair) error
}

type repairRepo struct {
	db *gorm.DB
}

func NewRepairRepo(db *gorm.DB) RepairRepository {
	return &repairRepo{db}
}

func (r *repairRepo) WithTx(tx *gorm.DB) RepairRepository {
	return &repairRepo{tx}
}

func (r *repairRepo) Create(ctx context.Context, repair *model.Repair) error {
	return r.db.WithContext(ctx).Create(repair).Error
}

func (r *repairRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Repair, error) {
	var repair model.Repair
	if err := r.db.WithContext(ctx).First(&repair, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &repair, nil
}

func (r *repairRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Repair, error) {
	var repair model.Repair
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&repair, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &repair, nil
}

func (r *repairRepo) FindByFilter(ctx context.Context, f RepairFilter) ([]model.Repair, error) {
	var repairs []model.Repair
	q := r.db.WithContext(ctx)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("in_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("in_date <= ?", *f.To)
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		like := "%" + s + "%"
		q = q.Where("LOWER(customer_name) LIKE ? OR customer_phone LIKE ? OR LOWER(device_name) LIKE ?", like, like, like)
	}
	err := q.Order("in_date DESC").Find(&repairs).Error
	return repairs, err
}

func (r *repairRepo) FindByCustomerPhone(ctx context.Context, phone string) ([]model.Repair, error) {
	var repairs []model.Repair
	err := r.db.WithContext(ctx).
		Where("customer_phone = ?", phone).
		Order("in_date DESC").
		Find(&repairs).Error
	return repairs, err
}

func (r *repairRepo) Update(ctx context.Context, repair *model.Repair) error {
	return r.db.WithContext(ctx).Save(repair).Error
}
