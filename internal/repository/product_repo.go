package repository

import (
	"context"
	"strings"
	"time"

	"go-shop-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductFilter narrows catalog listings. Zero values mean "no filter".
type ProductFilter struct {
	Keyword       string
	CategoryID    *uuid.UUID
	SubcategoryID *uuid.UUID
	Page          int // 1-based
	Limit         int
}

type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByFilter(ctx context.Context, f ProductFilter) ([]model.Product, error)
	Count(ctx context.Context, f ProductFilter) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByNameAndSubcategory(ctx context.Context, name string, subcategoryID *uuid.UUID) (*model.Product, error)
	FindBatchAfter(ctx context.Context, after uuid.UUID, limit int) ([]model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID, deletedBy string) error
	ApplySale(ctx context.Context, id uuid.UUID, stock, salesCount int, soldAt time.Time, updatedBy string) error
	ApplyReceipt(ctx context.Context, id uuid.UUID, stock int, price decimal.Decimal, updatedBy string) error
	UpdateKeywords(ctx context.Context, id uuid.UUID, keywords []string, minStock int) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{tx}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) scoped(ctx context.Context, f ProductFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Product{})
	if kw := strings.ToLower(strings.TrimSpace(f.Keyword)); kw != "" {
		// keywords is a JSON array; match a whole element.
		q = q.Where("CAST(keywords AS TEXT) LIKE ?", `%"`+kw+`"%`)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.SubcategoryID != nil {
		q = q.Where("subcategory_id = ?", *f.SubcategoryID)
	}
	return q
}

func (r *productRepo) FindByFilter(ctx context.Context, f ProductFilter) ([]model.Product, error) {
	var products []model.Product
	q := r.scoped(ctx, f).Order("name ASC, id ASC")
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		q = q.Limit(f.Limit).Offset((page - 1) * f.Limit)
	}
	err := q.Find(&products).Error
	return products, err
}

func (r *productRepo) Count(ctx context.Context, f ProductFilter) (int64, error) {
	var n int64
	err := r.scoped(ctx, f).Count(&n).Error
	return n, err
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDForUpdate row-locks the product for the rest of the transaction.
func (r *productRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByNameAndSubcategory(ctx context.Context, name string, subcategoryID *uuid.UUID) (*model.Product, error) {
	var product model.Product
	q := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", name)
	if subcategoryID != nil {
		q = q.Where("subcategory_id = ?", *subcategoryID)
	} else {
		q = q.Where("subcategory_id IS NULL")
	}
	if err := q.Order("created_at ASC").First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindBatchAfter pages through the catalog by id for batch jobs.
func (r *productRepo) FindBatchAfter(ctx context.Context, after uuid.UUID, limit int) ([]model.Product, error) {
	var products []model.Product
	q := r.db.WithContext(ctx).Order("id ASC").Limit(limit)
	if after != uuid.Nil {
		q = q.Where("id > ?", after)
	}
	err := q.Find(&products).Error
	return products, err
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Product{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Product{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *productRepo) ApplySale(ctx context.Context, id uuid.UUID, stock, salesCount int, soldAt time.Time, updatedBy string) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":        stock,
			"sales_count":  salesCount,
			"last_sold_at": soldAt,
			"updated_by":   updatedBy,
		}).Error
}

func (r *productRepo) ApplyReceipt(ctx context.Context, id uuid.UUID, stock int, price decimal.Decimal, updatedBy string) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      stock,
			"price":      price,
			"updated_by": updatedBy,
		}).Error
}

func (r *productRepo) UpdateKeywords(ctx context.Context, id uuid.UUID, keywords []string, minStock int) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"keywords":  model.Keywords(keywords),
			"min_stock": minStock,
		}).Error
}
