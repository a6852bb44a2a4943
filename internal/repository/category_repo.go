package repository

import (
	"context"

	"go-shop-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, c *model.Category) error
	FindAll(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	Update(ctx context.Context, c *model.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db}
}

func (r *categoryRepo) Create(ctx context.Context, c *model.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *categoryRepo) FindAll(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&cats).Error
	return cats, err
}

func (r *categoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) Update(ctx context.Context, c *model.Category) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *categoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Category{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type SubcategoryRepository interface {
	WithTx(tx *gorm.DB) SubcategoryRepository
	Create(ctx context.Context, s *model.Subcategory) error
	FindAll(ctx context.Context, categoryID *uuid.UUID) ([]model.Subcategory, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Subcategory, error)
	IncrementCount(ctx context.Context, id uuid.UUID, by int) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type subcategoryRepo struct {
	db *gorm.DB
}

func NewSubcategoryRepo(db *gorm.DB) SubcategoryRepository {
	return &subcategoryRepo{db}
}

func (r *subcategoryRepo) WithTx(tx *gorm.DB) SubcategoryRepository {
	return &subcategoryRepo{tx}
}

func (r *subcategoryRepo) Create(ctx context.Context, s *model.Subcategory) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *subcategoryRepo) FindAll(ctx context.Context, categoryID *uuid.UUID) ([]model.Subcategory, error) {
	var subs []model.Subcategory
	q := r.db.WithContext(ctx).Order("name ASC")
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}
	err := q.Find(&subs).Error
	return subs, err
}

func (r *subcategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Subcategory, error) {
	var s model.Subcategory
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// IncrementCount bumps the running received count. It reports false when the
// subcategory does not exist.
func (r *subcategoryRepo) IncrementCount(ctx context.Context, id uuid.UUID, by int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Subcategory{}).
		Where("id = ?", id).
		Update("count", gorm.Expr("count + ?", by))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *subcategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Subcategory{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
