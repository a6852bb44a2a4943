package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"go-shop-pos/internal/model"
	"go-shop-pos/internal/repository"
	"go-shop-pos/internal/ws"
	"go-shop-pos/pkg/database"
	"go-shop-pos/pkg/keywords"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound       = errors.New("product not found")
	ErrCategoryNotFound      = errors.New("category not found")
	ErrSubcategoryNotFound   = errors.New("subcategory not found")
	ErrCategoryExists        = errors.New("category already exists")
	ErrProductInPendingOrder = errors.New("product is referenced by a pending purchase order")
)

// BackfillBatchSize is the number of products rewritten per batch.
const BackfillBatchSize = 200

type ProductRequest struct {
	Name          string          `json:"name" validate:"required,max=255"`
	Price         decimal.Decimal `json:"price" validate:"gte=0"`
	SellingPrice  decimal.Decimal `json:"selling_price" validate:"gte=0"`
	Stock         int             `json:"stock" validate:"gte=0"`
	MinStock      int             `json:"min_stock" validate:"gte=0"`
	CategoryID    *uuid.UUID      `json:"category_id"`
	SubcategoryID *uuid.UUID      `json:"subcategory_id"`
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description"`
}

type SubcategoryRequest struct {
	CategoryID uuid.UUID `json:"category_id" validate:"uuid_required"`
	Name       string    `json:"name" validate:"required,max=120"`
}

type ProductPage struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type CatalogService interface {
	CreateCategory(ctx context.Context, req *CategoryRequest, actor Actor) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req *CategoryRequest, actor Actor) (*model.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateSubcategory(ctx context.Context, req *SubcategoryRequest, actor Actor) (*model.Subcategory, error)
	ListSubcategories(ctx context.Context, categoryID *uuid.UUID) ([]model.Subcategory, error)
	DeleteSubcategory(ctx context.Context, id uuid.UUID) error

	CreateProduct(ctx context.Context, req *ProductRequest, actor Actor) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductRequest, actor Actor) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID, actor Actor) error
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListProducts(ctx context.Context, f repository.ProductFilter) (*ProductPage, error)
	CountProducts(ctx context.Context, f repository.ProductFilter) (int64, error)
	StockHistory(ctx context.Context, productID uuid.UUID) ([]model.StockMovement, error)

	BackfillKeywords(ctx context.Context) (int, error)
}

type catalogService struct {
	db              *gorm.DB
	categoryRepo    repository.CategoryRepository
	subcategoryRepo repository.SubcategoryRepository
	productRepo     repository.ProductRepository
	orderRepo       repository.PurchaseOrderRepository
	movementRepo    repository.StockMovementRepository
	wsHub           *ws.Hub
}

func NewCatalogService(
	db *gorm.DB,
	categoryRepo repository.CategoryRepository,
	subcategoryRepo repository.SubcategoryRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.PurchaseOrderRepository,
	movementRepo repository.StockMovementRepository,
	hub *ws.Hub,
) CatalogService {
	return &catalogService{
		db:              db,
		categoryRepo:    categoryRepo,
		subcategoryRepo: subcategoryRepo,
		productRepo:     productRepo,
		orderRepo:       orderRepo,
		movementRepo:    movementRepo,
		wsHub:           hub,
	}
}

func (s *catalogService) CreateCategory(ctx context.Context, req *CategoryRequest, actor Actor) (*model.Category, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	cat := &model.Category{Name: strings.TrimSpace(req.Name), Description: req.Description}
	cat.CreatedBy = actor.ID
	cat.UpdatedBy = actor.ID
	if err := s.categoryRepo.Create(ctx, cat); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrCategoryExists
		}
		return nil, err
	}
	return cat, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.categoryRepo.FindAll(ctx)
}

func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req *CategoryRequest, actor Actor) (*model.Category, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	cat, err := s.categoryRepo.FindByID(ctx, id)
	if database.IsNotFound(err) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	cat.Name = strings.TrimSpace(req.Name)
	cat.Description = req.Description
	cat.UpdatedBy = actor.ID
	if err := s.categoryRepo.Update(ctx, cat); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrCategoryExists
		}
		return nil, err
	}
	return cat, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, id); database.IsNotFound(err) {
		return ErrCategoryNotFound
	} else if err != nil {
		return err
	}
	return nil
}

func (s *catalogService) CreateSubcategory(ctx context.Context, req *SubcategoryRequest, actor Actor) (*model.Subcategory, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	cat, err := s.categoryRepo.FindByID(ctx, req.CategoryID)
	if database.IsNotFound(err) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	sub := &model.Subcategory{
		CategoryID:   cat.ID,
		CategoryName: cat.Name,
		Name:         strings.TrimSpace(req.Name),
	}
	sub.CreatedBy = actor.ID
	sub.UpdatedBy = actor.ID
	if err := s.subcategoryRepo.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *catalogService) ListSubcategories(ctx context.Context, categoryID *uuid.UUID) ([]model.Subcategory, error) {
	return s.subcategoryRepo.FindAll(ctx, categoryID)
}

func (s *catalogService) DeleteSubcategory(ctx context.Context, id uuid.UUID) error {
	if err := s.subcategoryRepo.Delete(ctx, id); database.IsNotFound(err) {
		return ErrSubcategoryNotFound
	} else if err != nil {
		return err
	}
	return nil
}

// applyClassification copies category and subcategory names onto p.
func (s *catalogService) applyClassification(ctx context.Context, p *model.Product, req *ProductRequest) error {
	p.CategoryID, p.CategoryName = nil, ""
	p.SubcategoryID, p.SubcategoryName = nil, ""
	if req.CategoryID != nil {
		cat, err := s.categoryRepo.FindByID(ctx, *req.CategoryID)
		if database.IsNotFound(err) {
			return ErrCategoryNotFound
		}
		if err != nil {
			return err
		}
		p.CategoryID = &cat.ID
		p.CategoryName = cat.Name
	}
	if req.SubcategoryID != nil {
		sub, err := s.subcategoryRepo.FindByID(ctx, *req.SubcategoryID)
		if database.IsNotFound(err) {
			return ErrSubcategoryNotFound
		}
		if err != nil {
			return err
		}
		p.SubcategoryID = &sub.ID
		p.SubcategoryName = sub.Name
	}
	return nil
}

func (s *catalogService) CreateProduct(ctx context.Context, req *ProductRequest, actor Actor) (*model.Product, error) {
	// 1. Validate
	if err := validate(req); err != nil {
		return nil, err
	}

	// 2. Build with derived keywords and threshold
	kw := keywords.Generate(req.Name)
	p := &model.Product{
		Name:         strings.TrimSpace(req.Name),
		Price:        req.Price,
		SellingPrice: req.SellingPrice,
		Stock:        req.Stock,
		MinStock:     req.MinStock,
		Keywords:     model.Keywords(kw),
	}
	if p.MinStock == 0 {
		p.MinStock = keywords.MinStock(len(kw))
	}
	if err := s.applyClassification(ctx, p, req); err != nil {
		return nil, err
	}
	p.CreatedBy = actor.ID
	p.UpdatedBy = actor.ID

	// 3. Save
	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	// 4. Broadcast
	s.wsHub.Publish(ws.Event{
		Type:    "stock_update",
		Action:  "product_created",
		Data:    map[string]interface{}{"id": p.ID, "name": p.Name, "stock": p.Stock, "price": p.Price},
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s created product '%s'", actor.Name, p.Name),
	})
	return p, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductRequest, actor Actor) (*model.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	// Resolved up front: category lookups must not run inside the transaction.
	var class model.Product
	if err := s.applyClassification(ctx, &class, req); err != nil {
		return nil, err
	}

	var (
		updated  *model.Product
		oldStock int
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)

		// Lock the row so a concurrent sale cannot interleave
		existing, err := products.FindByIDForUpdate(ctx, id)
		if database.IsNotFound(err) {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}
		oldStock = existing.Stock

		nameChanged := existing.Name != strings.TrimSpace(req.Name)
		existing.Name = strings.TrimSpace(req.Name)
		existing.Price = req.Price
		existing.SellingPrice = req.SellingPrice
		existing.Stock = req.Stock
		existing.MinStock = req.MinStock
		if nameChanged {
			kw := keywords.Generate(existing.Name)
			existing.Keywords = model.Keywords(kw)
			if existing.MinStock == 0 {
				existing.MinStock = keywords.MinStock(len(kw))
			}
		}
		existing.CategoryID, existing.CategoryName = class.CategoryID, class.CategoryName
		existing.SubcategoryID, existing.SubcategoryName = class.SubcategoryID, class.SubcategoryName
		existing.UpdatedBy = actor.ID

		if err := products.Update(ctx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.Publish(ws.Event{
		Type:   "stock_update",
		Action: "product_updated",
		Data: map[string]interface{}{
			"id":        updated.ID,
			"name":      updated.Name,
			"old_stock": oldStock,
			"new_stock": updated.Stock,
			"price":     updated.Price,
		},
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s updated product '%s'", actor.Name, updated.Name),
	})
	return updated, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID, actor Actor) error {
	referenced, err := s.orderRepo.ExistsPendingForProduct(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return ErrProductInPendingOrder
	}
	if err := s.productRepo.Delete(ctx, id, actor.ID); database.IsNotFound(err) {
		return ErrProductNotFound
	} else if err != nil {
		return err
	}

	s.wsHub.Publish(ws.Event{
		Type:   "stock_update",
		Action: "product_deleted",
		Data:   map[string]interface{}{"id": id},
		User:   actor.wsActor(),
	})
	return nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if database.IsNotFound(err) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (s *catalogService) ListProducts(ctx context.Context, f repository.ProductFilter) (*ProductPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	items, err := s.productRepo.FindByFilter(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	return &ProductPage{Items: items, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

func (s *catalogService) CountProducts(ctx context.Context, f repository.ProductFilter) (int64, error) {
	return s.productRepo.Count(ctx, f)
}

func (s *catalogService) StockHistory(ctx context.Context, productID uuid.UUID) ([]model.StockMovement, error) {
	return s.movementRepo.FindByProduct(ctx, productID)
}

// BackfillKeywords regenerates keywords and minStock for the whole catalog in
// batches, each batch in its own transaction. It returns the number of
// products rewritten.
func (s *catalogService) BackfillKeywords(ctx context.Context) (int, error) {
	updated := 0
	after := uuid.Nil
	for {
		batch, err := s.productRepo.FindBatchAfter(ctx, after, BackfillBatchSize)
		if err != nil {
			return updated, err
		}
		if len(batch) == 0 {
			return updated, nil
		}

		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			products := s.productRepo.WithTx(tx)
			for _, p := range batch {
				kw := keywords.Generate(p.Name)
				if err := products.UpdateKeywords(ctx, p.ID, kw, keywords.MinStock(len(kw))); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return updated, err
		}
		updated += len(batch)
		after = batch[len(batch)-1].ID
		log.Printf("keyword backfill: %d products updated", updated)

		if len(batch) < BackfillBatchSize {
			return updated, nil
		}
	}
}
