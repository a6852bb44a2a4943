package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-shop-pos/internal/model"
	"go-shop-pos/internal/reorder"
	"go-shop-pos/internal/repository"
	"go-shop-pos/internal/ws"
	"go-shop-pos/pkg/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNothingToReorder   = errors.New("no low-stock products in this category")
	ErrPendingOrderExists = errors.New("a pending purchase order already exists for this category")
)

type ReorderFilter struct {
	CategoryID    *uuid.UUID
	SubcategoryID *uuid.UUID
}

// ReorderGroup is a category's low-stock lines plus the state of any open
// purchase order for it.
type ReorderGroup struct {
	reorder.CategoryGroup
	Blocked        bool       `json:"blocked"`
	PendingOrderID *uuid.UUID `json:"pending_order_id,omitempty"`
	OrderedQty     int        `json:"ordered_qty"`
}

type ReorderService interface {
	Preview(ctx context.Context, f ReorderFilter) ([]ReorderGroup, error)
	CreateOrder(ctx context.Context, categoryName string, actor Actor) (*model.PurchaseOrder, error)
}

type reorderService struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	orderRepo   repository.PurchaseOrderRepository
	wsHub       *ws.Hub
}

func NewReorderService(db *gorm.DB, productRepo repository.ProductRepository, orderRepo repository.PurchaseOrderRepository, hub *ws.Hub) ReorderService {
	return &reorderService{
		db:          db,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		wsHub:       hub,
	}
}

func (s *reorderService) Preview(ctx context.Context, f ReorderFilter) ([]ReorderGroup, error) {
	products, err := s.productRepo.FindByFilter(ctx, repository.ProductFilter{
		CategoryID:    f.CategoryID,
		SubcategoryID: f.SubcategoryID,
	})
	if err != nil {
		return nil, err
	}

	pending, err := s.orderRepo.FindAll(ctx, model.OrderPending)
	if err != nil {
		return nil, err
	}
	open := make(map[string]*model.PurchaseOrder, len(pending))
	for i := range pending {
		open[pending[i].CategoryName] = &pending[i]
	}

	groups := reorder.Aggregate(products)
	out := make([]ReorderGroup, 0, len(groups))
	for _, g := range groups {
		rg := ReorderGroup{CategoryGroup: g}
		if po, ok := open[g.CategoryName]; ok {
			id := po.ID
			rg.Blocked = true
			rg.PendingOrderID = &id
			rg.OrderedQty = po.OrderedQty()
		}
		out = append(out, rg)
	}
	return out, nil
}

// CreateOrder recomputes the aggregation over the whole catalog and writes a
// pending purchase order for one category.
func (s *reorderService) CreateOrder(ctx context.Context, categoryName string, actor Actor) (*model.PurchaseOrder, error) {
	categoryName = strings.TrimSpace(categoryName)
	if categoryName == "" {
		return nil, invalid("category name is required")
	}

	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	group, ok := reorder.Find(reorder.Aggregate(products), categoryName)
	if !ok || len(group.Lines) == 0 {
		return nil, ErrNothingToReorder
	}

	order := &model.PurchaseOrder{
		CategoryID:   group.Lines[0].CategoryID,
		CategoryName: group.CategoryName,
		Date:         time.Now(),
		Status:       model.OrderPending,
	}
	order.CreatedBy = actor.ID
	order.UpdatedBy = actor.ID
	for _, l := range group.Lines {
		item := model.PurchaseOrderItem{
			ProductID:       l.ProductID,
			Name:            l.Name,
			OrderQty:        l.OrderQty,
			Price:           l.Price,
			CategoryID:      l.CategoryID,
			CategoryName:    l.CategoryName,
			SubcategoryID:   l.SubcategoryID,
			SubcategoryName: l.SubcategoryName,
		}
		item.CreatedBy = actor.ID
		order.Items = append(order.Items, item)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)
		_, err := orders.FindPendingByCategory(ctx, categoryName)
		if err == nil {
			return ErrPendingOrderExists
		}
		if !database.IsNotFound(err) {
			return err
		}
		return orders.Create(ctx, order)
	})
	if database.IsDuplicateKey(err) {
		return nil, ErrPendingOrderExists
	}
	if err != nil {
		return nil, err
	}

	s.wsHub.Publish(ws.Event{
		Type:    "purchase_order",
		Action:  "order_created",
		Data:    map[string]interface{}{"id": order.ID, "category_name": order.CategoryName, "lines": len(order.Items)},
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s created a purchase order for %s", actor.Name, order.CategoryName),
	})
	return order, nil
}
