package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

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
	ErrOrderNotFound       = errors.New("purchase order not found")
	ErrOrderItemNotFound   = errors.New("purchase order item not found")
	ErrOrderCompleted      = errors.New("purchase order is already completed")
	ErrItemAlreadyReceived = errors.New("item has already been received")
)

type ReceiveRequest struct {
	ReceivedQty int              `json:"received_qty" validate:"gt=0"`
	NewPrice    *decimal.Decimal `json:"new_price,omitempty" validate:"omitempty,gte=0"`
}

type PurchaseOrderService interface {
	List(ctx context.Context, status model.OrderStatus) ([]model.PurchaseOrder, error)
	Get(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	ReceiveItem(ctx context.Context, orderID, itemID uuid.UUID, req *ReceiveRequest, actor Actor) (*model.PurchaseOrder, error)
	UpdateItemQty(ctx context.Context, orderID, itemID uuid.UUID, qty int, actor Actor) (*model.PurchaseOrder, error)
	DeleteOrder(ctx context.Context, orderID uuid.UUID, actor Actor) error
}

type purchaseOrderService struct {
	db              *gorm.DB
	orderRepo       repository.PurchaseOrderRepository
	productRepo     repository.ProductRepository
	subcategoryRepo repository.SubcategoryRepository
	movementRepo    repository.StockMovementRepository
	wsHub           *ws.Hub
}

func NewPurchaseOrderService(
	db *gorm.DB,
	orderRepo repository.PurchaseOrderRepository,
	productRepo repository.ProductRepository,
	subcategoryRepo repository.SubcategoryRepository,
	movementRepo repository.StockMovementRepository,
	hub *ws.Hub,
) PurchaseOrderService {
	return &purchaseOrderService{
		db:              db,
		orderRepo:       orderRepo,
		productRepo:     productRepo,
		subcategoryRepo: subcategoryRepo,
		movementRepo:    movementRepo,
		wsHub:           hub,
	}
}

func (s *purchaseOrderService) List(ctx context.Context, status model.OrderStatus) ([]model.PurchaseOrder, error) {
	return s.orderRepo.FindAll(ctx, status)
}

func (s *purchaseOrderService) Get(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if database.IsNotFound(err) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

// lockOpenOrder loads and locks an order that may still be edited.
func lockOpenOrder(ctx context.Context, orders repository.PurchaseOrderRepository, id uuid.UUID) (*model.PurchaseOrder, error) {
	order, err := orders.FindByIDForUpdate(ctx, id)
	if database.IsNotFound(err) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if order.Status == model.OrderCompleted {
		return nil, ErrOrderCompleted
	}
	return order, nil
}

func findItem(order *model.PurchaseOrder, itemID uuid.UUID) int {
	for i := range order.Items {
		if order.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// ReceiveItem books a delivered line into stock. The product is matched by
// name and subcategory and created from the order snapshot when missing.
// Once every line is received the order completes.
func (s *purchaseOrderService) ReceiveItem(ctx context.Context, orderID, itemID uuid.UUID, req *ReceiveRequest, actor Actor) (*model.PurchaseOrder, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var (
		order   *model.PurchaseOrder
		product *model.Product
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)
		products := s.productRepo.WithTx(tx)

		var err error
		order, err = lockOpenOrder(ctx, orders, orderID)
		if err != nil {
			return err
		}
		idx := findItem(order, itemID)
		if idx < 0 {
			return ErrOrderItemNotFound
		}
		item := &order.Items[idx]
		if item.Received {
			return ErrItemAlreadyReceived
		}

		product, err = products.FindByNameAndSubcategory(ctx, item.Name, item.SubcategoryID)
		switch {
		case database.IsNotFound(err):
			product = newProductFromItem(item, req, actor)
			if err := products.Create(ctx, product); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			product.Stock += req.ReceivedQty
			if req.NewPrice != nil {
				product.Price = *req.NewPrice
			}
			if err := products.ApplyReceipt(ctx, product.ID, product.Stock, product.Price, actor.ID); err != nil {
				return err
			}
		}

		if item.SubcategoryID != nil {
			ok, err := s.subcategoryRepo.WithTx(tx).IncrementCount(ctx, *item.SubcategoryID, req.ReceivedQty)
			if err != nil {
				return err
			}
			if !ok {
				log.Printf("purchase order %s: subcategory %s not found, count not updated", order.ID, item.SubcategoryID)
			}
		}

		move := &model.StockMovement{
			ProductID: product.ID,
			Type:      model.MovementIn,
			Quantity:  req.ReceivedQty,
			SourceID:  order.ID,
			StockLeft: product.Stock,
		}
		move.CreatedBy = actor.ID
		if err := s.movementRepo.WithTx(tx).Create(ctx, move); err != nil {
			return err
		}

		item.ReceivedQty = req.ReceivedQty
		item.Received = true
		item.NewPrice = req.NewPrice
		item.UpdatedBy = actor.ID
		if err := orders.UpdateItem(ctx, item); err != nil {
			return err
		}

		if order.AllReceived() {
			now := time.Now()
			if err := orders.Complete(ctx, order.ID, now, actor.ID); err != nil {
				return err
			}
			order.Status = model.OrderCompleted
			order.CompletedAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.Publish(ws.Event{
		Type:    "stock_update",
		Action:  "stock_received",
		Data:    map[string]interface{}{"id": product.ID, "name": product.Name, "stock": product.Stock, "price": product.Price},
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s received %d units of '%s'", actor.Name, req.ReceivedQty, product.Name),
	})
	if order.Status == model.OrderCompleted {
		s.wsHub.Publish(ws.Event{
			Type:   "purchase_order",
			Action: "order_completed",
			Data:   map[string]interface{}{"id": order.ID, "category_name": order.CategoryName},
			User:   actor.wsActor(),
		})
	}
	return order, nil
}

func newProductFromItem(item *model.PurchaseOrderItem, req *ReceiveRequest, actor Actor) *model.Product {
	price := item.Price
	if req.NewPrice != nil {
		price = *req.NewPrice
	}
	kw := keywords.Generate(item.Name)
	p := &model.Product{
		Name:            item.Name,
		Price:           price,
		SellingPrice:    price,
		Stock:           req.ReceivedQty,
		MinStock:        keywords.MinStock(len(kw)),
		CategoryID:      item.CategoryID,
		CategoryName:    item.CategoryName,
		SubcategoryID:   item.SubcategoryID,
		SubcategoryName: item.SubcategoryName,
		Keywords:        model.Keywords(kw),
	}
	p.CreatedBy = actor.ID
	p.UpdatedBy = actor.ID
	return p
}

func (s *purchaseOrderService) UpdateItemQty(ctx context.Context, orderID, itemID uuid.UUID, qty int, actor Actor) (*model.PurchaseOrder, error) {
	if qty <= 0 {
		return nil, invalid("order quantity must be greater than 0")
	}
	var order *model.PurchaseOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)
		var err error
		order, err = lockOpenOrder(ctx, orders, orderID)
		if err != nil {
			return err
		}
		idx := findItem(order, itemID)
		if idx < 0 {
			return ErrOrderItemNotFound
		}
		item := &order.Items[idx]
		if item.Received {
			return ErrItemAlreadyReceived
		}
		item.OrderQty = qty
		item.UpdatedBy = actor.ID
		return orders.UpdateItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *purchaseOrderService) DeleteOrder(ctx context.Context, orderID uuid.UUID, actor Actor) error {
	var order *model.PurchaseOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)
		var err error
		order, err = lockOpenOrder(ctx, orders, orderID)
		if err != nil {
			return err
		}
		return orders.Delete(ctx, order.ID)
	})
	if err != nil {
		return err
	}

	s.wsHub.Publish(ws.Event{
		Type:    "purchase_order",
		Action:  "order_deleted",
		Data:    map[string]interface{}{"id": order.ID, "category_name": order.CategoryName},
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s deleted the %s purchase order", actor.Name, order.CategoryName),
	})
	return nil
}
