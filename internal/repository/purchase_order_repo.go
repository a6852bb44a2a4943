package repository

import (
	"context"
	"time"

	"go-shop-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseOrderRepository interface {
	WithTx(tx *gorm.DB) PurchaseOrderRepository
	Create(ctx context.Context, order *model.PurchaseOrder) error
	FindAll(ctx context.Context, status model.OrderStatus) ([]model.PurchaseOrder, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	FindPendingByCategory(ctx context.Context, categoryName string) (*model.PurchaseOrder, error)
	UpdateItem(ctx context.Context, item *model.PurchaseOrderItem) error
	Complete(ctx context.Context, id uuid.UUID, at time.Time, updatedBy string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsPendingForProduct(ctx context.Context, productID uuid.UUID) (bool, error)
}

type purchaseOrderRepo struct {
	db *gorm.DB
}

func NewPurchaseOrderRepo(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepo{db}
}

func (r *purchaseOrderRepo) WithTx(tx *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepo{tx}
}

func (r *purchaseOrderRepo) Create(ctx context.Context, order *model.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *purchaseOrderRepo) FindAll(ctx context.Context, status model.OrderStatus) ([]model.PurchaseOrder, error) {
	var orders []model.PurchaseOrder
	q := r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("price ASC, name ASC")
	})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("date DESC").Find(&orders).Error
	return orders, err
}

func (r *purchaseOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var order model.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("price ASC, name ASC") }).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate locks the order header; lines are loaded in the same
// transaction.
func (r *purchaseOrderRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var order model.PurchaseOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Where("purchase_order_id = ?", order.ID).
		Order("price ASC, name ASC").
		Find(&order.Items).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *purchaseOrderRepo) FindPendingByCategory(ctx context.Context, categoryName string) (*model.PurchaseOrder, error) {
	var order model.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("category_name = ? AND status = ?", categoryName, model.OrderPending).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *purchaseOrderRepo) UpdateItem(ctx context.Context, item *model.PurchaseOrderItem) error {
	return r.db.WithContext(ctx).Model(&model.PurchaseOrderItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"order_qty":    item.OrderQty,
			"received_qty": item.ReceivedQty,
			"received":     item.Received,
			"new_price":    item.NewPrice,
			"updated_by":   item.UpdatedBy,
		}).Error
}

func (r *purchaseOrderRepo) Complete(ctx context.Context, id uuid.UUID, at time.Time, updatedBy string) error {
	return r.db.WithContext(ctx).Model(&model.PurchaseOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       model.OrderCompleted,
			"completed_at": at,
			"updated_by":   updatedBy,
		}).Error
}

// Delete removes the order and its lines for good so the category can be
// reordered.
func (r *purchaseOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Unscoped().
		Where("purchase_order_id = ?", id).
		Delete(&model.PurchaseOrderItem{}).Error
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Unscoped().Delete(&model.PurchaseOrder{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *purchaseOrderRepo) ExistsPendingForProduct(ctx context.Context, productID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.PurchaseOrderItem{}).
		Joins("JOIN purchase_orders ON purchase_orders.id = purchase_order_items.purchase_order_id").
		Where("purchase_order_items.product_id = ? AND purchase_orders.status = ? AND purchase_orders.deleted_at IS NULL",
			productID, model.OrderPending).
		Count(&n).Error
	return n > 0, err
}
