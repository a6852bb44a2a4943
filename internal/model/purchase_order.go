package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
)

// PurchaseOrder groups reorder lines for one category. At most one pending
// order may exist per category name; the partial unique index enforces it.
type PurchaseOrder struct {
	BaseModel
	CategoryID   *uuid.UUID          `gorm:"type:uuid" json:"category_id,omitempty"`
	CategoryName string              `gorm:"type:varchar(120);not null;uniqueIndex:idx_po_one_pending,where:status = 'pending'" json:"category_name"`
	Date         time.Time           `gorm:"not null" json:"date"`
	Status       OrderStatus         `gorm:"type:varchar(20);not null;index" json:"status"`
	Items        []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID" json:"items"`
	CompletedAt  *time.Time          `json:"completed_at,omitempty"`
}

// AllReceived reports whether every line has been received. An order with no
// lines is never complete.
func (o *PurchaseOrder) AllReceived() bool {
	if len(o.Items) == 0 {
		return false
	}
	for _, it := range o.Items {
		if !it.Received {
			return false
		}
	}
	return true
}

// OrderedQty sums the ordered quantity across all lines.
func (o *PurchaseOrder) OrderedQty() int {
	total := 0
	for _, it := range o.Items {
		total += it.OrderQty
	}
	return total
}

// PurchaseOrderItem snapshots the product at order time rather than
// referencing live product data.
type PurchaseOrderItem struct {
	BaseModel
	PurchaseOrderID uuid.UUID        `gorm:"type:uuid;not null;index" json:"purchase_order_id"`
	ProductID       uuid.UUID        `gorm:"type:uuid;index" json:"product_id"`
	Name            string           `gorm:"type:varchar(255);not null" json:"name"`
	OrderQty        int              `gorm:"not null" json:"order_qty"`
	Price           decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"price"`
	ReceivedQty     int              `gorm:"not null;default:0" json:"received_qty"`
	Received        bool             `gorm:"not null;default:false" json:"received"`
	NewPrice        *decimal.Decimal `gorm:"type:decimal(12,2)" json:"new_price,omitempty"`
	CategoryID      *uuid.UUID       `gorm:"type:uuid" json:"category_id,omitempty"`
	CategoryName    string           `gorm:"type:varchar(120)" json:"category_name"`
	SubcategoryID   *uuid.UUID       `gorm:"type:uuid" json:"subcategory_id,omitempty"`
	SubcategoryName string           `gorm:"type:varchar(120)" json:"subcategory_name"`
}
