package model

import "github.com/google/uuid"

type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

// StockMovement is the inventory ledger: OUT rows are written by sales, IN
// rows by purchase order receipts.
type StockMovement struct {
	BaseModel
	ProductID uuid.UUID    `gorm:"type:uuid;not null;index" json:"product_id"`
	Type      MovementType `gorm:"type:varchar(10);not null" json:"type"`
	Quantity  int          `gorm:"not null" json:"quantity"`
	// SaleID or PurchaseOrderID that caused the movement.
	SourceID  uuid.UUID `gorm:"type:uuid;index" json:"source_id"`
	StockLeft int       `gorm:"not null" json:"stock_left"`
}
