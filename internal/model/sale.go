package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMode string

const (
	PaymentCash    PaymentMode = "cash"
	PaymentCredit  PaymentMode = "credit"
	PaymentPartial PaymentMode = "partial"
)

type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPartial PaymentStatus = "partial"
)

type Sale struct {
	BaseModel
	Date          time.Time       `gorm:"not null;index" json:"date"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	CustomerPhone string          `gorm:"type:varchar(20);index" json:"customer_phone"`
	CustomerName  string          `gorm:"type:varchar(255)" json:"customer_name"`
	Items         []SaleItem      `gorm:"foreignKey:SaleID" json:"items"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	PaymentMode   PaymentMode     `gorm:"type:varchar(20);not null" json:"payment_mode"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"paid_amount"`
	PendingAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;index" json:"pending_amount"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null" json:"payment_status"`

	PaymentCompletedAt *time.Time `json:"payment_completed_at,omitempty"`
	CreatedByUserID    *string    `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
}

// SaleItem snapshots cost and selling price at the time of sale.
type SaleItem struct {
	BaseModel
	SaleID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Name         string          `gorm:"type:varchar(255)" json:"name"`
	Qty          int             `gorm:"not null" json:"qty"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost_price"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"selling_price"`
	CategoryName string          `gorm:"type:varchar(120)" json:"category_name"`
}

// LineTotal is SellingPrice x Qty.
func (i SaleItem) LineTotal() decimal.Decimal {
	return i.SellingPrice.Mul(decimal.NewFromInt(int64(i.Qty)))
}
