package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LedgerStatus string

const (
	LedgerCompleted LedgerStatus = "completed"
	LedgerPending   LedgerStatus = "pending"
)

// Payment is an append-only ledger row for a sale or repair event.
type Payment struct {
	BaseModel
	SaleID        *uuid.UUID      `gorm:"type:uuid;index" json:"sale_id,omitempty"`
	RepairID      *uuid.UUID      `gorm:"type:uuid;index" json:"repair_id,omitempty"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	CustomerPhone string          `gorm:"type:varchar(20)" json:"customer_phone"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"paid_amount"`
	PendingAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"pending_amount"`
	Method        string          `gorm:"type:varchar(20)" json:"method"`
	Status        LedgerStatus    `gorm:"type:varchar(20);not null;index" json:"status"`
}
