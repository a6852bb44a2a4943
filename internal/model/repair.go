package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type RepairStatus string

const (
	RepairPending   RepairStatus = "pending"
	RepairCompleted RepairStatus = "completed"
	RepairDelivered RepairStatus = "delivered"
)

type UsedPart struct {
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	Name      string          `json:"name"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

type Repair struct {
	BaseModel
	CustomerID      *uuid.UUID                    `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	CustomerPhone   string                        `gorm:"type:varchar(20);index" json:"customer_phone"`
	CustomerName    string                        `gorm:"type:varchar(255)" json:"customer_name"`
	DeviceName      string                        `gorm:"type:varchar(255);not null" json:"device_name"`
	Issue           string                        `gorm:"type:text" json:"issue"`
	EstimatedAmount decimal.Decimal               `gorm:"type:decimal(12,2);not null" json:"estimated_amount"`
	PaidAmount      decimal.Decimal               `gorm:"type:decimal(12,2);not null" json:"paid_amount"`
	PendingAmount   decimal.Decimal               `gorm:"type:decimal(12,2);not null" json:"pending_amount"`
	Status          RepairStatus                  `gorm:"type:varchar(20);not null;index" json:"status"`
	UsedParts       datatypes.JSONSlice[UsedPart] `json:"used_parts"`
	InDate          time.Time                     `gorm:"not null;index" json:"in_date"`
	CompletedAt     *time.Time                    `json:"completed_at,omitempty"`
	DeliveredAt     *time.Time                    `json:"delivered_at,omitempty"`
}
