package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is keyed by phone; aggregates are maintained by sales and
// payment settlement.
type Customer struct {
	BaseModel
	Name               string          `gorm:"type:varchar(255)" json:"name"`
	Phone              string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone"`
	TotalPurchases     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_purchases"`
	TotalPendingAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_pending_amount"`
	LastVisitAt        *time.Time      `json:"last_visit_at,omitempty"`
	LastPaymentAt      *time.Time      `json:"last_payment_at,omitempty"`
	LastCampaignSentAt *time.Time      `json:"last_campaign_sent_at,omitempty"`
}
