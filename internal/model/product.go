package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Product struct {
	BaseModel
	Name         string          `gorm:"type:varchar(255);not null;index" json:"name" validate:"required"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price" validate:"gte=0"` // cost price
	SellingPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"selling_price" validate:"gte=0"`
	Stock        int             `gorm:"not null;default:0" json:"stock" validate:"gte=0"`
	MinStock     int             `gorm:"not null;default:0" json:"min_stock" validate:"gte=0"`

	CategoryID      *uuid.UUID `gorm:"type:uuid;index" json:"category_id,omitempty"`
	CategoryName    string     `gorm:"type:varchar(120)" json:"category_name"`
	SubcategoryID   *uuid.UUID `gorm:"type:uuid;index" json:"subcategory_id,omitempty"`
	SubcategoryName string     `gorm:"type:varchar(120)" json:"subcategory_name"`

	SalesCount int        `gorm:"not null;default:0" json:"sales_count"`
	LastSoldAt *time.Time `json:"last_sold_at,omitempty"`

	Keywords datatypes.JSONSlice[string] `json:"keywords"`
}

// IsLowStock reports whether the product sits below its reorder threshold.
func (p *Product) IsLowStock() bool {
	return p.Stock < p.MinStock
}

// Keywords wraps search tokens for the JSON keywords column.
func Keywords(k []string) datatypes.JSONSlice[string] {
	if k == nil {
		k = []string{}
	}
	return datatypes.JSONSlice[string](k)
}
