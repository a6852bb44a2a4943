package model

import "github.com/google/uuid"

type Category struct {
	BaseModel
	Name        string `gorm:"type:varchar(120);uniqueIndex;not null" json:"name" validate:"required"`
	Description string `gorm:"type:text" json:"description"`
}

// Subcategory carries a running Count of units received against it through
// purchase orders.
type Subcategory struct {
	BaseModel
	CategoryID   uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id" validate:"uuid_required"`
	CategoryName string    `gorm:"type:varchar(120)" json:"category_name"`
	Name         string    `gorm:"type:varchar(120);not null" json:"name" validate:"required"`
	Count        int       `gorm:"default:0" json:"count"`
}
