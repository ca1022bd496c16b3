package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents one catalog listing owned by a seller.
type Product struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SellerID     uuid.UUID       `gorm:"column:seller_id;type:uuid;not null;index"`
	Name         string          `gorm:"column:name;not null"`
	Brand        string          `gorm:"column:brand;not null"`
	Category     string          `gorm:"column:category;not null;index"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Quantity     int             `gorm:"column:quantity;not null;default:0"`
	Image        string          `gorm:"column:image"`
	FreeShipping bool            `gorm:"column:free_shipping;not null;default:false"`
	Description  string          `gorm:"column:description"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
