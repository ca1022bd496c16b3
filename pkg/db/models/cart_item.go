package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one buyer's pending order line for one product. The composite
// unique index backs the "one line per buyer+product" invariant even when two
// concurrent adds pass the service-level pre-check.
type CartItem struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	BuyerID         uuid.UUID `gorm:"column:buyer_id;type:uuid;not null;uniqueIndex:idx_cart_items_buyer_product"`
	ProductID       uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_cart_items_buyer_product"`
	OrderedQuantity int       `gorm:"column:ordered_quantity;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
