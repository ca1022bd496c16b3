package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kinmelhq/kinmel-backend/pkg/db/models"
)

// AddItemRequest is the inbound payload for adding a product to the cart.
type AddItemRequest struct {
	ProductID       string `json:"product_id" validate:"required"`
	OrderedQuantity int    `json:"ordered_quantity" validate:"required,gt=0"`
}

// CartItemDTO is the transport shape for one unpriced cart line.
type CartItemDTO struct {
	ID              uuid.UUID `json:"id"`
	BuyerID         uuid.UUID `json:"buyer_id"`
	ProductID       uuid.UUID `json:"product_id"`
	OrderedQuantity int       `json:"ordered_quantity"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PricedCartItem is one cart line joined with its live product data.
// Quantity is the product's remaining stock; OrderedQuantity is the amount
// in the cart.
type PricedCartItem struct {
	CartItemID      uuid.UUID       `json:"cart_item_id"`
	ProductID       uuid.UUID       `json:"product_id"`
	Name            string          `json:"name"`
	Brand           string          `json:"brand"`
	Category        string          `json:"category"`
	Quantity        int             `json:"quantity"`
	Image           string          `json:"image,omitempty"`
	FreeShipping    bool            `json:"free_shipping"`
	Price           decimal.Decimal `json:"price"`
	OrderedQuantity int             `json:"ordered_quantity"`
	LineTotal       decimal.Decimal `json:"line_total"`
	AddedAt         time.Time       `json:"added_at"`
}

// CartPage is one page of priced cart lines plus whole-cart aggregates.
// SubTotal always covers the entire cart, not just the returned page.
type CartPage struct {
	Items      []PricedCartItem `json:"cart_data"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalItems int64            `json:"total_items"`
	SubTotal   decimal.Decimal  `json:"sub_total"`
}

// CountResponse reports how many lines are currently in the cart.
type CountResponse struct {
	Count int64 `json:"item_count"`
}

func FromModel(item *models.CartItem) *CartItemDTO {
	if item == nil {
		return nil
	}

	return &CartItemDTO{
		ID:              item.ID,
		BuyerID:         item.BuyerID,
		ProductID:       item.ProductID,
		OrderedQuantity: item.OrderedQuantity,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}
