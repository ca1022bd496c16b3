package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kinmelhq/kinmel-backend/pkg/db"
	"github.com/kinmelhq/kinmel-backend/pkg/db/models"
	pkgerrors "github.com/kinmelhq/kinmel-backend/pkg/errors"
	"github.com/kinmelhq/kinmel-backend/pkg/pagination"
)

// Service defines the behavior needed by the cart controller.
type Service interface {
	AddItem(ctx context.Context, buyerID uuid.UUID, req AddItemRequest) (*CartItemDTO, error)
	RemoveItem(ctx context.Context, buyerID uuid.UUID, rawItemID string) error
	Flush(ctx context.Context, buyerID uuid.UUID) error
	Count(ctx context.Context, buyerID uuid.UUID) (*CountResponse, error)
	ListPriced(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (*CartPage, error)
}

type repository interface {
	Create(ctx context.Context, item *models.CartItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error)
	FindByBuyerAndProduct(ctx context.Context, buyerID, productID uuid.UUID) (*models.CartItem, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Flush(ctx context.Context, buyerID uuid.UUID) (int64, error)
	CountItems(ctx context.Context, buyerID uuid.UUID) (int64, error)
	ListPriced(ctx context.Context, buyerID uuid.UUID, params pagination.Params) ([]pricedItemRecord, int64, error)
	SubTotal(ctx context.Context, buyerID uuid.UUID) (decimal.Decimal, error)
}

type productFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo     repository
	products productFinder
}

// ServiceParams bundles the dependencies required to build a cart service.
type ServiceParams struct {
	Repo     repository
	Products productFinder
}

// NewService constructs a cart service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product finder is required")
	}
	return &service{repo: params.Repo, products: params.Products}, nil
}

func (s *service) AddItem(ctx context.Context, buyerID uuid.UUID, req AddItemRequest) (*CartItemDTO, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity required")
	}
	productID, err := uuid.Parse(strings.TrimSpace(req.ProductID))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
	}
	if req.OrderedQuantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ordered quantity must be positive")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup product")
	}

	// Best-effort stock check. Stock is not reserved here, so a racing sale
	// can still drain it before checkout.
	if req.OrderedQuantity > product.Quantity {
		return nil, pkgerrors.New(pkgerrors.CodeQuantityExceeded, "ordered quantity exceeds available stock").
			WithDetails(map[string]any{"available": product.Quantity})
	}

	if _, err := s.repo.FindByBuyerAndProduct(ctx, buyerID, productID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already in cart")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup cart item")
	}

	item := &models.CartItem{
		ID:              uuid.New(),
		BuyerID:         buyerID,
		ProductID:       productID,
		OrderedQuantity: req.OrderedQuantity,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		// A concurrent add can beat the pre-check; the composite unique
		// index decides.
		if db.IsUniqueViolation(err, "idx_cart_items_buyer_product") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already in cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart item")
	}
	return FromModel(item), nil
}

func (s *service) RemoveItem(ctx context.Context, buyerID uuid.UUID, rawItemID string) error {
	itemID, err := uuid.Parse(strings.TrimSpace(rawItemID))
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid cart item id")
	}

	// Missing and foreign lines read the same, so an item id alone never
	// confirms whether it exists in someone else's cart.
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "cart item is not in your cart")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup cart item")
	}
	if item.BuyerID != buyerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "cart item is not in your cart")
	}

	// A concurrent removal of the same line is fine; it is gone either way.
	if _, err := s.repo.Delete(ctx, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart item")
	}
	return nil
}

// Flush empties the buyer's cart. Flushing an already empty cart succeeds.
func (s *service) Flush(ctx context.Context, buyerID uuid.UUID) error {
	if _, err := s.repo.Flush(ctx, buyerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush cart")
	}
	return nil
}

func (s *service) Count(ctx context.Context, buyerID uuid.UUID) (*CountResponse, error) {
	count, err := s.repo.CountItems(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count cart items")
	}
	return &CountResponse{Count: count}, nil
}

func (s *service) ListPriced(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (*CartPage, error) {
	params = params.Normalize()

	records, total, err := s.repo.ListPriced(ctx, buyerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart items")
	}
	subTotal, err := s.repo.SubTotal(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum cart")
	}

	items := make([]PricedCartItem, 0, len(records))
	for _, record := range records {
		quantity := decimal.NewFromInt(int64(record.OrderedQuantity))
		items = append(items, PricedCartItem{
			CartItemID:      record.CartItemID,
			ProductID:       record.ProductID,
			Name:            record.Name,
			Brand:           record.Brand,
			Category:        record.Category,
			Quantity:        record.Quantity,
			Image:           record.Image,
			FreeShipping:    record.FreeShipping,
			Price:           record.Price,
			OrderedQuantity: record.OrderedQuantity,
			LineTotal:       record.Price.Mul(quantity),
			AddedAt:         record.AddedAt,
		})
	}

	return &CartPage{
		Items:      items,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalItems: total,
		SubTotal:   subTotal,
	}, nil
}
