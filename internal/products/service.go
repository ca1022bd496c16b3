package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kinmelhq/kinmel-backend/pkg/db/models"
	pkgerrors "github.com/kinmelhq/kinmel-backend/pkg/errors"
	"github.com/kinmelhq/kinmel-backend/pkg/pagination"
)

// Service defines the behavior needed by the products controller.
type Service interface {
	Add(ctx context.Context, sellerID uuid.UUID, req UpsertProductRequest) (*ProductDTO, error)
	Edit(ctx context.Context, sellerID uuid.UUID, rawID string, req UpsertProductRequest) (*ProductDTO, error)
	Delete(ctx context.Context, sellerID uuid.UUID, rawID string) error
	Detail(ctx context.Context, rawID string) (*ProductDTO, error)
	List(ctx context.Context, params pagination.Params) (*ProductPage, error)
}

type repository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, params pagination.Params) ([]models.Product, int64, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// UpsertProductRequest is the inbound payload for both create and edit.
type UpsertProductRequest struct {
	Name         string          `json:"name" validate:"required"`
	Brand        string          `json:"brand" validate:"required"`
	Category     string          `json:"category" validate:"required"`
	Price        decimal.Decimal `json:"price" validate:"required"`
	Quantity     int             `json:"quantity" validate:"gte=0"`
	Image        string          `json:"image"`
	FreeShipping bool            `json:"free_shipping"`
	Description  string          `json:"description"`
}

type service struct {
	repo repository
}

// ServiceParams bundles the dependencies required to build a products service.
type ServiceParams struct {
	Repo repository
}

// NewService constructs a products service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("products repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) Add(ctx context.Context, sellerID uuid.UUID, req UpsertProductRequest) (*ProductDTO, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "seller identity required")
	}
	if req.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	product := &models.Product{
		ID:           uuid.New(),
		SellerID:     sellerID,
		Name:         strings.TrimSpace(req.Name),
		Brand:        strings.TrimSpace(req.Brand),
		Category:     strings.TrimSpace(req.Category),
		Price:        req.Price,
		Quantity:     req.Quantity,
		Image:        req.Image,
		FreeShipping: req.FreeShipping,
		Description:  req.Description,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return FromModel(product), nil
}

func (s *service) Edit(ctx context.Context, sellerID uuid.UUID, rawID string, req UpsertProductRequest) (*ProductDTO, error) {
	product, err := s.loadOwned(ctx, sellerID, rawID)
	if err != nil {
		return nil, err
	}
	if req.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	product.Name = strings.TrimSpace(req.Name)
	product.Brand = strings.TrimSpace(req.Brand)
	product.Category = strings.TrimSpace(req.Category)
	product.Price = req.Price
	product.Quantity = req.Quantity
	product.Image = req.Image
	product.FreeShipping = req.FreeShipping
	product.Description = req.Description

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	return FromModel(product), nil
}

func (s *service) Delete(ctx context.Context, sellerID uuid.UUID, rawID string) error {
	product, err := s.loadOwned(ctx, sellerID, rawID)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, product.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *service) Detail(ctx context.Context, rawID string) (*ProductDTO, error) {
	id, err := parseProductID(rawID)
	if err != nil {
		return nil, err
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup product")
	}
	return FromModel(product), nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*ProductPage, error) {
	params = params.Normalize()
	rows, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	items := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return &ProductPage{
		Items: items,
		Page:  params.Page,
		Limit: params.Limit,
		Total: total,
	}, nil
}

// loadOwned resolves the product and verifies the caller owns it. The
// existence check runs before the ownership check so a wrong owner on a
// missing product still reads as not found.
func (s *service) loadOwned(ctx context.Context, sellerID uuid.UUID, rawID string) (*models.Product, error) {
	id, err := parseProductID(rawID)
	if err != nil {
		return nil, err
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup product")
	}
	if product.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another seller")
	}
	return product, nil
}

func parseProductID(rawID string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
	}
	return id, nil
}
