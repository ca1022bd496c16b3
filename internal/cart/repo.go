package cart

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kinmelhq/kinmel-backend/pkg/db/models"
	"github.com/kinmelhq/kinmel-backend/pkg/pagination"
)

// Repository encapsulates cart persistence, including the priced listing
// queries that join cart lines against the live product catalog.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new cart line. Unique-index violations surface as-is so
// the service can translate them.
func (r *Repository) Create(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// FindByID loads a cart line by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByBuyerAndProduct loads the buyer's existing line for a product.
func (r *Repository) FindByBuyerAndProduct(ctx context.Context, buyerID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("buyer_id = ? AND product_id = ?", buyerID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes one cart line and reports whether a row was deleted.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CartItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Flush removes every line in the buyer's cart and returns how many went.
func (r *Repository) Flush(ctx context.Context, buyerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("buyer_id = ?", buyerID).Delete(&models.CartItem{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// CountItems counts the buyer's cart lines, orphaned or not.
func (r *Repository) CountItems(ctx context.Context, buyerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("buyer_id = ?", buyerID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// RemoveOrphans deletes the buyer's cart lines whose product no longer
// exists and returns how many were pruned.
func (r *Repository) RemoveOrphans(ctx context.Context, buyerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("buyer_id = ? AND product_id NOT IN (SELECT id FROM products)", buyerID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

type pricedItemRecord struct {
	CartItemID      uuid.UUID       `gorm:"column:cart_item_id"`
	ProductID       uuid.UUID       `gorm:"column:product_id"`
	Name            string          `gorm:"column:name"`
	Brand           string          `gorm:"column:brand"`
	Category        string          `gorm:"column:category"`
	Quantity        int             `gorm:"column:quantity"`
	Image           string          `gorm:"column:image"`
	FreeShipping    bool            `gorm:"column:free_shipping"`
	Price           decimal.Decimal `gorm:"column:price"`
	OrderedQuantity int             `gorm:"column:ordered_quantity"`
	AddedAt         time.Time       `gorm:"column:added_at"`
}

// ListPriced returns one page of the buyer's cart joined with product data.
// The inner join drops lines whose product no longer exists, and the stable
// (created_at, id) ordering keeps page windows deterministic. Offset and
// limit apply to the joined lines only.
func (r *Repository) ListPriced(ctx context.Context, buyerID uuid.UUID, params pagination.Params) ([]pricedItemRecord, int64, error) {
	params = params.Normalize()

	base := r.db.WithContext(ctx).
		Table("cart_items ci").
		Joins("JOIN products p ON p.id = ci.product_id").
		Where("ci.buyer_id = ?", buyerID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	selectColumns := []string{
		"ci.id AS cart_item_id",
		"ci.ordered_quantity",
		"ci.created_at AS added_at",
		"p.id AS product_id",
		"p.name",
		"p.brand",
		"p.category",
		"p.quantity",
		"p.image",
		"p.free_shipping",
		"p.price",
	}

	var records []pricedItemRecord
	err := base.Session(&gorm.Session{}).
		Select(strings.Join(selectColumns, ", ")).
		Order("ci.created_at ASC").
		Order("ci.id ASC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Scan(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// SubTotal sums ordered_quantity * price across the buyer's entire cart.
// Lines whose product was deleted contribute nothing. An empty cart sums
// to zero rather than null.
func (r *Repository) SubTotal(ctx context.Context, buyerID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		SubTotal decimal.Decimal `gorm:"column:sub_total"`
	}
	err := r.db.WithContext(ctx).
		Table("cart_items ci").
		Joins("JOIN products p ON p.id = ci.product_id").
		Where("ci.buyer_id = ?", buyerID).
		Select("COALESCE(SUM(ci.ordered_quantity * p.price), 0) AS sub_total").
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.SubTotal, nil
}
