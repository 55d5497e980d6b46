package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a jewelry item in the catalogue.
type Product struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	Name           string           `json:"name" db:"name"`
	SKU            *string          `json:"sku,omitempty" db:"sku"`
	Price          decimal.Decimal  `json:"price" db:"price"`
	Material       *string          `json:"material,omitempty" db:"material"`
	Weight         *decimal.Decimal `json:"weight,omitempty" db:"weight"`
	Purity         *string          `json:"purity,omitempty" db:"purity"`
	StockQuantity  int              `json:"stockQuantity" db:"stock_quantity"`
	TrackQuantity  bool             `json:"trackQuantity" db:"track_quantity"`
	AllowBackorder bool             `json:"allowBackorder" db:"allow_backorder"`
	IsActive       bool             `json:"isActive" db:"is_active"`
	CreatedAt      time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time        `json:"updatedAt" db:"updated_at"`
}

// ProductVariant is a purchasable variation of a product, e.g. ring size
// or metal colour. When a variant is selected its stock supersedes the
// parent product's for availability checks.
type ProductVariant struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	ProductID       uuid.UUID       `json:"productId" db:"product_id"`
	Name            string          `json:"name" db:"name"`
	Value           string          `json:"value" db:"value"`
	PriceAdjustment decimal.Decimal `json:"priceAdjustment" db:"price_adjustment"`
	StockQuantity   int             `json:"stockQuantity" db:"stock_quantity"`
	IsActive        bool            `json:"isActive" db:"is_active"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
}

// AvailableStock returns the stock count that governs availability for a
// purchase of this product: the variant's when one is selected, else the
// product's own count.
func (p *Product) AvailableStock(variant *ProductVariant) int {
	if variant != nil {
		return variant.StockQuantity
	}
	return p.StockQuantity
}

// CanFulfil reports whether a purchase of qty units is allowed. Products
// that do not track quantity always fulfil; backorder permits exceeding
// the available stock.
func (p *Product) CanFulfil(variant *ProductVariant, qty int) bool {
	if !p.TrackQuantity {
		return true
	}
	if qty <= p.AvailableStock(variant) {
		return true
	}
	return p.AllowBackorder
}
