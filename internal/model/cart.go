package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart pricing rules. Tax is GST at 18%; shipping is free at or above
// 5000 currency units, else a flat 200. Carts expire 30 days after
// creation (advisory only, no background sweep).
var (
	TaxRate               = decimal.NewFromFloat(0.18)
	FreeShippingThreshold = decimal.NewFromInt(5000)
	FlatShippingAmount    = decimal.NewFromInt(200)
)

// CartExpiry is how long a cart stays valid after creation.
const CartExpiry = 30 * 24 * time.Hour

// Cart is the active shopping cart for one user, one per user at a time.
type Cart struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	UserID         uuid.UUID       `json:"userId" db:"user_id"`
	Subtotal       decimal.Decimal `json:"subtotal" db:"subtotal"`
	TaxAmount      decimal.Decimal `json:"taxAmount" db:"tax_amount"`
	ShippingAmount decimal.Decimal `json:"shippingAmount" db:"shipping_amount"`
	DiscountAmount decimal.Decimal `json:"discountAmount" db:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"totalAmount" db:"total_amount"`
	CouponCode     *string         `json:"couponCode,omitempty" db:"coupon_code"`
	CouponDiscount decimal.Decimal `json:"couponDiscount" db:"coupon_discount"`
	IsActive       bool            `json:"isActive" db:"is_active"`
	ExpiresAt      time.Time       `json:"expiresAt" db:"expires_at"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time       `json:"updatedAt" db:"updated_at"`

	Items []CartItem `json:"items,omitempty" db:"-"`
}

// CartItem is one line in a cart. UnitPrice is a snapshot of the product
// price at add-time; TotalPrice is always derived, never set directly.
type CartItem struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	CartID               uuid.UUID       `json:"cartId" db:"cart_id"`
	ProductID            uuid.UUID       `json:"productId" db:"product_id"`
	ProductVariantID     *uuid.UUID      `json:"productVariantId,omitempty" db:"product_variant_id"`
	Quantity             int             `json:"quantity" db:"quantity"`
	UnitPrice            decimal.Decimal `json:"unitPrice" db:"unit_price"`
	TotalPrice           decimal.Decimal `json:"totalPrice" db:"total_price"`
	SelectedVariantName  *string         `json:"selectedVariantName,omitempty" db:"selected_variant_name"`
	SelectedVariantValue *string         `json:"selectedVariantValue,omitempty" db:"selected_variant_value"`
	AddedAt              time.Time       `json:"addedAt" db:"added_at"`
	UpdatedAt            time.Time       `json:"updatedAt" db:"updated_at"`
}

// Totals is the derived pricing breakdown of a cart. The five fields are
// always computed together; no partial update is valid.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	ShippingAmount decimal.Decimal `json:"shippingAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
}

// CalculateTotal recomputes the item's total price from its snapshot unit
// price, the variant price adjustment and the quantity.
func (i *CartItem) CalculateTotal(variantAdjustment decimal.Decimal) {
	i.TotalPrice = i.UnitPrice.Add(variantAdjustment).Mul(decimal.NewFromInt(int64(i.Quantity))).Round(2)
}

// CalculateTotals recomputes the cart's derived pricing fields from its
// items and the applied coupon discount. Idempotent: calling it twice
// without mutation yields the same result.
func (c *Cart) CalculateTotals() Totals {
	subtotal := decimal.Zero
	for _, item := range c.Items {
		subtotal = subtotal.Add(item.TotalPrice)
	}

	taxAmount := subtotal.Mul(TaxRate).Round(2)

	shippingAmount := FlatShippingAmount
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		shippingAmount = decimal.Zero
	}

	discountAmount := c.CouponDiscount

	// A fixed coupon can exceed the subtotal and drive the total
	// negative; not clamped.
	totalAmount := subtotal.Add(taxAmount).Add(shippingAmount).Sub(discountAmount)

	c.Subtotal = subtotal
	c.TaxAmount = taxAmount
	c.ShippingAmount = shippingAmount
	c.DiscountAmount = discountAmount
	c.TotalAmount = totalAmount

	return Totals{
		Subtotal:       subtotal,
		TaxAmount:      taxAmount,
		ShippingAmount: shippingAmount,
		DiscountAmount: discountAmount,
		TotalAmount:    totalAmount,
	}
}

// IsExpired reports whether the cart has passed its expiry. Expired carts
// remain usable until explicitly checked.
func (c *Cart) IsExpired() bool {
	return time.Now().UTC().After(c.ExpiresAt)
}

// TotalItems returns the summed quantity across all items.
func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// NewCart creates an empty active cart for a user.
func NewCart(userID uuid.UUID) *Cart {
	now := time.Now().UTC()
	return &Cart{
		ID:             uuid.New(),
		UserID:         userID,
		Subtotal:       decimal.Zero,
		TaxAmount:      decimal.Zero,
		ShippingAmount: decimal.Zero,
		DiscountAmount: decimal.Zero,
		TotalAmount:    decimal.Zero,
		CouponDiscount: decimal.Zero,
		IsActive:       true,
		ExpiresAt:      now.Add(CartExpiry),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// CartItemIssue describes one problem found while validating a cart for
// checkout.
type CartItemIssue struct {
	ItemID    uuid.UUID `json:"itemId"`
	ProductID uuid.UUID `json:"productId"`
	Message   string    `json:"message"`
}

// CartValidation is the outcome of a checkout pre-flight: blocking errors
// plus non-blocking backorder warnings.
type CartValidation struct {
	IsValid  bool            `json:"isValid"`
	Errors   []CartItemIssue `json:"errors"`
	Warnings []CartItemIssue `json:"warnings"`
}
