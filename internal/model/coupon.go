package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Discount types supported by coupons.
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// Coupon is a discount rule applied to a cart subtotal, subject to a
// validity window and usage caps. Codes are stored upper-cased.
type Coupon struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	Code           string           `json:"code" db:"code"`
	Name           string           `json:"name" db:"name"`
	Description    *string          `json:"description,omitempty" db:"description"`
	DiscountType   string           `json:"discountType" db:"discount_type"`
	DiscountValue  decimal.Decimal  `json:"discountValue" db:"discount_value"`
	MaxDiscount    *decimal.Decimal `json:"maxDiscount,omitempty" db:"max_discount"`
	MinOrderAmount decimal.Decimal  `json:"minOrderAmount" db:"min_order_amount"`
	MaxUses        *int             `json:"maxUses,omitempty" db:"max_uses"`
	MaxUsesPerUser int              `json:"maxUsesPerUser" db:"max_uses_per_user"`
	CurrentUses    int              `json:"currentUses" db:"current_uses"`
	IsActive       bool             `json:"isActive" db:"is_active"`
	ValidFrom      *time.Time       `json:"validFrom,omitempty" db:"valid_from"`
	ValidUntil     *time.Time       `json:"validUntil,omitempty" db:"valid_until"`
	CreatedAt      time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time        `json:"updatedAt" db:"updated_at"`
}

// IsValid reports whether the coupon can currently be applied: active,
// inside its validity window (either bound may be absent) and under its
// global usage cap.
func (c *Coupon) IsValid(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return false
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return false
	}
	if c.MaxUses != nil && c.CurrentUses >= *c.MaxUses {
		return false
	}
	return true
}

// CalculateDiscount prices the coupon against an order subtotal.
// Percentage discounts are capped by MaxDiscount when set; fixed
// discounts are flat and may exceed the subtotal.
func (c *Coupon) CalculateDiscount(orderAmount decimal.Decimal) decimal.Decimal {
	if orderAmount.LessThan(c.MinOrderAmount) {
		return decimal.Zero
	}

	if c.DiscountType == DiscountTypePercentage {
		discount := orderAmount.Mul(c.DiscountValue).Div(decimal.NewFromInt(100)).Round(2)
		if c.MaxDiscount != nil && discount.GreaterThan(*c.MaxDiscount) {
			discount = *c.MaxDiscount
		}
		return discount
	}

	return c.DiscountValue
}

// CouponUsage records one successful coupon application. Rows for a
// (coupon, user) pair count toward MaxUsesPerUser.
type CouponUsage struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	CouponID       uuid.UUID       `json:"couponId" db:"coupon_id"`
	UserID         uuid.UUID       `json:"userId" db:"user_id"`
	OrderID        uuid.UUID       `json:"orderId" db:"order_id"`
	DiscountAmount decimal.Decimal `json:"discountAmount" db:"discount_amount"`
	UsedAt         time.Time       `json:"usedAt" db:"used_at"`
}
