package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func activeCoupon() *Coupon {
	return &Coupon{
		Code:           "FESTIVE10",
		DiscountType:   DiscountTypePercentage,
		DiscountValue:  dec("10"),
		MinOrderAmount: decimal.Zero,
		MaxUsesPerUser: 1,
		IsActive:       true,
	}
}

func TestCouponIsValid(t *testing.T) {
	now := time.Now().UTC()

	t.Run("active coupon without window is valid", func(t *testing.T) {
		assert.True(t, activeCoupon().IsValid(now))
	})

	t.Run("inactive coupon is invalid", func(t *testing.T) {
		c := activeCoupon()
		c.IsActive = false
		assert.False(t, c.IsValid(now))
	})

	t.Run("not yet started", func(t *testing.T) {
		c := activeCoupon()
		from := now.Add(time.Hour)
		c.ValidFrom = &from
		assert.False(t, c.IsValid(now))
	})

	t.Run("expired", func(t *testing.T) {
		c := activeCoupon()
		until := now.Add(-time.Hour)
		c.ValidUntil = &until
		assert.False(t, c.IsValid(now))
	})

	t.Run("inside window", func(t *testing.T) {
		c := activeCoupon()
		from := now.Add(-time.Hour)
		until := now.Add(time.Hour)
		c.ValidFrom = &from
		c.ValidUntil = &until
		assert.True(t, c.IsValid(now))
	})

	t.Run("global usage cap reached", func(t *testing.T) {
		c := activeCoupon()
		maxUses := 100
		c.MaxUses = &maxUses
		c.CurrentUses = 100
		assert.False(t, c.IsValid(now))
	})

	t.Run("under global usage cap", func(t *testing.T) {
		c := activeCoupon()
		maxUses := 100
		c.MaxUses = &maxUses
		c.CurrentUses = 99
		assert.True(t, c.IsValid(now))
	})
}

func TestCouponCalculateDiscount(t *testing.T) {
	t.Run("below minimum order yields zero", func(t *testing.T) {
		c := activeCoupon()
		c.MinOrderAmount = dec("1000")
		got := c.CalculateDiscount(dec("999.99"))
		assert.True(t, got.IsZero(), "got %s", got)
	})

	t.Run("percentage of the subtotal", func(t *testing.T) {
		c := activeCoupon()
		got := c.CalculateDiscount(dec("2000.00"))
		assert.True(t, got.Equal(dec("200.00")), "got %s", got)
	})

	t.Run("percentage rounds to two decimals", func(t *testing.T) {
		c := activeCoupon()
		c.DiscountValue = dec("7.5")
		got := c.CalculateDiscount(dec("333.33"))
		assert.True(t, got.Equal(dec("25.00")), "got %s", got)
	})

	t.Run("percentage capped by max discount", func(t *testing.T) {
		c := activeCoupon()
		maxDiscount := dec("150.00")
		c.MaxDiscount = &maxDiscount
		got := c.CalculateDiscount(dec("5000.00"))
		assert.True(t, got.Equal(dec("150.00")), "got %s", got)
	})

	t.Run("cap does not raise a smaller discount", func(t *testing.T) {
		c := activeCoupon()
		maxDiscount := dec("150.00")
		c.MaxDiscount = &maxDiscount
		got := c.CalculateDiscount(dec("1000.00"))
		assert.True(t, got.Equal(dec("100.00")), "got %s", got)
	})

	t.Run("fixed discount is flat", func(t *testing.T) {
		c := activeCoupon()
		c.DiscountType = DiscountTypeFixed
		c.DiscountValue = dec("500.00")
		got := c.CalculateDiscount(dec("2000.00"))
		assert.True(t, got.Equal(dec("500.00")), "got %s", got)
	})

	t.Run("fixed discount is not clamped to the subtotal", func(t *testing.T) {
		c := activeCoupon()
		c.DiscountType = DiscountTypeFixed
		c.DiscountValue = dec("500.00")
		got := c.CalculateDiscount(dec("100.00"))
		assert.True(t, got.Equal(dec("500.00")), "got %s", got)
	})
}
