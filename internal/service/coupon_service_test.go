package service

import (
	"context"
	"testing"
	"time"

	"gemkart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCouponService(couponRepo *MockCouponRepository, cartRepo *MockCartRepository) CouponService {
	return NewCouponService(couponRepo, cartRepo, zerolog.Nop())
}

func percentageCoupon(code string) *model.Coupon {
	return &model.Coupon{
		ID:             uuid.New(),
		Code:           code,
		Name:           "Festive offer",
		DiscountType:   model.DiscountTypePercentage,
		DiscountValue:  dec("10"),
		MinOrderAmount: dec("0"),
		MaxUsesPerUser: 1,
		IsActive:       true,
	}
}

// cartWorth wires up a cart whose items sum to the given subtotal.
func cartWorth(cartRepo *MockCartRepository, ctx context.Context, userID uuid.UUID, subtotal string) *model.Cart {
	cart := model.NewCart(userID)
	items := []model.CartItem{
		{ID: uuid.New(), CartID: cart.ID, ProductID: uuid.New(), Quantity: 1, UnitPrice: dec(subtotal), TotalPrice: dec(subtotal)},
	}
	cartRepo.On("GetActiveByUser", ctx, userID).Return(cart, nil)
	cartRepo.On("ListItems", ctx, cart.ID).Return(items, nil)
	return cart
}

func TestCouponServiceApply(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("requires an existing cart", func(t *testing.T) {
		couponRepo := new(MockCouponRepository)
		cartRepo := new(MockCartRepository)
		svc := newTestCouponService(couponRepo, cartRepo)

		cartRepo.On("GetActiveByUser", ctx, userID).Return(nil, nil)

		_, err := svc.Apply(ctx, userID, "FESTIVE10")
		assert.ErrorIs(t, err, model.ErrCartNotFound)
	})

	t.Run("unknown code", func(t *testing.T) {
		couponRepo := new(MockCouponRepository)
		cartRepo := new(MockCartRepository)
		svc := newTestCouponService(couponRepo, cartRepo)

		cartWorth(cartRepo, ctx, userID, "2000.00")
		couponRepo.On("GetByCode", ctx, "NOPE").Return(nil, nil)

		_, err := svc.Apply(ctx, userID, "nope")
		assert.ErrorIs(t, err, model.ErrCouponNotFound)
	})

	t.Run("code lookup is upper-cased and trimmed", func(t *testing.T) {
		couponRepo := new(MockCouponRepository)
		cartRepo := new(MockCartRepository)
		svc := newTestCouponService(couponRepo, cartRepo)

		cart := cartWorth(cartRepo, ctx, userID, "2000.00")
		coupon := percentageCoupon("FESTIVE10")
		couponRepo.On("GetByCode", ctx, "FESTIVE10").Return(coupon, nil)
		couponRepo.On("CountUsageByUser", ctx, coupon.ID, userID).Return(0, nil)
		cartRepo.On("SaveTotals", ctx, cart).Return(nil)

		_, err := svc.Apply(ctx, userID, "  festive10 ")
		require.NoError(t, err)
		couponRepo.AssertExpectations(t)
	})

	t.Run("expired coupon", func(t *testing.T) {
		couponRepo := new(MockCouponRepository)
		cartRepo := new(MockCartRepository)
		svc := newTestCouponService(couponRepo, cartRepo)

		cartWorth(cartRepo, ctx, userID, "2000.00")
		coupon := percentageCoupon("OLD")
		until := time.Now().UTC().Add(-time.Hour)
		coupon.ValidUntil = &until
		couponRepo.On("GetByCode", ctx, "OLD").Return(coupon, nil)

		_, err := svc.Apply(ctx, userID, "OLD")
		assert.ErrorIs(t, err, model.ErrInvalidCoupon)
		couponRepo.AssertNotCalled(t, "CountUsageByUser", ctx, coupon.ID, userID)
	})

	t.Run("subtotal below the minimum order amount", func(t *testing.T) {
		couponRepo := new(MockCouponRepository)
		cartRepo := new(MockCartRepository)
		svc := newTestCouponService(couponRepo, cartRepo)

		cartWorth(cartRepo, ctx, userID, "500.00")
		coupon := percentageCoupon("BIG")
		coupon.MinOrderAmount = dec("1000.00")
		couponRepo.On("GetByCode", ctx, "BIG").Return(coupon, nil)

		_, err := svc.Apply(ctx, userID, "BIG")

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.ErrCodeMinOrderNotMet, domainErr.Code)
		assert.Contains(t, domainErr.Message, "1000.00")
	})

	t.Run("per-user usage limit reached", func(t *testing.T) {
		couponRepo := new(MockCouponRepository)
		cartRepo := new(MockCartRepository)
		svc := newTestCouponService(couponRepo, cartRepo)

		cartWorth(cartRepo, ctx, userID, "2000.00")
		coupon := percentageCoupon("ONCE")
		couponRepo.On("GetByCode", ctx, "ONCE").Return(coupon, nil)
		couponRepo.On("CountUsageByUser", ctx, coupon.ID, userID).Return(1, nil)

		_, err := svc.Apply(ctx, userID, "ONCE")
		assert.ErrorIs(t, err, model.ErrUsageLimitExceeded)
	})

	t.Run("stores the priced discount and recomputed totals", func(t *testing.T) {
		couponRepo := new(MockCouponRepository)
		cartRepo := new(MockCartRepository)
		svc := newTestCouponService(couponRepo, cartRepo)

		cart := cartWorth(cartRepo, ctx, userID, "2000.00")
		coupon := percentageCoupon("FESTIVE10")
		couponRepo.On("GetByCode", ctx, "FESTIVE10").Return(coupon, nil)
		couponRepo.On("CountUsageByUser", ctx, coupon.ID, userID).Return(0, nil)
		cartRepo.On("SaveTotals", ctx, cart).Return(nil)

		result, err := svc.Apply(ctx, userID, "FESTIVE10")

		require.NoError(t, err)
		require.NotNil(t, result.CouponCode)
		assert.Equal(t, "FESTIVE10", *result.CouponCode)
		assert.True(t, result.CouponDiscount.Equal(dec("200.00")), "discount %s", result.CouponDiscount)
		// 2000 + 360 tax + 200 shipping - 200 discount
		assert.True(t, result.TotalAmount.Equal(dec("2360.00")), "total %s", result.TotalAmount)
	})

	t.Run("percentage discount capped by max discount", func(t *testing.T) {
		couponRepo := new(MockCouponRepository)
		cartRepo := new(MockCartRepository)
		svc := newTestCouponService(couponRepo, cartRepo)

		cart := cartWorth(cartRepo, ctx, userID, "10000.00")
		coupon := percentageCoupon("CAPPED")
		maxDiscount := dec("300.00")
		coupon.MaxDiscount = &maxDiscount
		couponRepo.On("GetByCode", ctx, "CAPPED").Return(coupon, nil)
		couponRepo.On("CountUsageByUser", ctx, coupon.ID, userID).Return(0, nil)
		cartRepo.On("SaveTotals", ctx, cart).Return(nil)

		result, err := svc.Apply(ctx, userID, "CAPPED")

		require.NoError(t, err)
		assert.True(t, result.CouponDiscount.Equal(dec("300.00")), "discount %s", result.CouponDiscount)
	})

	t.Run("fixed discount may push the total negative", func(t *testing.T) {
		couponRepo := new(MockCouponRepository)
		cartRepo := new(MockCartRepository)
		svc := newTestCouponService(couponRepo, cartRepo)

		cart := cartWorth(cartRepo, ctx, userID, "100.00")
		coupon := percentageCoupon("FLAT500")
		coupon.DiscountType = model.DiscountTypeFixed
		coupon.DiscountValue = dec("500.00")
		couponRepo.On("GetByCode", ctx, "FLAT500").Return(coupon, nil)
		couponRepo.On("CountUsageByUser", ctx, coupon.ID, userID).Return(0, nil)
		cartRepo.On("SaveTotals", ctx, cart).Return(nil)

		result, err := svc.Apply(ctx, userID, "FLAT500")

		require.NoError(t, err)
		// 100 + 18 + 200 - 500
		assert.True(t, result.TotalAmount.Equal(dec("-182.00")), "total %s", result.TotalAmount)
	})
}

func TestCouponServiceRemove(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("requires an existing cart", func(t *testing.T) {
		couponRepo := new(MockCouponRepository)
		cartRepo := new(MockCartRepository)
		svc := newTestCouponService(couponRepo, cartRepo)

		cartRepo.On("GetActiveByUser", ctx, userID).Return(nil, nil)

		_, err := svc.Remove(ctx, userID)
		assert.ErrorIs(t, err, model.ErrCartNotFound)
	})

	t.Run("clears the coupon and recomputes totals", func(t *testing.T) {
		couponRepo := new(MockCouponRepository)
		cartRepo := new(MockCartRepository)
		svc := newTestCouponService(couponRepo, cartRepo)

		cart := cartWorth(cartRepo, ctx, userID, "2000.00")
		code := "FESTIVE10"
		cart.CouponCode = &code
		cart.CouponDiscount = dec("200.00")
		cartRepo.On("SaveTotals", ctx, cart).Return(nil)

		result, err := svc.Remove(ctx, userID)

		require.NoError(t, err)
		assert.Nil(t, result.CouponCode)
		assert.True(t, result.CouponDiscount.IsZero())
		assert.True(t, result.TotalAmount.Equal(dec("2560.00")), "total %s", result.TotalAmount)
	})
}
