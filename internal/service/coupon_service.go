package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gemkart/internal/metrics"
	"gemkart/internal/model"
	"gemkart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// couponService implements CouponService.
type couponService struct {
	couponRepo repository.CouponRepository
	cartRepo   repository.CartRepository
	logger     zerolog.Logger
}

// NewCouponService creates a new coupon service.
func NewCouponService(
	couponRepo repository.CouponRepository,
	cartRepo repository.CartRepository,
	logger zerolog.Logger,
) CouponService {
	return &couponService{
		couponRepo: couponRepo,
		cartRepo:   cartRepo,
		logger:     logger.With().Str("service", "coupon").Logger(),
	}
}

// Apply validates a coupon against the user's cart and stores the priced
// discount on it. Checks run in a fixed order so the caller always sees
// the same failure for the same coupon state: existence, validity window,
// minimum order amount, then per-user usage.
func (s *couponService) Apply(ctx context.Context, userID uuid.UUID, code string) (*model.Cart, error) {
	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	coupon, err := s.couponRepo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	if coupon == nil {
		metrics.CouponsRejectedTotal.WithLabelValues("not_found").Inc()
		return nil, model.ErrCouponNotFound
	}

	if !coupon.IsValid(time.Now().UTC()) {
		metrics.CouponsRejectedTotal.WithLabelValues("invalid").Inc()
		return nil, model.ErrInvalidCoupon
	}

	if cart.Subtotal.LessThan(coupon.MinOrderAmount) {
		metrics.CouponsRejectedTotal.WithLabelValues("min_order").Inc()
		return nil, model.NewMinOrderNotMetError(coupon.MinOrderAmount.StringFixed(2))
	}

	used, err := s.couponRepo.CountUsageByUser(ctx, coupon.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count coupon usage: %w", err)
	}
	if used >= coupon.MaxUsesPerUser {
		metrics.CouponsRejectedTotal.WithLabelValues("usage_limit").Inc()
		return nil, model.ErrUsageLimitExceeded
	}

	cart.CouponCode = &coupon.Code
	cart.CouponDiscount = coupon.CalculateDiscount(cart.Subtotal)
	cart.CalculateTotals()
	if err := s.cartRepo.SaveTotals(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart totals: %w", err)
	}

	metrics.CouponsAppliedTotal.Inc()
	s.logger.Info().
		Str("cart_id", cart.ID.String()).
		Str("coupon_code", coupon.Code).
		Str("discount", cart.CouponDiscount.StringFixed(2)).
		Msg("coupon applied")

	return cart, nil
}

// Remove clears the applied coupon from the cart.
func (s *couponService) Remove(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.CouponCode = nil
	cart.CouponDiscount = decimal.Zero
	cart.CalculateTotals()
	if err := s.cartRepo.SaveTotals(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart totals: %w", err)
	}

	s.logger.Info().Str("cart_id", cart.ID.String()).Msg("coupon removed")
	return cart, nil
}

// loadCart fetches the user's active cart with items and a fresh
// subtotal. Coupons only apply to an existing cart.
func (s *couponService) loadCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active cart: %w", err)
	}
	if cart == nil {
		return nil, model.ErrCartNotFound
	}

	items, err := s.cartRepo.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	cart.Items = items
	cart.CalculateTotals()
	return cart, nil
}
