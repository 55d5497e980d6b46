package repository

import (
	"context"
	"fmt"

	"gemkart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// couponRepository implements the CouponRepository interface using PostgreSQL.
type couponRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(pool *pgxpool.Pool, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

// GetByCode retrieves a coupon by its upper-cased code, or nil.
func (r *couponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `
		SELECT id, code, name, description, discount_type, discount_value,
		       max_discount, min_order_amount, max_uses, max_uses_per_user,
		       current_uses, is_active, valid_from, valid_until,
		       created_at, updated_at
		FROM coupons
		WHERE code = $1
	`

	var c model.Coupon
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&c.ID, &c.Code, &c.Name, &c.Description, &c.DiscountType, &c.DiscountValue,
		&c.MaxDiscount, &c.MinOrderAmount, &c.MaxUses, &c.MaxUsesPerUser,
		&c.CurrentUses, &c.IsActive, &c.ValidFrom, &c.ValidUntil,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("code", code).Msg("coupon not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}

	return &c, nil
}

// CountUsageByUser counts how many times a user has used a coupon.
func (r *couponRepository) CountUsageByUser(ctx context.Context, couponID, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM coupon_usages WHERE coupon_id = $1 AND user_id = $2`

	var count int
	err := r.pool.QueryRow(ctx, query, couponID, userID).Scan(&count)
	if err != nil {
		r.logger.Error().Err(err).
			Str("coupon_id", couponID.String()).
			Str("user_id", userID.String()).
			Msg("failed to count coupon usage")
		return 0, fmt.Errorf("failed to count coupon usage: %w", err)
	}

	return count, nil
}

// RecordUsage inserts a usage row within the provided transaction.
func (r *couponRepository) RecordUsage(ctx context.Context, tx pgx.Tx, usage *model.CouponUsage) error {
	query := `
		INSERT INTO coupon_usages (id, coupon_id, user_id, order_id, discount_amount, used_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.Exec(ctx, query,
		usage.ID, usage.CouponID, usage.UserID, usage.OrderID,
		usage.DiscountAmount, usage.UsedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).
			Str("coupon_id", usage.CouponID.String()).
			Str("order_id", usage.OrderID.String()).
			Msg("failed to record coupon usage")
		return fmt.Errorf("failed to record coupon usage: %w", err)
	}

	return nil
}

// IncrementUses bumps the coupon's global usage counter within the transaction.
func (r *couponRepository) IncrementUses(ctx context.Context, tx pgx.Tx, couponID uuid.UUID) error {
	query := `UPDATE coupons SET current_uses = current_uses + 1, updated_at = NOW() WHERE id = $1`

	_, err := tx.Exec(ctx, query, couponID)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", couponID.String()).Msg("failed to increment coupon uses")
		return fmt.Errorf("failed to increment coupon uses: %w", err)
	}

	return nil
}
