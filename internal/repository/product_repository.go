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

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `
		SELECT id, name, sku, price, material, weight, purity,
		       stock_quantity, track_quantity, allow_backorder, is_active,
		       created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var p model.Product
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.SKU, &p.Price, &p.Material, &p.Weight, &p.Purity,
		&p.StockQuantity, &p.TrackQuantity, &p.AllowBackorder, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// GetVariantByID retrieves a product variant by its ID.
func (r *productRepository) GetVariantByID(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error) {
	query := `
		SELECT id, product_id, name, value, price_adjustment, stock_quantity, is_active, created_at
		FROM product_variants
		WHERE id = $1
	`

	var v model.ProductVariant
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.ProductID, &v.Name, &v.Value, &v.PriceAdjustment,
		&v.StockQuantity, &v.IsActive, &v.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("variant_id", id.String()).Msg("variant not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("variant_id", id.String()).Msg("failed to query variant")
		return nil, fmt.Errorf("failed to query variant: %w", err)
	}

	return &v, nil
}

// DecrementStock atomically reduces stock within the transaction. The
// conditional WHERE clause is what prevents oversell under concurrent
// orders: the row only changes when enough stock remains or backorder is
// allowed, so stock can go negative only as deliberate backorder debt.
func (r *productRepository) DecrementStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, variantID *uuid.UUID, qty int) error {
	if variantID != nil {
		query := `
			UPDATE product_variants v
			SET stock_quantity = v.stock_quantity - $2
			FROM products p
			WHERE v.id = $1
			  AND p.id = v.product_id
			  AND (p.allow_backorder OR v.stock_quantity >= $2)
		`
		ct, err := tx.Exec(ctx, query, *variantID, qty)
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("variant_id", variantID.String()).
				Int("quantity", qty).
				Msg("failed to decrement variant stock")
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		if ct.RowsAffected() == 0 {
			r.logger.Warn().
				Str("variant_id", variantID.String()).
				Int("quantity", qty).
				Msg("conditional stock decrement matched no rows")
			return model.ErrInsufficientStock
		}
		return nil
	}

	query := `
		UPDATE products
		SET stock_quantity = stock_quantity - $2, updated_at = NOW()
		WHERE id = $1
		  AND (allow_backorder OR stock_quantity >= $2)
	`
	ct, err := tx.Exec(ctx, query, productID, qty)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_id", productID.String()).
			Int("quantity", qty).
			Msg("failed to decrement product stock")
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if ct.RowsAffected() == 0 {
		r.logger.Warn().
			Str("product_id", productID.String()).
			Int("quantity", qty).
			Msg("conditional stock decrement matched no rows")
		return model.ErrInsufficientStock
	}
	return nil
}

// IncrementStock restores stock within the transaction.
func (r *productRepository) IncrementStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, variantID *uuid.UUID, qty int) error {
	var err error

	if variantID != nil {
		query := `
			UPDATE product_variants
			SET stock_quantity = stock_quantity + $2
			WHERE id = $1
		`
		_, err = tx.Exec(ctx, query, *variantID, qty)
	} else {
		query := `
			UPDATE products
			SET stock_quantity = stock_quantity + $2, updated_at = NOW()
			WHERE id = $1
		`
		_, err = tx.Exec(ctx, query, productID, qty)
	}

	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_id", productID.String()).
			Int("quantity", qty).
			Msg("failed to increment stock")
		return fmt.Errorf("failed to increment stock: %w", err)
	}

	return nil
}
