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

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

const cartColumns = `
	id, user_id, subtotal, tax_amount, shipping_amount, discount_amount,
	total_amount, coupon_code, coupon_discount, is_active, expires_at,
	created_at, updated_at
`

func scanCart(row pgx.Row) (*model.Cart, error) {
	var c model.Cart
	err := row.Scan(
		&c.ID, &c.UserID, &c.Subtotal, &c.TaxAmount, &c.ShippingAmount,
		&c.DiscountAmount, &c.TotalAmount, &c.CouponCode, &c.CouponDiscount,
		&c.IsActive, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const cartItemColumns = `
	id, cart_id, product_id, product_variant_id, quantity, unit_price,
	total_price, selected_variant_name, selected_variant_value, added_at,
	updated_at
`

func scanCartItem(row pgx.Row) (*model.CartItem, error) {
	var i model.CartItem
	err := row.Scan(
		&i.ID, &i.CartID, &i.ProductID, &i.ProductVariantID, &i.Quantity,
		&i.UnitPrice, &i.TotalPrice, &i.SelectedVariantName,
		&i.SelectedVariantValue, &i.AddedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// GetActiveByUser retrieves the user's active cart, or nil.
func (r *cartRepository) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE user_id = $1 AND is_active`

	cart, err := scanCart(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("user_id", userID.String()).Msg("no active cart")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	return cart, nil
}

// Create inserts a new cart.
func (r *cartRepository) Create(ctx context.Context, cart *model.Cart) error {
	query := `
		INSERT INTO carts (` + cartColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		cart.ID, cart.UserID, cart.Subtotal, cart.TaxAmount, cart.ShippingAmount,
		cart.DiscountAmount, cart.TotalAmount, cart.CouponCode, cart.CouponDiscount,
		cart.IsActive, cart.ExpiresAt, cart.CreatedAt, cart.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", cart.UserID.String()).Msg("failed to create cart")
		return fmt.Errorf("failed to create cart: %w", err)
	}

	r.logger.Debug().Str("cart_id", cart.ID.String()).Msg("cart created")
	return nil
}

// ListItems retrieves all items of a cart.
func (r *cartRepository) ListItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error) {
	query := `SELECT ` + cartItemColumns + ` FROM cart_items WHERE cart_id = $1 ORDER BY added_at`

	rows, err := r.pool.Query(ctx, query, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart item row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart item rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// GetItemForUser retrieves a cart item scoped to carts owned by the user, or nil.
func (r *cartRepository) GetItemForUser(ctx context.Context, itemID, userID uuid.UUID) (*model.CartItem, error) {
	query := `
		SELECT i.id, i.cart_id, i.product_id, i.product_variant_id, i.quantity,
		       i.unit_price, i.total_price, i.selected_variant_name,
		       i.selected_variant_value, i.added_at, i.updated_at
		FROM cart_items i
		JOIN carts c ON c.id = i.cart_id
		WHERE i.id = $1 AND c.user_id = $2
	`

	item, err := scanCartItem(r.pool.QueryRow(ctx, query, itemID, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("item_id", itemID.String()).Msg("cart item not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("failed to query cart item")
		return nil, fmt.Errorf("failed to query cart item: %w", err)
	}

	return item, nil
}

// FindItem retrieves the item for a (product, variant) pair in a cart, or nil.
func (r *cartRepository) FindItem(ctx context.Context, cartID, productID uuid.UUID, variantID *uuid.UUID) (*model.CartItem, error) {
	query := `
		SELECT ` + cartItemColumns + `
		FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
		  AND product_variant_id IS NOT DISTINCT FROM $3
	`

	item, err := scanCartItem(r.pool.QueryRow(ctx, query, cartID, productID, variantID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).
			Str("cart_id", cartID.String()).
			Str("product_id", productID.String()).
			Msg("failed to find cart item")
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}

	return item, nil
}

// CreateItem inserts a new cart item.
func (r *cartRepository) CreateItem(ctx context.Context, item *model.CartItem) error {
	query := `
		INSERT INTO cart_items (` + cartItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		item.ID, item.CartID, item.ProductID, item.ProductVariantID, item.Quantity,
		item.UnitPrice, item.TotalPrice, item.SelectedVariantName,
		item.SelectedVariantValue, item.AddedAt, item.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).
			Str("cart_id", item.CartID.String()).
			Str("product_id", item.ProductID.String()).
			Msg("failed to create cart item")
		return fmt.Errorf("failed to create cart item: %w", err)
	}

	return nil
}

// UpdateItem persists an item's quantity and total price.
func (r *cartRepository) UpdateItem(ctx context.Context, item *model.CartItem) error {
	query := `
		UPDATE cart_items
		SET quantity = $2, total_price = $3, updated_at = $4
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, item.ID, item.Quantity, item.TotalPrice, item.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("item_id", item.ID.String()).Msg("failed to update cart item")
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	return nil
}

// DeleteItem removes one item.
func (r *cartRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		r.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("failed to delete cart item")
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	return nil
}

// DeleteItems removes all items of a cart.
func (r *cartRepository) DeleteItems(ctx context.Context, cartID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to delete cart items")
		return fmt.Errorf("failed to delete cart items: %w", err)
	}
	return nil
}

const saveTotalsQuery = `
	UPDATE carts
	SET subtotal = $2, tax_amount = $3, shipping_amount = $4,
	    discount_amount = $5, total_amount = $6, coupon_code = $7,
	    coupon_discount = $8, updated_at = NOW()
	WHERE id = $1
`

// SaveTotals persists the cart's coupon fields and derived totals.
func (r *cartRepository) SaveTotals(ctx context.Context, cart *model.Cart) error {
	_, err := r.pool.Exec(ctx, saveTotalsQuery,
		cart.ID, cart.Subtotal, cart.TaxAmount, cart.ShippingAmount,
		cart.DiscountAmount, cart.TotalAmount, cart.CouponCode, cart.CouponDiscount,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cart.ID.String()).Msg("failed to save cart totals")
		return fmt.Errorf("failed to save cart totals: %w", err)
	}
	return nil
}

// ClearTx empties the cart within the provided transaction.
func (r *cartRepository) ClearTx(ctx context.Context, tx pgx.Tx, cart *model.Cart) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cart.ID); err != nil {
		r.logger.Error().Err(err).Str("cart_id", cart.ID.String()).Msg("failed to delete cart items in tx")
		return fmt.Errorf("failed to delete cart items: %w", err)
	}

	_, err := tx.Exec(ctx, saveTotalsQuery,
		cart.ID, cart.Subtotal, cart.TaxAmount, cart.ShippingAmount,
		cart.DiscountAmount, cart.TotalAmount, cart.CouponCode, cart.CouponDiscount,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cart.ID.String()).Msg("failed to reset cart in tx")
		return fmt.Errorf("failed to reset cart: %w", err)
	}

	return nil
}
