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

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

const orderColumns = `
	id, order_number, user_id, status, subtotal, tax_amount, shipping_amount,
	discount_amount, total_amount, coupon_code, shipping_address_id,
	billing_address_id, shipping_method, tracking_number, estimated_delivery,
	payment_method, payment_status, transaction_id, customer_notes, admin_notes,
	placed_at, confirmed_at, shipped_at, delivered_at, cancelled_at,
	created_at, updated_at
`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.Subtotal, &o.TaxAmount,
		&o.ShippingAmount, &o.DiscountAmount, &o.TotalAmount, &o.CouponCode,
		&o.ShippingAddressID, &o.BillingAddressID, &o.ShippingMethod,
		&o.TrackingNumber, &o.EstimatedDelivery, &o.PaymentMethod,
		&o.PaymentStatus, &o.TransactionID, &o.CustomerNotes, &o.AdminNotes,
		&o.PlacedAt, &o.ConfirmedAt, &o.ShippedAt, &o.DeliveredAt, &o.CancelledAt,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserts a new order within the provided transaction.
func (r *orderRepository) Create(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.OrderNumber, order.UserID, order.Status, order.Subtotal,
		order.TaxAmount, order.ShippingAmount, order.DiscountAmount,
		order.TotalAmount, order.CouponCode, order.ShippingAddressID,
		order.BillingAddressID, order.ShippingMethod, order.TrackingNumber,
		order.EstimatedDelivery, order.PaymentMethod, order.PaymentStatus,
		order.TransactionID, order.CustomerNotes, order.AdminNotes,
		order.PlacedAt, order.ConfirmedAt, order.ShippedAt, order.DeliveredAt,
		order.CancelledAt, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Msg("order created")

	return nil
}

// CreateItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (
			id, order_id, product_id, product_variant_id, product_name,
			product_sku, quantity, unit_price, total_price, material, weight,
			purity, variant_name, variant_value, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID, item.OrderID, item.ProductID, item.ProductVariantID,
			item.ProductName, item.ProductSKU, item.Quantity, item.UnitPrice,
			item.TotalPrice, item.Material, item.Weight, item.Purity,
			item.VariantName, item.VariantValue, item.CreatedAt,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID.String()).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created")

	return nil
}

// CreatePayment inserts a payment record within the provided transaction.
func (r *orderRepository) CreatePayment(ctx context.Context, tx pgx.Tx, payment *model.Payment) error {
	query := `
		INSERT INTO payments (
			id, user_id, order_id, amount, currency, payment_method,
			payment_status, transaction_id, initiated_at, processed_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := tx.Exec(ctx, query,
		payment.ID, payment.UserID, payment.OrderID, payment.Amount,
		payment.Currency, payment.PaymentMethod, payment.PaymentStatus,
		payment.TransactionID, payment.InitiatedAt, payment.ProcessedAt,
		payment.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", payment.OrderID.String()).
			Msg("failed to create payment")
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// GetByIDForUser retrieves an order owned by the given user along with its items.
func (r *orderRepository) GetByIDForUser(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, []model.OrderItem, error) {
	orderQuery := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND user_id = $2`

	order, err := scanOrder(r.pool.QueryRow(ctx, orderQuery, orderID, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", orderID.String()).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, product_id, product_variant_id, product_name,
		       product_sku, quantity, unit_price, total_price, material, weight,
		       purity, variant_name, variant_value, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, itemsQuery, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query order items")
		return nil, nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.ProductVariantID,
			&item.ProductName, &item.ProductSKU, &item.Quantity, &item.UnitPrice,
			&item.TotalPrice, &item.Material, &item.Weight, &item.Purity,
			&item.VariantName, &item.VariantValue, &item.CreatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return order, items, nil
}

// GetByNumber retrieves an order by its public order number, or nil.
func (r *orderRepository) GetByNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, orderNumber))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_number", orderNumber).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_number", orderNumber).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return order, nil
}

// ListByUser retrieves a user's orders, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// UpdateStatus persists an order's status, status timestamps and admin
// notes within the provided transaction.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		UPDATE orders
		SET status = $2, confirmed_at = $3, shipped_at = $4, delivered_at = $5,
		    cancelled_at = $6, admin_notes = $7, updated_at = NOW()
		WHERE id = $1
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.Status, order.ConfirmedAt, order.ShippedAt,
		order.DeliveredAt, order.CancelledAt, order.AdminNotes,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Str("status", string(order.Status)).
			Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("status", string(order.Status)).
		Msg("order status updated")

	return nil
}
