package repository

import (
	"context"

	"gemkart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for catalogue data access.
// Lookups return nil (no error) when the row is absent.
type ProductRepository interface {
	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetVariantByID retrieves a product variant by its ID.
	GetVariantByID(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error)

	// DecrementStock atomically reduces stock for a product, or for a
	// variant when variantID is set, within the provided transaction.
	// The update is conditional: it only applies when the remaining
	// stock covers qty or the product allows backorder, and returns
	// model.ErrInsufficientStock otherwise.
	DecrementStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, variantID *uuid.UUID, qty int) error

	// IncrementStock restores stock for a product or variant within the
	// provided transaction.
	IncrementStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, variantID *uuid.UUID, qty int) error
}

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	// GetActiveByUser retrieves the user's active cart, or nil.
	GetActiveByUser(ctx context.Context, userID uuid.UUID) (*model.Cart, error)

	// Create inserts a new cart.
	Create(ctx context.Context, cart *model.Cart) error

	// ListItems retrieves all items of a cart.
	ListItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error)

	// GetItemForUser retrieves a cart item, scoped to carts owned by the
	// given user, or nil.
	GetItemForUser(ctx context.Context, itemID, userID uuid.UUID) (*model.CartItem, error)

	// FindItem retrieves the item for a (product, variant) pair in a
	// cart, or nil. variantID nil matches rows without a variant.
	FindItem(ctx context.Context, cartID, productID uuid.UUID, variantID *uuid.UUID) (*model.CartItem, error)

	// CreateItem inserts a new cart item.
	CreateItem(ctx context.Context, item *model.CartItem) error

	// UpdateItem persists an item's quantity and total price.
	UpdateItem(ctx context.Context, item *model.CartItem) error

	// DeleteItem removes one item.
	DeleteItem(ctx context.Context, itemID uuid.UUID) error

	// DeleteItems removes all items of a cart.
	DeleteItems(ctx context.Context, cartID uuid.UUID) error

	// SaveTotals persists the cart's coupon fields and the five derived
	// totals.
	SaveTotals(ctx context.Context, cart *model.Cart) error

	// ClearTx empties the cart within the provided transaction: deletes
	// all items and persists the cart's reset coupon and totals fields.
	ClearTx(ctx context.Context, tx pgx.Tx, cart *model.Cart) error
}

// CouponRepository defines the interface for coupon data access.
type CouponRepository interface {
	// GetByCode retrieves a coupon by its upper-cased code, or nil.
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)

	// CountUsageByUser counts how many times a user has used a coupon.
	CountUsageByUser(ctx context.Context, couponID, userID uuid.UUID) (int, error)

	// RecordUsage inserts a usage row within the provided transaction.
	RecordUsage(ctx context.Context, tx pgx.Tx, usage *model.CouponUsage) error

	// IncrementUses bumps the coupon's global usage counter within the
	// provided transaction.
	IncrementUses(ctx context.Context, tx pgx.Tx, couponID uuid.UUID) error
}

// AddressRepository defines the interface for address ownership checks.
type AddressRepository interface {
	// GetByIDForUser retrieves an address owned by the given user, or nil.
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.Address, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a new order within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateItems inserts multiple order items within the provided transaction.
	CreateItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// CreatePayment inserts a payment record within the provided transaction.
	CreatePayment(ctx context.Context, tx pgx.Tx, payment *model.Payment) error

	// GetByIDForUser retrieves an order owned by the given user along
	// with its items. Returns nil order when absent.
	GetByIDForUser(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, []model.OrderItem, error)

	// GetByNumber retrieves an order by its public order number, or nil.
	GetByNumber(ctx context.Context, orderNumber string) (*model.Order, error)

	// ListByUser retrieves a user's orders, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error)

	// UpdateStatus persists an order's status, status timestamps and
	// admin notes within the provided transaction.
	UpdateStatus(ctx context.Context, tx pgx.Tx, order *model.Order) error
}
