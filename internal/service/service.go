package service

import (
	"context"

	"gemkart/internal/model"

	"github.com/google/uuid"
)

// CartService defines operations for cart management. Every mutating
// operation recomputes and persists the cart's derived totals before
// returning.
type CartService interface {
	// GetCart retrieves the user's active cart, creating one if needed.
	GetCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error)

	// AddItem adds a product (optionally a variant) to the cart, merging
	// with an existing line for the same product and variant.
	AddItem(ctx context.Context, userID uuid.UUID, req *model.AddItemRequest) (*model.Cart, error)

	// UpdateItemQuantity changes a cart item's quantity.
	UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*model.Cart, error)

	// RemoveItem removes one item from the cart.
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*model.Cart, error)

	// Clear removes all items and the applied coupon from the cart.
	Clear(ctx context.Context, userID uuid.UUID) (*model.Cart, error)

	// Validate runs the checkout pre-flight over the cart's items.
	Validate(ctx context.Context, userID uuid.UUID) (*model.CartValidation, error)
}

// CouponService defines operations for applying coupons to the cart.
type CouponService interface {
	// Apply validates a coupon against the user's cart and stores the
	// priced discount on it.
	Apply(ctx context.Context, userID uuid.UUID, code string) (*model.Cart, error)

	// Remove clears the applied coupon from the cart.
	Remove(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
}

// OrderService defines operations for order management.
type OrderService interface {
	// Create turns the user's cart into an order atomically: order and
	// item snapshots, stock decrements, coupon usage, cart clearing and
	// the pending payment commit or roll back as one unit.
	Create(ctx context.Context, userID uuid.UUID, req *model.CreateOrderRequest) (*model.Order, error)

	// GetByID retrieves an order owned by the user, with its items.
	GetByID(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error)

	// ListByUser retrieves the user's orders, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error)

	// Cancel cancels an order and restores stock for tracked products.
	Cancel(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error)

	// RequestReturn moves a delivered order to returned. Stock is not
	// restored; returned goods re-enter inventory through inspection.
	RequestReturn(ctx context.Context, userID, orderID uuid.UUID, reason string) (*model.Order, error)

	// Track returns the public tracking view for an order number.
	Track(ctx context.Context, orderNumber string) (*model.TrackingInfo, error)
}
