package model

import "github.com/google/uuid"

// AddItemRequest is the payload for adding an item to the cart.
type AddItemRequest struct {
	ProductID            uuid.UUID  `json:"productId"`
	ProductVariantID     *uuid.UUID `json:"productVariantId,omitempty"`
	Quantity             int        `json:"quantity"`
	SelectedVariantName  *string    `json:"selectedVariantName,omitempty"`
	SelectedVariantValue *string    `json:"selectedVariantValue,omitempty"`
}

// UpdateItemRequest is the payload for changing a cart item's quantity.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// ApplyCouponRequest is the payload for applying a coupon to the cart.
type ApplyCouponRequest struct {
	CouponCode string `json:"couponCode"`
}

// CreateOrderRequest is the payload for turning the cart into an order.
type CreateOrderRequest struct {
	ShippingAddressID uuid.UUID  `json:"shippingAddressId"`
	BillingAddressID  *uuid.UUID `json:"billingAddressId,omitempty"`
	PaymentMethod     string     `json:"paymentMethod"`
	ShippingMethod    *string    `json:"shippingMethod,omitempty"`
	CustomerNotes     *string    `json:"customerNotes,omitempty"`
}

// ReturnRequest is the payload for requesting an order return.
type ReturnRequest struct {
	Reason string `json:"reason"`
}
