package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeVariantNotFound    = "VARIANT_NOT_FOUND"
	ErrCodeCartNotFound       = "CART_NOT_FOUND"
	ErrCodeCartItemNotFound   = "CART_ITEM_NOT_FOUND"
	ErrCodeInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrCodeCouponNotFound     = "COUPON_NOT_FOUND"
	ErrCodeInvalidCoupon      = "INVALID_COUPON"
	ErrCodeMinOrderNotMet     = "MIN_ORDER_NOT_MET"
	ErrCodeUsageLimitExceeded = "USAGE_LIMIT_EXCEEDED"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeAddressNotFound    = "ADDRESS_NOT_FOUND"
	ErrCodeProductUnavailable = "PRODUCT_UNAVAILABLE"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeInvalidTransition  = "INVALID_TRANSITION"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError is a recoverable business-rule violation. Handlers map the
// code to an HTTP status; services return these unwrapped.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidQuantity    = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrProductNotFound    = NewDomainError(ErrCodeProductNotFound, "Product not found or unavailable")
	ErrVariantNotFound    = NewDomainError(ErrCodeVariantNotFound, "Product variant not found")
	ErrCartNotFound       = NewDomainError(ErrCodeCartNotFound, "Cart not found")
	ErrCartItemNotFound   = NewDomainError(ErrCodeCartItemNotFound, "Cart item not found")
	ErrInsufficientStock  = NewDomainError(ErrCodeInsufficientStock, "Insufficient stock")
	ErrCouponNotFound     = NewDomainError(ErrCodeCouponNotFound, "Invalid coupon code")
	ErrInvalidCoupon      = NewDomainError(ErrCodeInvalidCoupon, "Coupon is not valid")
	ErrUsageLimitExceeded = NewDomainError(ErrCodeUsageLimitExceeded, "You have already used this coupon")
	ErrEmptyCart          = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrAddressNotFound    = NewDomainError(ErrCodeAddressNotFound, "Address not found")
	ErrOrderNotFound      = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInvalidTransition  = NewDomainError(ErrCodeInvalidTransition, "Order status change not allowed")
)

// NewMinOrderNotMetError names the minimum subtotal the coupon requires.
func NewMinOrderNotMetError(minAmount string) *DomainError {
	return NewDomainError(ErrCodeMinOrderNotMet, "Minimum order amount of "+minAmount+" required")
}

// NewProductUnavailableError names the first product blocking checkout.
func NewProductUnavailableError(productName string) *DomainError {
	return NewDomainError(ErrCodeProductUnavailable, "Product "+productName+" is no longer available")
}
