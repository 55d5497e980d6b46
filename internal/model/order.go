package model

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPlaced         OrderStatus = "placed"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusProcessing     OrderStatus = "processing"
	StatusPacked         OrderStatus = "packed"
	StatusShipped        OrderStatus = "shipped"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
	StatusReturned       OrderStatus = "returned"
	StatusRefunded       OrderStatus = "refunded"
)

// statusTransitions is the full state machine. A status maps to the set
// of statuses reachable from it in one step.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPlaced:         {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusProcessing, StatusCancelled},
	StatusProcessing:     {StatusPacked},
	StatusPacked:         {StatusShipped},
	StatusShipped:        {StatusOutForDelivery},
	StatusOutForDelivery: {StatusDelivered},
	StatusDelivered:      {StatusReturned},
	StatusCancelled:      {StatusRefunded},
	StatusReturned:       {StatusRefunded},
	StatusRefunded:       {},
}

// CanTransition reports whether moving from s to next is a legal step.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Display returns the human-readable form of the status.
func (s OrderStatus) Display() string {
	switch s {
	case StatusPlaced:
		return "Order Placed"
	case StatusConfirmed:
		return "Order Confirmed"
	case StatusProcessing:
		return "Processing"
	case StatusPacked:
		return "Packed"
	case StatusShipped:
		return "Shipped"
	case StatusOutForDelivery:
		return "Out for Delivery"
	case StatusDelivered:
		return "Delivered"
	case StatusCancelled:
		return "Cancelled"
	case StatusReturned:
		return "Returned"
	case StatusRefunded:
		return "Refunded"
	}
	return string(s)
}

// Order is an immutable record of a purchase. Financial fields are copied
// from the cart at creation and never recomputed; only status and
// logistics fields change afterwards.
type Order struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	OrderNumber       string          `json:"orderNumber" db:"order_number"`
	UserID            uuid.UUID       `json:"userId" db:"user_id"`
	Status            OrderStatus     `json:"status" db:"status"`
	Subtotal          decimal.Decimal `json:"subtotal" db:"subtotal"`
	TaxAmount         decimal.Decimal `json:"taxAmount" db:"tax_amount"`
	ShippingAmount    decimal.Decimal `json:"shippingAmount" db:"shipping_amount"`
	DiscountAmount    decimal.Decimal `json:"discountAmount" db:"discount_amount"`
	TotalAmount       decimal.Decimal `json:"totalAmount" db:"total_amount"`
	CouponCode        *string         `json:"couponCode,omitempty" db:"coupon_code"`
	ShippingAddressID *uuid.UUID      `json:"shippingAddressId,omitempty" db:"shipping_address_id"`
	BillingAddressID  *uuid.UUID      `json:"billingAddressId,omitempty" db:"billing_address_id"`
	ShippingMethod    *string         `json:"shippingMethod,omitempty" db:"shipping_method"`
	TrackingNumber    *string         `json:"trackingNumber,omitempty" db:"tracking_number"`
	EstimatedDelivery *time.Time      `json:"estimatedDelivery,omitempty" db:"estimated_delivery"`
	PaymentMethod     *string         `json:"paymentMethod,omitempty" db:"payment_method"`
	PaymentStatus     string          `json:"paymentStatus" db:"payment_status"`
	TransactionID     *string         `json:"transactionId,omitempty" db:"transaction_id"`
	CustomerNotes     *string         `json:"customerNotes,omitempty" db:"customer_notes"`
	AdminNotes        *string         `json:"adminNotes,omitempty" db:"admin_notes"`
	PlacedAt          time.Time       `json:"placedAt" db:"placed_at"`
	ConfirmedAt       *time.Time      `json:"confirmedAt,omitempty" db:"confirmed_at"`
	ShippedAt         *time.Time      `json:"shippedAt,omitempty" db:"shipped_at"`
	DeliveredAt       *time.Time      `json:"deliveredAt,omitempty" db:"delivered_at"`
	CancelledAt       *time.Time      `json:"cancelledAt,omitempty" db:"cancelled_at"`
	CreatedAt         time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time       `json:"updatedAt" db:"updated_at"`

	Items []OrderItem `json:"items,omitempty" db:"-"`
}

// CanCancel reports whether the order may still be cancelled by the
// customer.
func (o *Order) CanCancel() bool {
	return o.Status.CanTransition(StatusCancelled)
}

// CanReturn reports whether a return may be requested.
func (o *Order) CanReturn() bool {
	return o.Status.CanTransition(StatusReturned)
}

// OrderItem snapshots a cart line at order creation. Descriptive and
// financial fields are copied by value so later product edits do not
// alter historical orders; write-once.
type OrderItem struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	OrderID          uuid.UUID        `json:"orderId" db:"order_id"`
	ProductID        uuid.UUID        `json:"productId" db:"product_id"`
	ProductVariantID *uuid.UUID       `json:"productVariantId,omitempty" db:"product_variant_id"`
	ProductName      string           `json:"productName" db:"product_name"`
	ProductSKU       *string          `json:"productSku,omitempty" db:"product_sku"`
	Quantity         int              `json:"quantity" db:"quantity"`
	UnitPrice        decimal.Decimal  `json:"unitPrice" db:"unit_price"`
	TotalPrice       decimal.Decimal  `json:"totalPrice" db:"total_price"`
	Material         *string          `json:"material,omitempty" db:"material"`
	Weight           *decimal.Decimal `json:"weight,omitempty" db:"weight"`
	Purity           *string          `json:"purity,omitempty" db:"purity"`
	VariantName      *string          `json:"variantName,omitempty" db:"variant_name"`
	VariantValue     *string          `json:"variantValue,omitempty" db:"variant_value"`
	CreatedAt        time.Time        `json:"createdAt" db:"created_at"`
}

const orderNumberSuffixChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewOrderNumber generates a globally unique order number, sortable by
// creation time: "GK" + UTC timestamp + 4 random characters.
func NewOrderNumber() string {
	timestamp := time.Now().UTC().Format("20060102150405")
	suffix := make([]byte, 4)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(orderNumberSuffixChars))))
		if err != nil {
			// crypto/rand failing means the platform is broken;
			// fall back to a fixed character rather than panic.
			suffix[i] = 'X'
			continue
		}
		suffix[i] = orderNumberSuffixChars[n.Int64()]
	}
	return "GK" + timestamp + string(suffix)
}

// TrackingInfo is the limited view of an order exposed on the public
// tracking endpoint.
type TrackingInfo struct {
	OrderNumber       string     `json:"orderNumber"`
	Status            string     `json:"status"`
	StatusDisplay     string     `json:"statusDisplay"`
	TrackingNumber    *string    `json:"trackingNumber,omitempty"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
	ShippedAt         *time.Time `json:"shippedAt,omitempty"`
	DeliveredAt       *time.Time `json:"deliveredAt,omitempty"`
}
