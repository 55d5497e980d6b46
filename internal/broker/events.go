package broker

import (
	"time"

	"github.com/google/uuid"
)

// Event types emitted on the order stream.
const (
	EventTypeOrderCreated         = "order.created"
	EventTypeOrderCancelled       = "order.cancelled"
	EventTypeOrderReturnRequested = "order.return_requested"
)

// BaseEvent carries the fields common to every order event.
type BaseEvent struct {
	EventID   uuid.UUID `json:"eventId"`
	EventType string    `json:"eventType"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBaseEvent stamps a fresh event envelope.
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventID:   uuid.New(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
}

// OrderCreatedEvent is emitted after an order commits.
type OrderCreatedEvent struct {
	BaseEvent
	OrderID     uuid.UUID `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	UserID      uuid.UUID `json:"userId"`
	TotalAmount string    `json:"totalAmount"`
	ItemCount   int       `json:"itemCount"`
	CouponCode  *string   `json:"couponCode,omitempty"`
}

// OrderCancelledEvent is emitted after a cancellation commits, once stock
// has been restored.
type OrderCancelledEvent struct {
	BaseEvent
	OrderID     uuid.UUID `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	UserID      uuid.UUID `json:"userId"`
}

// OrderReturnRequestedEvent is emitted when a delivered order enters the
// returned state.
type OrderReturnRequestedEvent struct {
	BaseEvent
	OrderID     uuid.UUID `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	UserID      uuid.UUID `json:"userId"`
	Reason      string    `json:"reason"`
}
