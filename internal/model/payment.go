package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment statuses.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusSuccess  = "success"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Payment is one payment attempt against an order. A pending payment for
// the full order total is created inside the order transaction; gateway
// processing happens elsewhere.
type Payment struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	UserID        uuid.UUID       `json:"userId" db:"user_id"`
	OrderID       uuid.UUID       `json:"orderId" db:"order_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Currency      string          `json:"currency" db:"currency"`
	PaymentMethod string          `json:"paymentMethod" db:"payment_method"`
	PaymentStatus string          `json:"paymentStatus" db:"payment_status"`
	TransactionID *string         `json:"transactionId,omitempty" db:"transaction_id"`
	InitiatedAt   time.Time       `json:"initiatedAt" db:"initiated_at"`
	ProcessedAt   *time.Time      `json:"processedAt,omitempty" db:"processed_at"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
}
