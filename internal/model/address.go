package model

import (
	"time"

	"github.com/google/uuid"
)

// Address is a user shipping/billing address. The order pipeline only
// verifies ownership; address CRUD lives outside this service.
type Address struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"userId" db:"user_id"`
	Name       string    `json:"name" db:"name"`
	Phone      *string   `json:"phone,omitempty" db:"phone"`
	Line1      string    `json:"line1" db:"line1"`
	Line2      *string   `json:"line2,omitempty" db:"line2"`
	City       string    `json:"city" db:"city"`
	State      string    `json:"state" db:"state"`
	PostalCode string    `json:"postalCode" db:"postal_code"`
	Country    string    `json:"country" db:"country"`
	IsDefault  bool      `json:"isDefault" db:"is_default"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
