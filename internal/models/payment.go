package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment status values. A payment starts pending and moves to exactly one
// terminal state; it never moves backward.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Payment method values
const (
	PaymentMethodRazorpay   = "razorpay"
	PaymentMethodCash       = "cash"
	PaymentMethodUPI        = "upi"
	PaymentMethodCreditCard = "credit_card"
	PaymentMethodDebitCard  = "debit_card"
)

// Payment represents one rent payment intent for a resident. Amount is fixed
// at creation from the listing's pricing tier for the resident's room sharing.
type Payment struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ListingID      uuid.UUID `db:"listing_id" json:"listing_id"`
	ResidentID     uuid.UUID `db:"resident_id" json:"resident_id"`
	Amount         int       `db:"amount" json:"amount"`
	Method         string    `db:"method" json:"method"`
	Status         string    `db:"status" json:"status"`
	GatewayOrderID string    `db:"gateway_order_id" json:"gateway_order_id"`
	PaymentDate    time.Time `db:"payment_date" json:"payment_date"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// PaymentWithResident is a payment row joined with resident display fields
// for host-facing dashboards.
type PaymentWithResident struct {
	Payment
	ResidentName  string `db:"resident_name" json:"resident_name"`
	ResidentEmail string `db:"resident_email" json:"resident_email"`
}
