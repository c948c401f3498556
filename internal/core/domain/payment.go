package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const IntentSucceeded = "succeeded"

type IntentRef struct {
	ID           string
	ClientSecret string
}

type IntentStatus struct {
	ID            string
	Status        string
	PaymentMethod string
}

func (s IntentStatus) Succeeded() bool {
	return s.Status == IntentSucceeded
}

// Payment is written once, when a booking is confirmed, and never updated.
type Payment struct {
	ID              string
	BookingID       string
	PaymentIntentID string
	Amount          decimal.Decimal
	Currency        string
	PaymentStatus   PaymentStatus
	PaymentMethod   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewPayment(id string, booking *Booking, intent IntentStatus, currency string, now time.Time) *Payment {
	now = now.UTC()
	return &Payment{
		ID:              id,
		BookingID:       booking.ID,
		PaymentIntentID: booking.PaymentIntentID,
		Amount:          booking.TotalAmount,
		Currency:        currency,
		PaymentStatus:   PaymentCompleted,
		PaymentMethod:   intent.PaymentMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
