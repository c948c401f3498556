package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

type Booking struct {
	ID              string
	UserID          string
	ShowtimeID      string
	SeatIDs         []string
	TotalAmount     decimal.Decimal
	Status          BookingStatus
	PaymentStatus   PaymentStatus
	PaymentIntentID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewBooking validates the seat selection and returns a pending booking.
// The seat ids are copied so the caller's slice cannot alter them later.
func NewBooking(id, userID string, showtime *Showtime, seatIDs []string, now time.Time) (*Booking, error) {
	if len(seatIDs) == 0 {
		return nil, ErrEmptySeatSelection
	}

	seen := make(map[string]struct{}, len(seatIDs))
	for _, seatID := range seatIDs {
		if seatID == "" {
			return nil, ErrInvalidInput
		}
		if _, dup := seen[seatID]; dup {
			return nil, ErrDuplicateSeat
		}
		seen[seatID] = struct{}{}
	}

	now = now.UTC()
	return &Booking{
		ID:            id,
		UserID:        userID,
		ShowtimeID:    showtime.ID,
		SeatIDs:       append([]string(nil), seatIDs...),
		TotalAmount:   showtime.TotalFor(len(seatIDs)),
		Status:        BookingPending,
		PaymentStatus: PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (b *Booking) OwnedBy(userID string) bool {
	return b.UserID == userID
}

func (b *Booking) IsTerminal() bool {
	return b.Status == BookingConfirmed || b.Status == BookingCancelled
}

// AmountMinor is the total in minor currency units, as payment processors expect.
func (b *Booking) AmountMinor() int64 {
	return b.TotalAmount.Shift(2).Round(0).IntPart()
}

// RequirePending rejects events that are only valid before the booking is settled.
func (b *Booking) RequirePending() error {
	if b.Status != BookingPending {
		return ErrInvalidTransition
	}
	return nil
}

// AttachPaymentIntent records a (re)requested intent. Re-requesting replaces the id.
func (b *Booking) AttachPaymentIntent(intentID string, now time.Time) error {
	if err := b.RequirePending(); err != nil {
		return err
	}
	b.PaymentIntentID = intentID
	b.UpdatedAt = now.UTC()
	return nil
}

// ConfirmPayment applies the outcome reported by the payment processor.
func (b *Booking) ConfirmPayment(intent IntentStatus, now time.Time) error {
	if err := b.RequirePending(); err != nil {
		return err
	}
	if b.PaymentIntentID == "" {
		return ErrNoPaymentIntent
	}
	if !intent.Succeeded() {
		return ErrPaymentNotSucceeded
	}
	b.Status = BookingConfirmed
	b.PaymentStatus = PaymentCompleted
	b.UpdatedAt = now.UTC()
	return nil
}

func (b *Booking) Cancel(now time.Time) error {
	switch b.Status {
	case BookingConfirmed:
		return ErrCannotCancelConfirmed
	case BookingCancelled:
		return ErrInvalidTransition
	}
	b.Status = BookingCancelled
	b.UpdatedAt = now.UTC()
	return nil
}

// Clone returns a deep copy, so a failed write never leaks a mutated booking.
func (b *Booking) Clone() *Booking {
	c := *b
	c.SeatIDs = append([]string(nil), b.SeatIDs...)
	return &c
}
