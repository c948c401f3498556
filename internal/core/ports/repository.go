package ports

import (
	"context"
	"time"

	"github.com/srgjo27/cinema_booking/internal/core/domain"
)

type ShowtimeRepository interface {
	GetShowtime(ctx context.Context, showtimeID string) (*domain.Showtime, error)
	// UpdateSeatStatuses applies all changes at once if the stored version still
	// equals expectedVersion, otherwise it returns domain.ErrVersionConflict.
	UpdateSeatStatuses(ctx context.Context, showtimeID string, expectedVersion int64, changes []domain.SeatChange) error
}

type BookingRepository interface {
	GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
	CreateBooking(ctx context.Context, booking *domain.Booking) error
	// UpdateBooking writes booking only if the stored status equals expected,
	// otherwise it returns domain.ErrStaleBooking.
	UpdateBooking(ctx context.Context, booking *domain.Booking, expected domain.BookingStatus) error
	ListBookingsByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	ListPendingBookings(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Booking, error)
	// ListSettledBookings returns confirmed and cancelled bookings updated at or
	// after updatedSince, most recently updated first.
	ListSettledBookings(ctx context.Context, updatedSince time.Time, limit int) ([]domain.Booking, error)
}

type PaymentRepository interface {
	// CreatePayment returns domain.ErrPaymentExists when the booking already has one.
	CreatePayment(ctx context.Context, payment *domain.Payment) error
	GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error)
	GetPaymentByBooking(ctx context.Context, bookingID string) (*domain.Payment, error)
	ListPaymentsByBookings(ctx context.Context, bookingIDs []string) ([]domain.Payment, error)
}

// Store is the persistence gateway consumed by the booking core.
type Store interface {
	ShowtimeRepository
	BookingRepository
	PaymentRepository
}
