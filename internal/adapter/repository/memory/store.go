// Package memory is a process-local persistence gateway used by tests and
// single-instance development runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/srgjo27/cinema_booking/internal/core/domain"
)

type Store struct {
	mu        sync.RWMutex
	showtimes map[string]*domain.Showtime
	bookings  map[string]*domain.Booking
	payments  map[string]*domain.Payment
	// paymentByBooking enforces one payment per booking.
	paymentByBooking map[string]string
}

func NewStore() *Store {
	return &Store{
		showtimes:        make(map[string]*domain.Showtime),
		bookings:         make(map[string]*domain.Booking),
		payments:         make(map[string]*domain.Payment),
		paymentByBooking: make(map[string]string),
	}
}

// SaveShowtime inserts or replaces a showtime with its seats.
func (s *Store) SaveShowtime(ctx context.Context, st *domain.Showtime) error {
	if err := ctx.Err(); err != nil {
		return &domain.StoreError{Op: "save showtime", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.showtimes[st.ID] = cloneShowtime(st)

	return nil
}

func (s *Store) GetShowtime(ctx context.Context, showtimeID string) (*domain.Showtime, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StoreError{Op: "get showtime", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.showtimes[showtimeID]
	if !ok {
		return nil, domain.ErrShowtimeNotFound
	}

	return cloneShowtime(st), nil
}

func (s *Store) UpdateSeatStatuses(ctx context.Context, showtimeID string, expectedVersion int64, changes []domain.SeatChange) error {
	if err := ctx.Err(); err != nil {
		return &domain.StoreError{Op: "update seats", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.showtimes[showtimeID]
	if !ok {
		return domain.ErrShowtimeNotFound
	}

	if st.Version != expectedVersion {
		return domain.ErrVersionConflict
	}

	st.Apply(changes)
	st.Version++

	return nil
}

func (s *Store) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StoreError{Op: "get booking", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}

	return b.Clone(), nil
}

func (s *Store) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	if err := ctx.Err(); err != nil {
		return &domain.StoreError{Op: "create booking", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookings[booking.ID] = booking.Clone()

	return nil
}

func (s *Store) UpdateBooking(ctx context.Context, booking *domain.Booking, expected domain.BookingStatus) error {
	if err := ctx.Err(); err != nil {
		return &domain.StoreError{Op: "update booking", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.bookings[booking.ID]
	if !ok {
		return domain.ErrBookingNotFound
	}

	if current.Status != expected {
		return domain.ErrStaleBooking
	}

	s.bookings[booking.ID] = booking.Clone()

	return nil
}

func (s *Store) ListBookingsByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.listBookings(ctx, func(b *domain.Booking) bool {
		return b.UserID == userID
	}, true, 0)
}

func (s *Store) ListPendingBookings(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Booking, error) {
	return s.listBookings(ctx, func(b *domain.Booking) bool {
		return b.Status == domain.BookingPending && b.CreatedAt.Before(createdBefore)
	}, false, limit)
}

func (s *Store) ListSettledBookings(ctx context.Context, updatedSince time.Time, limit int) ([]domain.Booking, error) {
	bookings, err := s.listBookings(ctx, func(b *domain.Booking) bool {
		return b.IsTerminal() && !b.UpdatedAt.Before(updatedSince)
	}, true, 0)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].UpdatedAt.After(bookings[j].UpdatedAt)
	})

	if limit > 0 && len(bookings) > limit {
		bookings = bookings[:limit]
	}

	return bookings, nil
}

func (s *Store) listBookings(ctx context.Context, match func(*domain.Booking) bool, newestFirst bool, limit int) ([]domain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StoreError{Op: "list bookings", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings := []domain.Booking{}
	for _, b := range s.bookings {
		if match(b) {
			bookings = append(bookings, *b.Clone())
		}
	}

	sort.Slice(bookings, func(i, j int) bool {
		if newestFirst {
			return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
		}
		return bookings[i].CreatedAt.Before(bookings[j].CreatedAt)
	})

	if limit > 0 && len(bookings) > limit {
		bookings = bookings[:limit]
	}

	return bookings, nil
}

func (s *Store) CreatePayment(ctx context.Context, payment *domain.Payment) error {
	if err := ctx.Err(); err != nil {
		return &domain.StoreError{Op: "create payment", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.paymentByBooking[payment.BookingID]; exists {
		return domain.ErrPaymentExists
	}

	p := *payment
	s.payments[p.ID] = &p
	s.paymentByBooking[p.BookingID] = p.ID

	return nil
}

func (s *Store) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StoreError{Op: "get payment", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.payments[paymentID]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}

	out := *p
	return &out, nil
}

func (s *Store) GetPaymentByBooking(ctx context.Context, bookingID string) (*domain.Payment, error) {
	s.mu.RLock()
	id, ok := s.paymentByBooking[bookingID]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrPaymentNotFound
	}

	return s.GetPayment(ctx, id)
}

func (s *Store) ListPaymentsByBookings(ctx context.Context, bookingIDs []string) ([]domain.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StoreError{Op: "list payments", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	payments := []domain.Payment{}
	for _, bookingID := range bookingIDs {
		if id, ok := s.paymentByBooking[bookingID]; ok {
			payments = append(payments, *s.payments[id])
		}
	}

	sort.Slice(payments, func(i, j int) bool {
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})

	return payments, nil
}

func cloneShowtime(st *domain.Showtime) *domain.Showtime {
	out := *st
	out.Seats = append([]domain.Seat(nil), st.Seats...)
	return &out
}
