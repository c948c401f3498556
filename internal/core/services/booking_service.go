package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/srgjo27/cinema_booking/internal/core/domain"
	"github.com/srgjo27/cinema_booking/internal/core/ports"
	"github.com/srgjo27/cinema_booking/internal/platform/logger"
	"github.com/srgjo27/cinema_booking/internal/platform/metrics"
)

type CreateBookingRequest struct {
	UserID     string   `json:"-"`
	ShowtimeID string   `json:"showtime_id"`
	SeatIDs    []string `json:"seat_ids"`
}

type PaymentIntentResponse struct {
	ClientSecret string
	Amount       decimal.Decimal
}

type BookingConfig struct {
	Currency string
	// HoldTTL bounds how long a pending booking may hold seats. Zero disables expiry.
	HoldTTL       time.Duration
	SweepInterval time.Duration
	SweepBatch    int
	// FinishTimeout bounds the writes that follow a durable booking update.
	// They run detached from the caller's context.
	FinishTimeout time.Duration
	// ReconcileWindow is how far back the reconciler looks for settled
	// bookings. Zero disables the background reconciler.
	ReconcileWindow   time.Duration
	ReconcileInterval time.Duration
}

type BookingService struct {
	store     ports.Store
	inventory *SeatInventory
	payments  ports.PaymentGateway
	events    ports.EventPublisher
	cfg       BookingConfig
	now       func() time.Time
}

func NewBookingService(store ports.Store, inventory *SeatInventory, payments ports.PaymentGateway, events ports.EventPublisher, cfg BookingConfig) *BookingService {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.SweepBatch <= 0 {
		cfg.SweepBatch = 100
	}
	if cfg.FinishTimeout <= 0 {
		cfg.FinishTimeout = 10 * time.Second
	}
	if cfg.ReconcileInterval <= 0 {
		cfg.ReconcileInterval = time.Minute
	}

	return &BookingService{
		store:     store,
		inventory: inventory,
		payments:  payments,
		events:    events,
		cfg:       cfg,
		now:       time.Now,
	}
}

// WithClock replaces the time source; used by tests and the hold sweeper.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	if req.UserID == "" || req.ShowtimeID == "" {
		return nil, fmt.Errorf("create booking: %w", domain.ErrInvalidInput)
	}

	if len(req.SeatIDs) == 0 {
		return nil, domain.ErrEmptySeatSelection
	}

	showtime, err := s.store.GetShowtime(ctx, req.ShowtimeID)
	if err != nil {
		return nil, err
	}

	booking, err := domain.NewBooking(uuid.NewString(), req.UserID, showtime, req.SeatIDs, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.inventory.Reserve(ctx, showtime.ID, booking.ID, booking.SeatIDs); err != nil {
		metrics.Transitions.WithLabelValues("create", outcome(err)).Inc()
		return nil, err
	}

	if err := s.store.CreateBooking(ctx, booking); err != nil {
		s.rollbackHold(ctx, booking)
		metrics.Transitions.WithLabelValues("create", outcome(err)).Inc()
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	metrics.Transitions.WithLabelValues("create", "ok").Inc()
	logger.WithContext(ctx).Info("Booking created",
		"booking_id", booking.ID,
		"showtime_id", booking.ShowtimeID,
		"seats", len(booking.SeatIDs),
		"total_amount", booking.TotalAmount.StringFixed(2))

	s.publish(ctx, domain.EventBookingCreated, booking)

	return booking, nil
}

func (s *BookingService) rollbackHold(ctx context.Context, booking *domain.Booking) {
	ctx, cancel := s.detach(ctx)
	defer cancel()

	if err := s.inventory.ReleaseHeld(ctx, booking.ShowtimeID, booking.ID, booking.SeatIDs); err != nil {
		logger.WithContext(ctx).Error("Failed to roll back seat hold",
			"error", err,
			"booking_id", booking.ID,
			"showtime_id", booking.ShowtimeID)
	}
}

func (s *BookingService) RequestPaymentIntent(ctx context.Context, userID, bookingID string) (*PaymentIntentResponse, error) {
	booking, err := s.loadOwned(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	if err := booking.RequirePending(); err != nil {
		return nil, err
	}

	ref, err := s.payments.CreateIntent(ctx, booking.AmountMinor(), s.cfg.Currency, map[string]string{
		"booking_id": booking.ID,
		"user_id":    booking.UserID,
	})
	if err != nil {
		metrics.Transitions.WithLabelValues("payment_intent", outcome(err)).Inc()
		return nil, err
	}

	updated := booking.Clone()
	if err := updated.AttachPaymentIntent(ref.ID, s.now()); err != nil {
		return nil, err
	}

	if err := s.store.UpdateBooking(ctx, updated, domain.BookingPending); err != nil {
		if errors.Is(err, domain.ErrStaleBooking) {
			return nil, domain.ErrInvalidTransition
		}
		return nil, fmt.Errorf("failed to save payment intent: %w", err)
	}

	metrics.Transitions.WithLabelValues("payment_intent", "ok").Inc()
	logger.WithContext(ctx).Info("Payment intent attached",
		"booking_id", booking.ID,
		"payment_intent_id", ref.ID)

	return &PaymentIntentResponse{
		ClientSecret: ref.ClientSecret,
		Amount:       booking.TotalAmount,
	}, nil
}

// ConfirmPayment settles a pending booking once the processor reports success.
// The booking is durably confirmed first, then seats are booked and the payment
// recorded; a failure after the first write is repaired by reconcile.
func (s *BookingService) ConfirmPayment(ctx context.Context, userID, bookingID string) (*domain.Booking, error) {
	booking, err := s.loadOwned(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	return s.confirm(ctx, booking, true)
}

func (s *BookingService) confirm(ctx context.Context, booking *domain.Booking, retryStale bool) (*domain.Booking, error) {
	switch booking.Status {
	case domain.BookingConfirmed:
		if err := s.reconcile(ctx, booking); err != nil {
			return nil, err
		}
		return booking, nil
	case domain.BookingCancelled:
		return nil, domain.ErrInvalidTransition
	}

	if booking.PaymentIntentID == "" {
		return nil, domain.ErrNoPaymentIntent
	}

	intent, err := s.payments.RetrieveIntent(ctx, booking.PaymentIntentID)
	if err != nil {
		metrics.Transitions.WithLabelValues("confirm", outcome(err)).Inc()
		return nil, err
	}

	updated := booking.Clone()
	if err := updated.ConfirmPayment(intent, s.now()); err != nil {
		metrics.Transitions.WithLabelValues("confirm", outcome(err)).Inc()
		logger.WithContext(ctx).Info("Payment not confirmed",
			"booking_id", booking.ID,
			"payment_intent_id", booking.PaymentIntentID,
			"intent_status", intent.Status)
		return nil, err
	}

	if err := s.store.UpdateBooking(ctx, updated, domain.BookingPending); err != nil {
		if errors.Is(err, domain.ErrStaleBooking) && retryStale {
			fresh, err := s.store.GetBooking(ctx, booking.ID)
			if err != nil {
				return nil, err
			}
			return s.confirm(ctx, fresh, false)
		}
		if errors.Is(err, domain.ErrStaleBooking) {
			return nil, domain.ErrInvalidTransition
		}
		return nil, fmt.Errorf("failed to confirm booking: %w", err)
	}

	ctx, cancel := s.detach(ctx)
	defer cancel()

	if err := s.inventory.Commit(ctx, updated.ShowtimeID, updated.ID, updated.SeatIDs); err != nil {
		logger.WithContext(ctx).Error("Booking confirmed but seats not committed",
			"error", err,
			"booking_id", updated.ID,
			"showtime_id", updated.ShowtimeID)
		return nil, fmt.Errorf("failed to book seats: %w", err)
	}

	if err := s.recordPayment(ctx, updated, intent); err != nil {
		return nil, err
	}

	metrics.Transitions.WithLabelValues("confirm", "ok").Inc()
	logger.WithContext(ctx).Info("Booking confirmed",
		"booking_id", updated.ID,
		"payment_intent_id", updated.PaymentIntentID)

	s.publish(ctx, domain.EventBookingConfirmed, updated)

	return updated, nil
}

func (s *BookingService) recordPayment(ctx context.Context, booking *domain.Booking, intent domain.IntentStatus) error {
	payment := domain.NewPayment(uuid.NewString(), booking, intent, s.cfg.Currency, s.now())

	err := s.store.CreatePayment(ctx, payment)
	if err != nil && !errors.Is(err, domain.ErrPaymentExists) {
		logger.WithContext(ctx).Error("Booking confirmed but payment not recorded",
			"error", err,
			"booking_id", booking.ID)
		return fmt.Errorf("failed to record payment: %w", err)
	}

	return nil
}

func (s *BookingService) CancelBooking(ctx context.Context, userID, bookingID string) (*domain.Booking, error) {
	booking, err := s.loadOwned(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	return s.cancel(ctx, booking, true)
}

func (s *BookingService) cancel(ctx context.Context, booking *domain.Booking, retryStale bool) (*domain.Booking, error) {
	updated := booking.Clone()
	if err := updated.Cancel(s.now()); err != nil {
		metrics.Transitions.WithLabelValues("cancel", outcome(err)).Inc()
		return nil, err
	}

	if err := s.store.UpdateBooking(ctx, updated, domain.BookingPending); err != nil {
		if errors.Is(err, domain.ErrStaleBooking) && retryStale {
			fresh, err := s.store.GetBooking(ctx, booking.ID)
			if err != nil {
				return nil, err
			}
			return s.cancel(ctx, fresh, false)
		}
		if errors.Is(err, domain.ErrStaleBooking) {
			return nil, domain.ErrInvalidTransition
		}
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	ctx, cancel := s.detach(ctx)
	defer cancel()

	// Only seats still held by this booking are released; a concurrent
	// reconcile may already have freed them for another booking.
	if err := s.inventory.ReleaseHeld(ctx, updated.ShowtimeID, updated.ID, updated.SeatIDs); err != nil {
		logger.WithContext(ctx).Error("Booking cancelled but seats not released",
			"error", err,
			"booking_id", updated.ID,
			"showtime_id", updated.ShowtimeID)
		return nil, fmt.Errorf("failed to release seats: %w", err)
	}

	metrics.Transitions.WithLabelValues("cancel", "ok").Inc()
	logger.WithContext(ctx).Info("Booking cancelled", "booking_id", updated.ID)

	s.publish(ctx, domain.EventBookingCancelled, updated)

	return updated, nil
}

// GetBooking returns the caller's booking after repairing any write that a
// crash left half-applied.
func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID string) (*domain.Booking, error) {
	booking, err := s.loadOwned(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.reconcile(ctx, booking); err != nil {
		logger.WithContext(ctx).Warn("Reconciliation failed on read",
			"error", err,
			"booking_id", booking.ID)
	}

	return booking, nil
}

func (s *BookingService) ListBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}

	bookings, err := s.store.ListBookingsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}

	for i := range bookings {
		if err := s.reconcile(ctx, &bookings[i]); err != nil {
			logger.WithContext(ctx).Warn("Reconciliation failed on list",
				"error", err,
				"booking_id", bookings[i].ID)
		}
	}

	return bookings, nil
}

func (s *BookingService) GetPayment(ctx context.Context, userID, paymentID string) (*domain.Payment, error) {
	payment, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if _, err := s.loadOwned(ctx, userID, payment.BookingID); err != nil {
		return nil, err
	}

	return payment, nil
}

func (s *BookingService) ListPayments(ctx context.Context, userID string) ([]domain.Payment, error) {
	bookings, err := s.ListBookings(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(bookings) == 0 {
		return []domain.Payment{}, nil
	}

	ids := make([]string, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
	}

	payments, err := s.store.ListPaymentsByBookings(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}

	return payments, nil
}

func (s *BookingService) SeatMap(ctx context.Context, showtimeID string) (*domain.Showtime, error) {
	return s.inventory.Seats(ctx, showtimeID)
}

// detach returns a context that survives the caller going away, for writes
// that must follow an already durable booking update.
func (s *BookingService) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.cfg.FinishTimeout)
}

func (s *BookingService) loadOwned(ctx context.Context, userID, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, domain.ErrBookingNotFound
	}

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !booking.OwnedBy(userID) {
		return nil, domain.ErrForbidden
	}

	return booking, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.events == nil {
		return
	}

	if err := s.events.Publish(ctx, domain.NewEvent(eventType, booking, s.now())); err != nil {
		logger.WithContext(ctx).Error("Failed to publish booking event",
			"error", err,
			"booking_id", booking.ID,
			"event_type", eventType)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case domain.IsRetryable(err):
		return "infra_error"
	default:
		return "rejected"
	}
}
