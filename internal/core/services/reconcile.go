package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/srgjo27/cinema_booking/internal/core/domain"
	"github.com/srgjo27/cinema_booking/internal/platform/logger"
)

// RunReconciler periodically repairs bookings settled within ReconcileWindow,
// so a write interrupted by a crash does not wait for the booking to be read.
// It returns immediately when no window is configured.
func (s *BookingService) RunReconciler(ctx context.Context) {
	log := logger.WithFields("job", "reconciler")

	if s.cfg.ReconcileWindow <= 0 {
		log.Info("Reconciler disabled: RECONCILE_WINDOW not set")
		return
	}

	ticker := time.NewTicker(s.cfg.ReconcileInterval)
	defer ticker.Stop()

	log.Info("Reconciler started",
		"interval", s.cfg.ReconcileInterval.String(),
		"window", s.cfg.ReconcileWindow.String())

	for {
		select {
		case <-ctx.Done():
			log.Info("Reconciler stopped")
			return
		case <-ticker.C:
			if _, err := s.ReconcileRecentBookings(ctx); err != nil {
				log.Error("Failed to reconcile bookings", "error", err)
			}
		}
	}
}

// ReconcileRecentBookings runs reconciliation over one batch of bookings
// settled within ReconcileWindow and returns how many it checked.
func (s *BookingService) ReconcileRecentBookings(ctx context.Context) (int, error) {
	if s.cfg.ReconcileWindow <= 0 {
		return 0, nil
	}

	since := s.now().Add(-s.cfg.ReconcileWindow)

	bookings, err := s.store.ListSettledBookings(ctx, since, s.cfg.SweepBatch)
	if err != nil {
		return 0, err
	}

	log := logger.WithFields("job", "reconciler")
	for i := range bookings {
		if err := s.reconcile(ctx, &bookings[i]); err != nil {
			log.Error("Failed to reconcile booking", "error", err, "booking_id", bookings[i].ID)
		}
	}

	return len(bookings), nil
}

// reconcile brings seats and the payment record in line with a settled
// booking. The booking record is authoritative: a confirmed booking gets its
// still-selected seats booked and its missing payment written, a cancelled
// booking gets its still-held seats released.
func (s *BookingService) reconcile(ctx context.Context, booking *domain.Booking) error {
	if !booking.IsTerminal() {
		return nil
	}

	switch booking.Status {
	case domain.BookingConfirmed:
		return s.reconcileConfirmed(ctx, booking)
	case domain.BookingCancelled:
		return s.reconcileCancelled(ctx, booking)
	}
	return nil
}

func (s *BookingService) reconcileConfirmed(ctx context.Context, booking *domain.Booking) error {
	showtime, err := s.inventory.Seats(ctx, booking.ShowtimeID)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	var selected []string
	for _, id := range booking.SeatIDs {
		seat, ok := showtime.Seat(id)
		switch {
		case ok && seat.Status == domain.SeatSelected && seat.BookingID == booking.ID:
			selected = append(selected, id)
		case !ok || !seat.HeldBy(booking.ID):
			logger.WithContext(ctx).Error("Confirmed booking lost a seat",
				"booking_id", booking.ID,
				"showtime_id", booking.ShowtimeID,
				"seat_id", id)
		}
	}

	if len(selected) > 0 {
		if err := s.inventory.Commit(ctx, booking.ShowtimeID, booking.ID, selected); err != nil {
			return fmt.Errorf("reconcile: %w", err)
		}
		logger.WithContext(ctx).Info("Reconciled seats of confirmed booking",
			"booking_id", booking.ID,
			"seats", len(selected))
	}

	_, err = s.store.GetPaymentByBooking(ctx, booking.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrPaymentNotFound) {
		return fmt.Errorf("reconcile: %w", err)
	}

	intent, err := s.payments.RetrieveIntent(ctx, booking.PaymentIntentID)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	if err := s.recordPayment(ctx, booking, intent); err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	logger.WithContext(ctx).Info("Reconciled payment of confirmed booking", "booking_id", booking.ID)
	return nil
}

func (s *BookingService) reconcileCancelled(ctx context.Context, booking *domain.Booking) error {
	showtime, err := s.inventory.Seats(ctx, booking.ShowtimeID)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	var held []string
	for _, id := range booking.SeatIDs {
		if seat, ok := showtime.Seat(id); ok && seat.HeldBy(booking.ID) {
			held = append(held, id)
		}
	}

	if len(held) == 0 {
		return nil
	}

	if err := s.inventory.ReleaseHeld(ctx, booking.ShowtimeID, booking.ID, held); err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	logger.WithContext(ctx).Info("Reconciled seats of cancelled booking",
		"booking_id", booking.ID,
		"seats", len(held))
	return nil
}
