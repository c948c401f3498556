package services

import (
	"context"
	"errors"
	"time"

	"github.com/srgjo27/cinema_booking/internal/core/domain"
	"github.com/srgjo27/cinema_booking/internal/platform/logger"
	"github.com/srgjo27/cinema_booking/internal/platform/metrics"
)

// RunHoldSweeper periodically cancels pending bookings older than HoldTTL.
// It returns immediately when no TTL is configured.
func (s *BookingService) RunHoldSweeper(ctx context.Context) {
	log := logger.WithFields("job", "hold_sweeper")

	if s.cfg.HoldTTL <= 0 {
		log.Info("Hold sweeper disabled: HOLD_TTL not set")
		return
	}

	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	log.Info("Hold sweeper started",
		"interval", s.cfg.SweepInterval.String(),
		"hold_ttl", s.cfg.HoldTTL.String())

	for {
		select {
		case <-ctx.Done():
			log.Info("Hold sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.ExpirePendingBookings(ctx); err != nil {
				log.Error("Failed to expire pending bookings", "error", err)
			}
		}
	}
}

// ExpirePendingBookings cancels one batch of pending bookings whose hold has
// outlived HoldTTL and releases their seats. It returns how many it expired.
func (s *BookingService) ExpirePendingBookings(ctx context.Context) (int, error) {
	if s.cfg.HoldTTL <= 0 {
		return 0, nil
	}

	cutoff := s.now().Add(-s.cfg.HoldTTL)

	bookings, err := s.store.ListPendingBookings(ctx, cutoff, s.cfg.SweepBatch)
	if err != nil {
		return 0, err
	}

	if len(bookings) == 0 {
		return 0, nil
	}

	log := logger.WithContext(ctx)
	log.Info("Found expired holds. Cleaning up...", "count", len(bookings))

	expired := 0
	for i := range bookings {
		booking := &bookings[i]

		if err := s.expire(ctx, booking); err != nil {
			if errors.Is(err, domain.ErrStaleBooking) {
				continue
			}
			log.Error("Failed to expire booking", "error", err, "booking_id", booking.ID)
			continue
		}

		expired++
		log.Info("Booking expired and seats released",
			"booking_id", booking.ID,
			"created_at", booking.CreatedAt)
	}

	return expired, nil
}

func (s *BookingService) expire(ctx context.Context, booking *domain.Booking) error {
	updated := booking.Clone()
	if err := updated.Cancel(s.now()); err != nil {
		return err
	}

	if err := s.store.UpdateBooking(ctx, updated, domain.BookingPending); err != nil {
		return err
	}

	ctx, cancel := s.detach(ctx)
	defer cancel()

	if err := s.inventory.ReleaseHeld(ctx, updated.ShowtimeID, updated.ID, updated.SeatIDs); err != nil {
		return err
	}

	metrics.Transitions.WithLabelValues("expire", "ok").Inc()
	s.publish(ctx, domain.EventBookingExpired, updated)

	return nil
}
