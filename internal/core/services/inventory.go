package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/srgjo27/cinema_booking/internal/core/domain"
	"github.com/srgjo27/cinema_booking/internal/core/ports"
	"github.com/srgjo27/cinema_booking/internal/platform/logger"
	"github.com/srgjo27/cinema_booking/internal/platform/metrics"
)

const DefaultInventoryAttempts = 3

// SeatInventory serializes every seat write of a showtime behind a lease and
// additionally guards each write with the showtime version, so a write made
// after a lease expired is rejected instead of applied.
type SeatInventory struct {
	showtimes   ports.ShowtimeRepository
	locker      ports.ShowtimeLocker
	maxAttempts int
}

func NewSeatInventory(showtimes ports.ShowtimeRepository, locker ports.ShowtimeLocker, maxAttempts int) *SeatInventory {
	if maxAttempts < 1 {
		maxAttempts = DefaultInventoryAttempts
	}

	return &SeatInventory{
		showtimes:   showtimes,
		locker:      locker,
		maxAttempts: maxAttempts,
	}
}

// seatPlan inspects the current seat map and returns the writes to apply.
type seatPlan func(st *domain.Showtime) ([]domain.SeatChange, error)

var errAttemptsExhausted = errors.New("inventory attempts exhausted")

// Reserve moves every named seat from available to selected, or none of them.
func (inv *SeatInventory) Reserve(ctx context.Context, showtimeID, bookingID string, seatIDs []string) error {
	if len(seatIDs) == 0 {
		return domain.ErrEmptySeatSelection
	}

	err := inv.apply(ctx, "reserve", showtimeID, func(st *domain.Showtime) ([]domain.SeatChange, error) {
		var offending []string
		for _, id := range seatIDs {
			seat, ok := st.Seat(id)
			if !ok || !seat.IsAvailable() {
				offending = append(offending, id)
			}
		}

		if len(offending) > 0 {
			return nil, &domain.SeatUnavailableError{SeatIDs: offending}
		}

		return changesFor(seatIDs, domain.SeatSelected, bookingID), nil
	})

	if errors.Is(err, errAttemptsExhausted) {
		return &domain.SeatUnavailableError{SeatIDs: append([]string(nil), seatIDs...)}
	}

	return err
}

// Commit moves seats held by bookingID from selected to booked.
func (inv *SeatInventory) Commit(ctx context.Context, showtimeID, bookingID string, seatIDs []string) error {
	err := inv.apply(ctx, "commit", showtimeID, func(st *domain.Showtime) ([]domain.SeatChange, error) {
		var offending []string
		for _, id := range seatIDs {
			seat, ok := st.Seat(id)
			if !ok || seat.Status != domain.SeatSelected || seat.BookingID != bookingID {
				offending = append(offending, id)
			}
		}

		if len(offending) > 0 {
			return nil, &domain.InvalidSeatStateError{SeatIDs: offending, Want: domain.SeatSelected}
		}

		return changesFor(seatIDs, domain.SeatBooked, bookingID), nil
	})

	if errors.Is(err, errAttemptsExhausted) {
		return fmt.Errorf("commit seats: %w", domain.ErrConcurrentUpdate)
	}

	return err
}

// Release returns seats to available whatever their holder. Releasing an
// available seat is a no-op.
func (inv *SeatInventory) Release(ctx context.Context, showtimeID string, seatIDs []string) error {
	return inv.release(ctx, showtimeID, seatIDs, func(*domain.Seat) bool { return true })
}

// ReleaseHeld releases only the seats still held by bookingID.
func (inv *SeatInventory) ReleaseHeld(ctx context.Context, showtimeID, bookingID string, seatIDs []string) error {
	return inv.release(ctx, showtimeID, seatIDs, func(seat *domain.Seat) bool {
		return seat.BookingID == bookingID
	})
}

func (inv *SeatInventory) release(ctx context.Context, showtimeID string, seatIDs []string, owned func(*domain.Seat) bool) error {
	err := inv.apply(ctx, "release", showtimeID, func(st *domain.Showtime) ([]domain.SeatChange, error) {
		var changes []domain.SeatChange
		for _, id := range seatIDs {
			seat, ok := st.Seat(id)
			if !ok || seat.IsAvailable() || !owned(seat) {
				continue
			}
			changes = append(changes, domain.SeatChange{SeatID: id, Status: domain.SeatAvailable})
		}

		return changes, nil
	})

	if errors.Is(err, errAttemptsExhausted) {
		return fmt.Errorf("release seats: %w", domain.ErrConcurrentUpdate)
	}

	return err
}

// Seats reads the current seat map without taking the lease.
func (inv *SeatInventory) Seats(ctx context.Context, showtimeID string) (*domain.Showtime, error) {
	return inv.showtimes.GetShowtime(ctx, showtimeID)
}

func (inv *SeatInventory) apply(ctx context.Context, op, showtimeID string, plan seatPlan) error {
	lease, err := inv.locker.Acquire(ctx, showtimeID)
	if err != nil {
		return fmt.Errorf("%s seats: %w", op, err)
	}

	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			logger.WithContext(ctx).Error("Failed to release showtime lease",
				"error", err,
				"showtime_id", showtimeID,
				"op", op)
		}
	}()

	for attempt := 1; attempt <= inv.maxAttempts; attempt++ {
		st, err := inv.showtimes.GetShowtime(ctx, showtimeID)
		if err != nil {
			return err
		}

		changes, err := plan(st)
		if err != nil {
			if errors.Is(err, domain.ErrSeatUnavailable) || errors.Is(err, domain.ErrInvalidSeatState) {
				metrics.SeatConflicts.WithLabelValues(op).Inc()
			}
			return err
		}

		if len(changes) == 0 {
			return nil
		}

		err = inv.showtimes.UpdateSeatStatuses(ctx, showtimeID, st.Version, changes)
		if err == nil {
			return nil
		}

		if !errors.Is(err, domain.ErrVersionConflict) {
			return err
		}

		metrics.SeatConflicts.WithLabelValues(op).Inc()
		logger.WithContext(ctx).Warn("Seat map changed during update, re-evaluating",
			"showtime_id", showtimeID,
			"op", op,
			"attempt", attempt)
	}

	return errAttemptsExhausted
}

func changesFor(seatIDs []string, status domain.SeatStatus, bookingID string) []domain.SeatChange {
	changes := make([]domain.SeatChange, 0, len(seatIDs))
	for _, id := range seatIDs {
		changes = append(changes, domain.SeatChange{SeatID: id, Status: status, BookingID: bookingID})
	}
	return changes
}
