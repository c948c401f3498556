package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/srgjo27/cinema_booking/internal/core/domain"
	"github.com/srgjo27/cinema_booking/internal/platform/logger"
)

const demoShowtimeID = "demo-showtime"

// seedDemoShowtime stores a five-row, ten-seat screen unless it already exists.
func seedDemoShowtime(ctx context.Context, store seedableStore) error {
	_, err := store.GetShowtime(ctx, demoShowtimeID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrShowtimeNotFound) {
		return err
	}

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	st := &domain.Showtime{
		ID:           demoShowtimeID,
		MovieID:      "demo-movie",
		StartTime:    start,
		EndTime:      start.Add(2 * time.Hour),
		Price:        decimal.RequireFromString("12.50"),
		ScreenNumber: 1,
	}

	for _, row := range []string{"A", "B", "C", "D", "E"} {
		for n := 1; n <= 10; n++ {
			st.Seats = append(st.Seats, domain.Seat{
				ID:     fmt.Sprintf("%s%d", row, n),
				Row:    row,
				Number: n,
				Status: domain.SeatAvailable,
			})
		}
	}
	st.TotalSeats = len(st.Seats)

	if err := store.SaveShowtime(ctx, st); err != nil {
		return err
	}

	logger.Get().Info("Demo showtime seeded", "showtime_id", st.ID, "seats", st.TotalSeats)
	return nil
}
