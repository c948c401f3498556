package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/srgjo27/cinema_booking/internal/core/domain"
	"github.com/srgjo27/cinema_booking/internal/platform/logger"
)

// Store bundles the repositories into the persistence gateway.
type Store struct {
	*ShowtimeRepository
	*BookingRepository
	*PaymentRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		ShowtimeRepository: NewShowtimeRepository(db),
		BookingRepository:  NewBookingRepository(db),
		PaymentRepository:  NewPaymentRepository(db),
	}
}

// Migrate creates the schema when it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	log := logger.Get()
	log.Info("Running database migrations...")

	for i, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Info("All migrations completed", "count", len(migrations))
	return nil
}

func storeErr(op string, err error) error {
	return &domain.StoreError{Op: op, Err: err}
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS showtimes (
		id TEXT PRIMARY KEY,
		movie_id TEXT NOT NULL,
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ NOT NULL,
		price NUMERIC(10, 2) NOT NULL,
		total_seats INTEGER NOT NULL,
		screen_number INTEGER NOT NULL DEFAULT 1,
		version BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS showtime_seats (
		showtime_id TEXT NOT NULL REFERENCES showtimes(id) ON DELETE CASCADE,
		id TEXT NOT NULL,
		row_label TEXT NOT NULL,
		seat_number INTEGER NOT NULL,
		position INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'available',
		booking_id TEXT,
		PRIMARY KEY (showtime_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		showtime_id TEXT NOT NULL REFERENCES showtimes(id),
		seat_ids TEXT[] NOT NULL,
		total_amount NUMERIC(10, 2) NOT NULL,
		status TEXT NOT NULL,
		payment_status TEXT NOT NULL,
		payment_intent_id TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_pending ON bookings (status, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_settled ON bookings (status, updated_at DESC)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		booking_id TEXT NOT NULL UNIQUE REFERENCES bookings(id),
		stripe_payment_intent_id TEXT NOT NULL,
		amount NUMERIC(10, 2) NOT NULL,
		currency TEXT NOT NULL,
		payment_status TEXT NOT NULL,
		payment_method TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
}
