package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/srgjo27/cinema_booking/internal/core/domain"
)

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, user_id, showtime_id, seat_ids, total_amount, status, payment_status, payment_intent_id, created_at, updated_at`

func (r *BookingRepository) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	query := `
	INSERT INTO bookings (` + bookingColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		booking.ID,
		booking.UserID,
		booking.ShowtimeID,
		pq.Array(booking.SeatIDs),
		booking.TotalAmount,
		booking.Status,
		booking.PaymentStatus,
		nullString(booking.PaymentIntentID),
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		return storeErr("create booking", err)
	}

	return nil
}

func (r *BookingRepository) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, storeErr("get booking", err)
	}

	return booking, nil
}

// UpdateBooking only writes when the stored status still equals expected.
func (r *BookingRepository) UpdateBooking(ctx context.Context, booking *domain.Booking, expected domain.BookingStatus) error {
	query := `
	UPDATE bookings
	SET status = $1, payment_status = $2, payment_intent_id = $3, updated_at = $4
	WHERE id = $5 AND status = $6
	`

	result, err := r.db.ExecContext(ctx, query,
		booking.Status,
		booking.PaymentStatus,
		nullString(booking.PaymentIntentID),
		booking.UpdatedAt,
		booking.ID,
		expected,
	)
	if err != nil {
		return storeErr("update booking", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeErr("update booking", err)
	}

	if rowsAffected == 0 {
		if _, err := r.GetBooking(ctx, booking.ID); err != nil {
			return err
		}
		return domain.ErrStaleBooking
	}

	return nil
}

func (r *BookingRepository) ListBookingsByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	query := `
	SELECT ` + bookingColumns + `
	FROM bookings
	WHERE user_id = $1
	ORDER BY created_at DESC
	`

	return r.list(ctx, "list bookings", query, userID)
}

func (r *BookingRepository) ListPendingBookings(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Booking, error) {
	query := `
	SELECT ` + bookingColumns + `
	FROM bookings
	WHERE status = 'pending' AND created_at < $1
	ORDER BY created_at
	LIMIT $2
	`

	return r.list(ctx, "list pending bookings", query, createdBefore, limit)
}

func (r *BookingRepository) ListSettledBookings(ctx context.Context, updatedSince time.Time, limit int) ([]domain.Booking, error) {
	query := `
	SELECT ` + bookingColumns + `
	FROM bookings
	WHERE status IN ('confirmed', 'cancelled') AND updated_at >= $1
	ORDER BY updated_at DESC
	LIMIT $2
	`

	return r.list(ctx, "list settled bookings", query, updatedSince, limit)
}

func (r *BookingRepository) list(ctx context.Context, op, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr(op, err)
	}

	defer rows.Close()

	bookings := []domain.Booking{}
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, storeErr(op, err)
		}

		bookings = append(bookings, *booking)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr(op, err)
	}

	return bookings, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var intentID sql.NullString

	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.ShowtimeID,
		pq.Array(&b.SeatIDs),
		&b.TotalAmount,
		&b.Status,
		&b.PaymentStatus,
		&intentID,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.PaymentIntentID = intentID.String
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()

	return &b, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
