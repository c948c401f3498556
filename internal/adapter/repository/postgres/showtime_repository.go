package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/srgjo27/cinema_booking/internal/core/domain"
)

type ShowtimeRepository struct {
	db *sql.DB
}

func NewShowtimeRepository(db *sql.DB) *ShowtimeRepository {
	return &ShowtimeRepository{db: db}
}

// GetShowtime reads the showtime row and its seats from one snapshot, so the
// version always matches the seat statuses returned with it.
func (r *ShowtimeRepository) GetShowtime(ctx context.Context, showtimeID string) (*domain.Showtime, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, storeErr("get showtime", err)
	}

	defer tx.Rollback()

	queryHeader := `
	SELECT id, movie_id, start_time, end_time, price, total_seats, screen_number, version
	FROM showtimes
	WHERE id = $1
	`

	var st domain.Showtime
	err = tx.QueryRowContext(ctx, queryHeader, showtimeID).Scan(
		&st.ID,
		&st.MovieID,
		&st.StartTime,
		&st.EndTime,
		&st.Price,
		&st.TotalSeats,
		&st.ScreenNumber,
		&st.Version,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrShowtimeNotFound
		}
		return nil, storeErr("get showtime", err)
	}

	querySeats := `
	SELECT id, row_label, seat_number, status, booking_id
	FROM showtime_seats
	WHERE showtime_id = $1
	ORDER BY position
	`

	rows, err := tx.QueryContext(ctx, querySeats, showtimeID)
	if err != nil {
		return nil, storeErr("get seats", err)
	}

	defer rows.Close()

	for rows.Next() {
		var seat domain.Seat
		var bookingID sql.NullString

		if err := rows.Scan(&seat.ID, &seat.Row, &seat.Number, &seat.Status, &bookingID); err != nil {
			return nil, storeErr("scan seat", err)
		}

		if !seat.Status.Valid() {
			return nil, storeErr("scan seat", fmt.Errorf("seat %s: unknown status %q", seat.ID, seat.Status))
		}

		seat.BookingID = bookingID.String
		st.Seats = append(st.Seats, seat)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("get seats", err)
	}

	st.StartTime = st.StartTime.UTC()
	st.EndTime = st.EndTime.UTC()

	return &st, nil
}

// UpdateSeatStatuses bumps the showtime version guarded by expectedVersion and
// writes every seat change in the same transaction.
func (r *ShowtimeRepository) UpdateSeatStatuses(ctx context.Context, showtimeID string, expectedVersion int64, changes []domain.SeatChange) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("update seats", err)
	}

	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
	UPDATE showtimes
	SET version = version + 1
	WHERE id = $1 AND version = $2
	`, showtimeID, expectedVersion)
	if err != nil {
		return storeErr("update seats", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeErr("update seats", err)
	}

	if rowsAffected == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM showtimes WHERE id = $1`, showtimeID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrShowtimeNotFound
		}
		if err != nil {
			return storeErr("update seats", err)
		}
		return domain.ErrVersionConflict
	}

	stmt, err := tx.PrepareContext(ctx, `
	UPDATE showtime_seats
	SET status = $1, booking_id = $2
	WHERE showtime_id = $3 AND id = $4
	`)
	if err != nil {
		return storeErr("prepare seat statement", err)
	}

	defer stmt.Close()

	for _, c := range changes {
		if _, err := stmt.ExecContext(ctx, c.Status, nullString(c.BookingID), showtimeID, c.SeatID); err != nil {
			return storeErr(fmt.Sprintf("update seat %s", c.SeatID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit seats", err)
	}

	return nil
}

// SaveShowtime inserts or replaces a showtime together with its seat rows.
func (r *ShowtimeRepository) SaveShowtime(ctx context.Context, st *domain.Showtime) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("save showtime", err)
	}

	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO showtimes (id, movie_id, start_time, end_time, price, total_seats, screen_number, version)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE SET
		movie_id = EXCLUDED.movie_id,
		start_time = EXCLUDED.start_time,
		end_time = EXCLUDED.end_time,
		price = EXCLUDED.price,
		total_seats = EXCLUDED.total_seats,
		screen_number = EXCLUDED.screen_number,
		version = EXCLUDED.version
	`, st.ID, st.MovieID, st.StartTime, st.EndTime, st.Price, st.TotalSeats, st.ScreenNumber, st.Version)
	if err != nil {
		return storeErr("save showtime", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM showtime_seats WHERE showtime_id = $1`, st.ID); err != nil {
		return storeErr("save showtime", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO showtime_seats (showtime_id, id, row_label, seat_number, position, status, booking_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return storeErr("prepare seat insert", err)
	}

	defer stmt.Close()

	for i, seat := range st.Seats {
		_, err := stmt.ExecContext(ctx, st.ID, seat.ID, seat.Row, seat.Number, i, seat.Status, nullString(seat.BookingID))
		if err != nil {
			return storeErr(fmt.Sprintf("insert seat %s", seat.ID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit showtime", err)
	}

	return nil
}
