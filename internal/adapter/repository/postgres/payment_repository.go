package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/srgjo27/cinema_booking/internal/core/domain"
)

const uniqueViolation = "23505"

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, booking_id, stripe_payment_intent_id, amount, currency, payment_status, payment_method, created_at, updated_at`

func (r *PaymentRepository) CreatePayment(ctx context.Context, payment *domain.Payment) error {
	query := `
	INSERT INTO payments (` + paymentColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.BookingID,
		payment.PaymentIntentID,
		payment.Amount,
		payment.Currency,
		payment.PaymentStatus,
		payment.PaymentMethod,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrPaymentExists
		}
		return storeErr("create payment", err)
	}

	return nil
}

func (r *PaymentRepository) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, paymentID)
}

func (r *PaymentRepository) GetPaymentByBooking(ctx context.Context, bookingID string) (*domain.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE booking_id = $1`, bookingID)
}

func (r *PaymentRepository) getOne(ctx context.Context, query string, arg string) (*domain.Payment, error) {
	payment, err := scanPayment(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, storeErr("get payment", err)
	}

	return payment, nil
}

func (r *PaymentRepository) ListPaymentsByBookings(ctx context.Context, bookingIDs []string) ([]domain.Payment, error) {
	query := `
	SELECT ` + paymentColumns + `
	FROM payments
	WHERE booking_id = ANY($1)
	ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(bookingIDs))
	if err != nil {
		return nil, storeErr("list payments", err)
	}

	defer rows.Close()

	payments := []domain.Payment{}
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, storeErr("list payments", err)
		}

		payments = append(payments, *payment)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("list payments", err)
	}

	return payments, nil
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var p domain.Payment

	err := row.Scan(
		&p.ID,
		&p.BookingID,
		&p.PaymentIntentID,
		&p.Amount,
		&p.Currency,
		&p.PaymentStatus,
		&p.PaymentMethod,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()

	return &p, nil
}
