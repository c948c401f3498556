package mongo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/srgjo27/cinema_booking/internal/core/domain"
)

type seatDoc struct {
	ID        string `bson:"id"`
	Row       string `bson:"row"`
	Number    int    `bson:"number"`
	Status    string `bson:"status"`
	BookingID string `bson:"booking_id"`
}

type showtimeDoc struct {
	ID           string               `bson:"_id"`
	MovieID      string               `bson:"movie_id"`
	StartTime    time.Time            `bson:"start_time"`
	EndTime      time.Time            `bson:"end_time"`
	Price        primitive.Decimal128 `bson:"price"`
	TotalSeats   int                  `bson:"total_seats"`
	ScreenNumber int                  `bson:"screen_number"`
	Seats        []seatDoc            `bson:"seats"`
	Version      int64                `bson:"version"`
}

type bookingDoc struct {
	ID              string               `bson:"_id"`
	UserID          string               `bson:"user_id"`
	ShowtimeID      string               `bson:"showtime_id"`
	SeatIDs         []string             `bson:"seat_ids"`
	TotalAmount     primitive.Decimal128 `bson:"total_amount"`
	Status          string               `bson:"status"`
	PaymentStatus   string               `bson:"payment_status"`
	PaymentIntentID string               `bson:"payment_intent_id,omitempty"`
	CreatedAt       time.Time            `bson:"created_at"`
	UpdatedAt       time.Time            `bson:"updated_at"`
}

type paymentDoc struct {
	ID              string               `bson:"_id"`
	BookingID       string               `bson:"booking_id"`
	PaymentIntentID string               `bson:"stripe_payment_intent_id"`
	Amount          primitive.Decimal128 `bson:"amount"`
	Currency        string               `bson:"currency"`
	PaymentStatus   string               `bson:"payment_status"`
	PaymentMethod   string               `bson:"payment_method"`
	CreatedAt       time.Time            `bson:"created_at"`
	UpdatedAt       time.Time            `bson:"updated_at"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	dec, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("encode amount %s: %w", d, err)
	}
	return dec, nil
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("decode amount %s: %w", d, err)
	}
	return v, nil
}

func newShowtimeDoc(st *domain.Showtime) (*showtimeDoc, error) {
	price, err := toDecimal128(st.Price)
	if err != nil {
		return nil, err
	}

	doc := &showtimeDoc{
		ID:           st.ID,
		MovieID:      st.MovieID,
		StartTime:    st.StartTime,
		EndTime:      st.EndTime,
		Price:        price,
		TotalSeats:   st.TotalSeats,
		ScreenNumber: st.ScreenNumber,
		Seats:        make([]seatDoc, 0, len(st.Seats)),
		Version:      st.Version,
	}

	for _, seat := range st.Seats {
		doc.Seats = append(doc.Seats, seatDoc{
			ID:        seat.ID,
			Row:       seat.Row,
			Number:    seat.Number,
			Status:    string(seat.Status),
			BookingID: seat.BookingID,
		})
	}

	return doc, nil
}

func (d *showtimeDoc) toDomain() (*domain.Showtime, error) {
	price, err := fromDecimal128(d.Price)
	if err != nil {
		return nil, err
	}

	st := &domain.Showtime{
		ID:           d.ID,
		MovieID:      d.MovieID,
		StartTime:    d.StartTime.UTC(),
		EndTime:      d.EndTime.UTC(),
		Price:        price,
		TotalSeats:   d.TotalSeats,
		ScreenNumber: d.ScreenNumber,
		Seats:        make([]domain.Seat, 0, len(d.Seats)),
		Version:      d.Version,
	}

	for _, seat := range d.Seats {
		if !domain.SeatStatus(seat.Status).Valid() {
			return nil, fmt.Errorf("seat %s: unknown status %q", seat.ID, seat.Status)
		}
		st.Seats = append(st.Seats, domain.Seat{
			ID:        seat.ID,
			Row:       seat.Row,
			Number:    seat.Number,
			Status:    domain.SeatStatus(seat.Status),
			BookingID: seat.BookingID,
		})
	}

	return st, nil
}

func newBookingDoc(b *domain.Booking) (*bookingDoc, error) {
	amount, err := toDecimal128(b.TotalAmount)
	if err != nil {
		return nil, err
	}

	return &bookingDoc{
		ID:              b.ID,
		UserID:          b.UserID,
		ShowtimeID:      b.ShowtimeID,
		SeatIDs:         b.SeatIDs,
		TotalAmount:     amount,
		Status:          string(b.Status),
		PaymentStatus:   string(b.PaymentStatus),
		PaymentIntentID: b.PaymentIntentID,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}, nil
}

func (d *bookingDoc) toDomain() (*domain.Booking, error) {
	amount, err := fromDecimal128(d.TotalAmount)
	if err != nil {
		return nil, err
	}

	return &domain.Booking{
		ID:              d.ID,
		UserID:          d.UserID,
		ShowtimeID:      d.ShowtimeID,
		SeatIDs:         append([]string(nil), d.SeatIDs...),
		TotalAmount:     amount,
		Status:          domain.BookingStatus(d.Status),
		PaymentStatus:   domain.PaymentStatus(d.PaymentStatus),
		PaymentIntentID: d.PaymentIntentID,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}, nil
}

func newPaymentDoc(p *domain.Payment) (*paymentDoc, error) {
	amount, err := toDecimal128(p.Amount)
	if err != nil {
		return nil, err
	}

	return &paymentDoc{
		ID:              p.ID,
		BookingID:       p.BookingID,
		PaymentIntentID: p.PaymentIntentID,
		Amount:          amount,
		Currency:        p.Currency,
		PaymentStatus:   string(p.PaymentStatus),
		PaymentMethod:   p.PaymentMethod,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}, nil
}

func (d *paymentDoc) toDomain() (*domain.Payment, error) {
	amount, err := fromDecimal128(d.Amount)
	if err != nil {
		return nil, err
	}

	return &domain.Payment{
		ID:              d.ID,
		BookingID:       d.BookingID,
		PaymentIntentID: d.PaymentIntentID,
		Amount:          amount,
		Currency:        d.Currency,
		PaymentStatus:   domain.PaymentStatus(d.PaymentStatus),
		PaymentMethod:   d.PaymentMethod,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}, nil
}
