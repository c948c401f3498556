package handler

import (
	"time"

	"github.com/srgjo27/cinema_booking/internal/core/domain"
)

type createBookingRequest struct {
	ShowtimeID string   `json:"showtime_id" binding:"required"`
	SeatIDs    []string `json:"seat_ids"`
}

type bookingResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	ShowtimeID      string    `json:"showtime_id"`
	SeatIDs         []string  `json:"seat_ids"`
	TotalAmount     string    `json:"total_amount"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"payment_status"`
	PaymentIntentID string    `json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func newBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:              b.ID,
		UserID:          b.UserID,
		ShowtimeID:      b.ShowtimeID,
		SeatIDs:         b.SeatIDs,
		TotalAmount:     b.TotalAmount.StringFixed(2),
		Status:          string(b.Status),
		PaymentStatus:   string(b.PaymentStatus),
		PaymentIntentID: b.PaymentIntentID,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

type paymentResponse struct {
	ID                    string    `json:"id"`
	BookingID             string    `json:"booking_id"`
	StripePaymentIntentID string    `json:"stripe_payment_intent_id"`
	Amount                string    `json:"amount"`
	Currency              string    `json:"currency"`
	PaymentStatus         string    `json:"payment_status"`
	PaymentMethod         string    `json:"payment_method"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func newPaymentResponse(p *domain.Payment) paymentResponse {
	return paymentResponse{
		ID:                    p.ID,
		BookingID:             p.BookingID,
		StripePaymentIntentID: p.PaymentIntentID,
		Amount:                p.Amount.StringFixed(2),
		Currency:              p.Currency,
		PaymentStatus:         string(p.PaymentStatus),
		PaymentMethod:         p.PaymentMethod,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

type seatResponse struct {
	ID     string `json:"id"`
	Row    string `json:"row"`
	Number int    `json:"number"`
	Status string `json:"status"`
}

type seatMapResponse struct {
	ShowtimeID     string         `json:"showtime_id"`
	MovieID        string         `json:"movie_id"`
	StartTime      time.Time      `json:"start_time"`
	EndTime        time.Time      `json:"end_time"`
	Price          string         `json:"price"`
	TotalSeats     int            `json:"total_seats"`
	AvailableSeats int            `json:"available_seats"`
	Seats          []seatResponse `json:"seats"`
}

func newSeatMapResponse(st *domain.Showtime) seatMapResponse {
	resp := seatMapResponse{
		ShowtimeID:     st.ID,
		MovieID:        st.MovieID,
		StartTime:      st.StartTime,
		EndTime:        st.EndTime,
		Price:          st.Price.StringFixed(2),
		TotalSeats:     st.TotalSeats,
		AvailableSeats: st.AvailableSeats(),
		Seats:          make([]seatResponse, 0, len(st.Seats)),
	}

	for _, seat := range st.Seats {
		resp.Seats = append(resp.Seats, seatResponse{
			ID:     seat.ID,
			Row:    seat.Row,
			Number: seat.Number,
			Status: string(seat.Status),
		})
	}

	return resp
}

type paymentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	Amount       string `json:"amount"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Seats   []string `json:"seats,omitempty"`
}
