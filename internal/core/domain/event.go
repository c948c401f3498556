package domain

import "time"

// Event is a booking lifecycle notification published after a state change is durable.
type Event struct {
	Type       string    `json:"type"`
	BookingID  string    `json:"booking_id"`
	ShowtimeID string    `json:"showtime_id"`
	UserID     string    `json:"user_id"`
	SeatIDs    []string  `json:"seat_ids"`
	Timestamp  time.Time `json:"timestamp"`
}

const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingExpired   = "booking.expired"
)

func NewEvent(eventType string, b *Booking, now time.Time) Event {
	return Event{
		Type:       eventType,
		BookingID:  b.ID,
		ShowtimeID: b.ShowtimeID,
		UserID:     b.UserID,
		SeatIDs:    append([]string(nil), b.SeatIDs...),
		Timestamp:  now.UTC(),
	}
}
