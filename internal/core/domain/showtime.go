package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Showtime struct {
	ID           string
	MovieID      string
	StartTime    time.Time
	EndTime      time.Time
	Price        decimal.Decimal
	TotalSeats   int
	ScreenNumber int
	Seats        []Seat
	// Version is bumped on every seat write and guards compare-and-swap updates.
	Version int64
}

func (s *Showtime) Seat(id string) (*Seat, bool) {
	for i := range s.Seats {
		if s.Seats[i].ID == id {
			return &s.Seats[i], true
		}
	}
	return nil, false
}

func (s *Showtime) AvailableSeats() int {
	n := 0
	for _, seat := range s.Seats {
		if seat.IsAvailable() {
			n++
		}
	}
	return n
}

// Apply writes the changes onto the in-memory seat map. Unknown seat ids are ignored.
func (s *Showtime) Apply(changes []SeatChange) {
	for _, c := range changes {
		if seat, ok := s.Seat(c.SeatID); ok {
			seat.Status = c.Status
			seat.BookingID = c.BookingID
		}
	}
}

// TotalFor prices a selection of n seats.
func (s *Showtime) TotalFor(n int) decimal.Decimal {
	return s.Price.Mul(decimal.NewFromInt(int64(n))).Round(2)
}
