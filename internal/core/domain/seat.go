package domain

type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatSelected  SeatStatus = "selected"
	SeatBooked    SeatStatus = "booked"
)

func (s SeatStatus) Valid() bool {
	switch s {
	case SeatAvailable, SeatSelected, SeatBooked:
		return true
	}
	return false
}

type Seat struct {
	ID     string
	Row    string
	Number int
	Status SeatStatus
	// BookingID is the booking holding the seat while it is selected or booked.
	BookingID string
}

func (s *Seat) IsAvailable() bool {
	return s.Status == SeatAvailable
}

func (s *Seat) HeldBy(bookingID string) bool {
	return s.Status != SeatAvailable && s.BookingID == bookingID
}

// SeatChange is a single seat status write applied by the inventory.
type SeatChange struct {
	SeatID    string
	Status    SeatStatus
	BookingID string
}
