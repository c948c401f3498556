package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	memlock "github.com/srgjo27/cinema_booking/internal/adapter/lock/memory"
	"github.com/srgjo27/cinema_booking/internal/adapter/repository/memory"
	"github.com/srgjo27/cinema_booking/internal/core/domain"
	"github.com/srgjo27/cinema_booking/internal/core/ports"
	"github.com/srgjo27/cinema_booking/internal/core/ports/mocks"
	"github.com/srgjo27/cinema_booking/internal/core/services"
)

const (
	showtimeID = "st-1"
	userID     = "user-1"
	otherUser  = "user-2"
)

var baseTime = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

func newShowtime() *domain.Showtime {
	return &domain.Showtime{
		ID:           showtimeID,
		MovieID:      "movie-1",
		StartTime:    baseTime.Add(24 * time.Hour),
		EndTime:      baseTime.Add(26 * time.Hour),
		Price:        decimal.RequireFromString("12.50"),
		TotalSeats:   4,
		ScreenNumber: 1,
		Seats: []domain.Seat{
			{ID: "A1", Row: "A", Number: 1, Status: domain.SeatAvailable},
			{ID: "A2", Row: "A", Number: 2, Status: domain.SeatAvailable},
			{ID: "A3", Row: "A", Number: 3, Status: domain.SeatAvailable},
			{ID: "A4", Row: "A", Number: 4, Status: domain.SeatAvailable},
		},
	}
}

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.SaveShowtime(context.Background(), newShowtime()))
	return store
}

func seatOf(t *testing.T, repo ports.ShowtimeRepository, seatID string) domain.Seat {
	t.Helper()
	st, err := repo.GetShowtime(context.Background(), showtimeID)
	require.NoError(t, err)
	seat, ok := st.Seat(seatID)
	require.True(t, ok, "seat %s missing", seatID)
	return *seat
}

type fixture struct {
	store   *memory.Store
	gateway *mocks.PaymentGateway
	events  *mocks.EventPublisher
	svc     *services.BookingService
	clock   time.Time
}

func newFixture(t *testing.T, cfg services.BookingConfig) *fixture {
	t.Helper()

	f := &fixture{
		store:   seedStore(t),
		gateway: mocks.NewPaymentGateway(t),
		events:  mocks.NewEventPublisher(t),
		clock:   baseTime,
	}
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	f.svc = f.build(f.store, cfg)

	return f
}

// build wires a service over store that shares the fixture's mocks and clock.
func (f *fixture) build(store ports.Store, cfg services.BookingConfig) *services.BookingService {
	inventory := services.NewSeatInventory(store, memlock.NewLocker(time.Second), 3)
	return services.NewBookingService(store, inventory, f.gateway, f.events, cfg).
		WithClock(func() time.Time { return f.clock })
}

func (f *fixture) createBooking(t *testing.T, seats ...string) *domain.Booking {
	t.Helper()
	b, err := f.svc.CreateBooking(context.Background(), services.CreateBookingRequest{
		UserID:     userID,
		ShowtimeID: showtimeID,
		SeatIDs:    seats,
	})
	require.NoError(t, err)
	return b
}

// withIntent creates a booking and attaches the intent pi_<booking id>.
func (f *fixture) withIntent(t *testing.T, seats ...string) *domain.Booking {
	t.Helper()
	b := f.createBooking(t, seats...)

	intentID := "pi_" + b.ID
	f.gateway.On("CreateIntent", mock.Anything, b.AmountMinor(), "usd", mock.Anything).
		Return(domain.IntentRef{ID: intentID, ClientSecret: intentID + "_secret"}, nil).Once()

	_, err := f.svc.RequestPaymentIntent(context.Background(), userID, b.ID)
	require.NoError(t, err)

	b.PaymentIntentID = intentID
	return b
}

func (f *fixture) intentSucceeds(intentID string) *mock.Call {
	return f.gateway.On("RetrieveIntent", mock.Anything, intentID).
		Return(domain.IntentStatus{ID: intentID, Status: domain.IntentSucceeded, PaymentMethod: "pm_card"}, nil)
}

func publishedEvent(eventType, bookingID string) interface{} {
	return mock.MatchedBy(func(e domain.Event) bool {
		return e.Type == eventType && e.BookingID == bookingID
	})
}
