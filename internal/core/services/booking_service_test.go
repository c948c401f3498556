package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/cinema_booking/internal/adapter/repository/memory"
	"github.com/srgjo27/cinema_booking/internal/core/domain"
	"github.com/srgjo27/cinema_booking/internal/core/services"
)

func TestCreateBooking_Success(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})

	booking := f.createBooking(t, "A1", "A2")

	assert.Equal(t, domain.BookingPending, booking.Status)
	assert.Equal(t, domain.PaymentPending, booking.PaymentStatus)
	assert.Equal(t, "25.00", booking.TotalAmount.StringFixed(2))
	assert.Equal(t, userID, booking.UserID)

	for _, id := range []string{"A1", "A2"} {
		seat := seatOf(t, f.store, id)
		assert.Equal(t, domain.SeatSelected, seat.Status)
		assert.Equal(t, booking.ID, seat.BookingID)
	}

	stored, err := f.store.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.SeatIDs, stored.SeatIDs)

	f.events.AssertCalled(t, "Publish", mock.Anything, publishedEvent(domain.EventBookingCreated, booking.ID))
}

func TestCreateBooking_Validation(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})
	ctx := context.Background()

	tests := []struct {
		name string
		req  services.CreateBookingRequest
		want error
	}{
		{"no seats", services.CreateBookingRequest{UserID: userID, ShowtimeID: showtimeID}, domain.ErrEmptySeatSelection},
		{"duplicate seat", services.CreateBookingRequest{UserID: userID, ShowtimeID: showtimeID, SeatIDs: []string{"A1", "A1"}}, domain.ErrDuplicateSeat},
		{"no user", services.CreateBookingRequest{ShowtimeID: showtimeID, SeatIDs: []string{"A1"}}, domain.ErrInvalidInput},
		{"unknown showtime", services.CreateBookingRequest{UserID: userID, ShowtimeID: "missing", SeatIDs: []string{"A1"}}, domain.ErrShowtimeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking, err := f.svc.CreateBooking(ctx, tt.req)
			assert.Nil(t, booking)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, domain.SeatAvailable, seatOf(t, f.store, "A1").Status)
}

func TestCreateBooking_Fail_SeatUnavailable(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})
	ctx := context.Background()

	first := f.createBooking(t, "A2")

	booking, err := f.svc.CreateBooking(ctx, services.CreateBookingRequest{
		UserID:     otherUser,
		ShowtimeID: showtimeID,
		SeatIDs:    []string{"A1", "A2"},
	})

	assert.Nil(t, booking)
	var unavailable *domain.SeatUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"A2"}, unavailable.SeatIDs)

	assert.Equal(t, domain.SeatAvailable, seatOf(t, f.store, "A1").Status)
	assert.Equal(t, first.ID, seatOf(t, f.store, "A2").BookingID)

	bookings, err := f.svc.ListBookings(ctx, otherUser)
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

type failingBookingStore struct {
	*memory.Store
	err error
}

func (s *failingBookingStore) CreateBooking(context.Context, *domain.Booking) error {
	return s.err
}

func TestCreateBooking_PersistFailureReleasesSeats(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})
	store := &failingBookingStore{Store: f.store, err: &domain.StoreError{Op: "insert", Err: errors.New("connection reset")}}
	svc := f.build(store, services.BookingConfig{})

	booking, err := svc.CreateBooking(context.Background(), services.CreateBookingRequest{
		UserID:     userID,
		ShowtimeID: showtimeID,
		SeatIDs:    []string{"A1", "A2"},
	})

	assert.Nil(t, booking)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.True(t, domain.IsRetryable(err))
	assert.Equal(t, domain.SeatAvailable, seatOf(t, f.store, "A1").Status)
	assert.Equal(t, domain.SeatAvailable, seatOf(t, f.store, "A2").Status)
}

func TestCreateBooking_ConcurrentOverlap(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	results := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.svc.CreateBooking(ctx, services.CreateBookingRequest{
				UserID:     userID,
				ShowtimeID: showtimeID,
				SeatIDs:    []string{"A3", "A4"},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrSeatUnavailable)
	}
	assert.Equal(t, 1, succeeded)

	bookings, err := f.svc.ListBookings(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestRequestPaymentIntent_Success(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})
	ctx := context.Background()
	booking := f.createBooking(t, "A1", "A2")

	f.gateway.On("CreateIntent", mock.Anything, int64(2500), "usd", map[string]string{
		"booking_id": booking.ID,
		"user_id":    userID,
	}).Return(domain.IntentRef{ID: "pi_1", ClientSecret: "pi_1_secret"}, nil).Once()

	resp, err := f.svc.RequestPaymentIntent(ctx, userID, booking.ID)

	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret", resp.ClientSecret)
	assert.Equal(t, "25.00", resp.Amount.StringFixed(2))

	stored, err := f.store.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "pi_1", stored.PaymentIntentID)
	assert.Equal(t, domain.BookingPending, stored.Status)
}

func TestRequestPaymentIntent_GatewayFailureLeavesBookingUntouched(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})
	ctx := context.Background()
	booking := f.createBooking(t, "A1")

	f.gateway.On("CreateIntent", mock.Anything, int64(1250), "usd", mock.Anything).
		Return(domain.IntentRef{}, &domain.GatewayError{Op: "create intent", Err: errors.New("api unreachable")}).Once()

	resp, err := f.svc.RequestPaymentIntent(ctx, userID, booking.ID)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrPaymentGateway)

	stored, err := f.store.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.PaymentIntentID)
	assert.Equal(t, domain.BookingPending, stored.Status)
}

func TestBookingOperations_Forbidden(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})
	ctx := context.Background()
	booking := f.createBooking(t, "A1")

	_, err := f.svc.RequestPaymentIntent(ctx, otherUser, booking.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.ConfirmPayment(ctx, otherUser, booking.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.CancelBooking(ctx, otherUser, booking.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.GetBooking(ctx, otherUser, booking.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.GetBooking(ctx, userID, "missing")
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)

	assert.Equal(t, domain.SeatSelected, seatOf(t, f.store, "A1").Status)
}

func TestConfirmPayment_Success(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})
	ctx := context.Background()
	booking := f.withIntent(t, "A1", "A2")
	f.intentSucceeds(booking.PaymentIntentID).Once()

	confirmed, err := f.svc.ConfirmPayment(ctx, userID, booking.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, confirmed.Status)
	assert.Equal(t, domain.PaymentCompleted, confirmed.PaymentStatus)
	for _, id := range []string{"A1", "A2"} {
		assert.Equal(t, domain.SeatBooked, seatOf(t, f.store, id).Status)
	}

	payments, err := f.svc.ListPayments(ctx, userID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, booking.ID, payments[0].BookingID)
	assert.Equal(t, booking.PaymentIntentID, payments[0].PaymentIntentID)
	assert.Equal(t, "25.00", payments[0].Amount.StringFixed(2))
	assert.Equal(t, "usd", payments[0].Currency)
	assert.Equal(t, "pm_card", payments[0].PaymentMethod)

	payment, err := f.svc.GetPayment(ctx, userID, payments[0].ID)
	require.NoError(t, err)
	assert.Equal(t, payments[0].ID, payment.ID)

	_, err = f.svc.GetPayment(ctx, otherUser, payments[0].ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	f.events.AssertCalled(t, "Publish", mock.Anything, publishedEvent(domain.EventBookingConfirmed, booking.ID))
}

func TestConfirmPayment_NoIntent(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})
	booking := f.createBooking(t, "A1")

	_, err := f.svc.ConfirmPayment(context.Background(), userID, booking.ID)

	assert.ErrorIs(t, err, domain.ErrNoPaymentIntent)
	f.gateway.AssertNotCalled(t, "RetrieveIntent", mock.Anything, mock.Anything)
}

func TestConfirmPayment_NotSucceeded(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})
	ctx := context.Background()
	booking := f.withIntent(t, "A1")

	f.gateway.On("RetrieveIntent", mock.Anything, booking.PaymentIntentID).
		Return(domain.IntentStatus{ID: booking.PaymentIntentID, Status: "requires_payment_method"}, nil).Once()

	_, err := f.svc.ConfirmPayment(ctx, userID, booking.ID)

	assert.ErrorIs(t, err, domain.ErrPaymentNotSucceeded)

	stored, err := f.store.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, stored.Status)
	assert.Equal(t, domain.SeatSelected, seatOf(t, f.store, "A1").Status)

	payments, err := f.svc.ListPayments(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestConfirmPayment_IsIdempotent(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})
	ctx := context.Background()
	booking := f.withIntent(t, "A1")
	f.intentSucceeds(booking.PaymentIntentID).Once()

	_, err := f.svc.ConfirmPayment(ctx, userID, booking.ID)
	require.NoError(t, err)

	again, err := f.svc.ConfirmPayment(ctx, userID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, again.Status)

	payments, err := f.svc.ListPayments(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
	f.gateway.AssertNumberOfCalls(t, "RetrieveIntent", 1)
}

func TestRequestPaymentIntent_AfterConfirmIsRejected(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})
	ctx := context.Background()
	booking := f.withIntent(t, "A1")
	f.intentSucceeds(booking.PaymentIntentID).Once()

	_, err := f.svc.ConfirmPayment(ctx, userID, booking.ID)
	require.NoError(t, err)

	_, err = f.svc.RequestPaymentIntent(ctx, userID, booking.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancelBooking_Pending(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})
	ctx := context.Background()
	booking := f.createBooking(t, "A1", "A2")

	cancelled, err := f.svc.CancelBooking(ctx, userID, booking.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, cancelled.Status)
	for _, id := range []string{"A1", "A2"} {
		seat := seatOf(t, f.store, id)
		assert.Equal(t, domain.SeatAvailable, seat.Status)
		assert.Empty(t, seat.BookingID)
	}

	_, err = f.svc.CancelBooking(ctx, userID, booking.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	for _, id := range []string{"A1", "A2"} {
		seat := seatOf(t, f.store, id)
		assert.Equal(t, domain.SeatAvailable, seat.Status)
		assert.Empty(t, seat.BookingID)
	}

	f.events.AssertCalled(t, "Publish", mock.Anything, publishedEvent(domain.EventBookingCancelled, booking.ID))
}

func TestCancelBooking_ConfirmedIsRejected(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})
	ctx := context.Background()
	booking := f.withIntent(t, "A1")
	f.intentSucceeds(booking.PaymentIntentID).Once()

	_, err := f.svc.ConfirmPayment(ctx, userID, booking.ID)
	require.NoError(t, err)

	_, err = f.svc.CancelBooking(ctx, userID, booking.ID)

	assert.ErrorIs(t, err, domain.ErrCannotCancelConfirmed)
	assert.Equal(t, domain.SeatBooked, seatOf(t, f.store, "A1").Status)
}

func TestConfirmPayment_AfterCancelIsRejected(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})
	ctx := context.Background()
	booking := f.withIntent(t, "A1")

	_, err := f.svc.CancelBooking(ctx, userID, booking.ID)
	require.NoError(t, err)

	_, err = f.svc.ConfirmPayment(ctx, userID, booking.ID)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, domain.SeatAvailable, seatOf(t, f.store, "A1").Status)
}

// staleOnceStore makes the first guarded update lose to a concurrent cancel.
type staleOnceStore struct {
	*memory.Store
	once sync.Once
}

func (s *staleOnceStore) UpdateBooking(ctx context.Context, booking *domain.Booking, expected domain.BookingStatus) error {
	var raced bool
	s.once.Do(func() {
		current, err := s.Store.GetBooking(ctx, booking.ID)
		if err != nil {
			return
		}
		_ = current.Cancel(time.Now())
		_ = s.Store.UpdateBooking(ctx, current, domain.BookingPending)
		raced = true
	})
	if raced {
		return domain.ErrStaleBooking
	}
	return s.Store.UpdateBooking(ctx, booking, expected)
}

func TestConfirmPayment_LosesRaceToCancel(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})
	ctx := context.Background()
	booking := f.withIntent(t, "A1")
	f.intentSucceeds(booking.PaymentIntentID).Once()

	svc := f.build(&staleOnceStore{Store: f.store}, services.BookingConfig{})

	_, err := svc.ConfirmPayment(ctx, userID, booking.ID)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	stored, err := f.store.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, stored.Status)
	assert.NotEqual(t, domain.SeatBooked, seatOf(t, f.store, "A1").Status)
}

func TestGetBooking_ReconcilesConfirmedBooking(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})
	ctx := context.Background()
	booking := f.withIntent(t, "A1", "A2")

	// Simulate a crash right after the booking row was confirmed.
	stored, err := f.store.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	require.NoError(t, stored.ConfirmPayment(domain.IntentStatus{Status: domain.IntentSucceeded}, f.clock))
	require.NoError(t, f.store.UpdateBooking(ctx, stored, domain.BookingPending))

	f.intentSucceeds(booking.PaymentIntentID).Once()

	got, err := f.svc.GetBooking(ctx, userID, booking.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, got.Status)
	for _, id := range []string{"A1", "A2"} {
		assert.Equal(t, domain.SeatBooked, seatOf(t, f.store, id).Status)
	}

	payment, err := f.store.GetPaymentByBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCompleted, payment.PaymentStatus)
}

func TestGetBooking_ReconcilesCancelledBooking(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})
	ctx := context.Background()
	booking := f.createBooking(t, "A1")

	stored, err := f.store.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	require.NoError(t, stored.Cancel(f.clock))
	require.NoError(t, f.store.UpdateBooking(ctx, stored, domain.BookingPending))

	_, err = f.svc.GetBooking(ctx, userID, booking.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.SeatAvailable, seatOf(t, f.store, "A1").Status)
}

func TestExpirePendingBookings(t *testing.T) {
	f := newFixture(t, services.BookingConfig{HoldTTL: 10 * time.Minute})
	ctx := context.Background()

	old := f.createBooking(t, "A1")
	f.clock = f.clock.Add(8 * time.Minute)
	fresh := f.createBooking(t, "A2")
	f.clock = f.clock.Add(3 * time.Minute)

	expired, err := f.svc.ExpirePendingBookings(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	stored, err := f.store.GetBooking(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, stored.Status)
	assert.Equal(t, domain.SeatAvailable, seatOf(t, f.store, "A1").Status)

	stored, err = f.store.GetBooking(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, stored.Status)
	assert.Equal(t, fresh.ID, seatOf(t, f.store, "A2").BookingID)

	f.events.AssertCalled(t, "Publish", mock.Anything, publishedEvent(domain.EventBookingExpired, old.ID))
}

func TestExpirePendingBookings_DisabledWithoutTTL(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})
	f.createBooking(t, "A1")
	f.clock = f.clock.Add(24 * time.Hour)

	expired, err := f.svc.ExpirePendingBookings(context.Background())

	require.NoError(t, err)
	assert.Zero(t, expired)
	assert.Equal(t, domain.SeatSelected, seatOf(t, f.store, "A1").Status)
}

func TestSeatMap(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})
	f.createBooking(t, "A1")

	st, err := f.svc.SeatMap(context.Background(), showtimeID)

	require.NoError(t, err)
	assert.Len(t, st.Seats, 4)
	assert.Equal(t, 3, st.AvailableSeats())
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})
	f.events.ExpectedCalls = nil
	f.events.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	booking := f.createBooking(t, "A1")

	assert.Equal(t, domain.BookingPending, booking.Status)
}

// settleHookStore runs onSettle once, right after a booking update to a
// confirmed or cancelled status has been stored.
type settleHookStore struct {
	*memory.Store
	once     sync.Once
	onSettle func()
}

func (s *settleHookStore) UpdateBooking(ctx context.Context, booking *domain.Booking, expected domain.BookingStatus) error {
	if err := s.Store.UpdateBooking(ctx, booking, expected); err != nil {
		return err
	}
	if booking.IsTerminal() {
		s.once.Do(s.onSettle)
	}
	return nil
}

func TestCancelBooking_KeepsSeatsRebookedMeanwhile(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})
	ctx := context.Background()
	booking := f.createBooking(t, "A1")

	store := &settleHookStore{Store: f.store}
	svc := f.build(store, services.BookingConfig{})

	var rebooked *domain.Booking
	store.onSettle = func() {
		// A read of the cancelled booking frees its seats before the cancel
		// itself gets to them, and another user takes A1.
		_, err := svc.GetBooking(ctx, userID, booking.ID)
		require.NoError(t, err)
		rebooked, err = svc.CreateBooking(ctx, services.CreateBookingRequest{
			UserID:     otherUser,
			ShowtimeID: showtimeID,
			SeatIDs:    []string{"A1"},
		})
		require.NoError(t, err)
	}

	_, err := svc.CancelBooking(ctx, userID, booking.ID)
	require.NoError(t, err)
	require.NotNil(t, rebooked)

	seat := seatOf(t, f.store, "A1")
	assert.Equal(t, domain.SeatSelected, seat.Status)
	assert.Equal(t, rebooked.ID, seat.BookingID)

	_, err = svc.CreateBooking(ctx, services.CreateBookingRequest{
		UserID:     "user-3",
		ShowtimeID: showtimeID,
		SeatIDs:    []string{"A1"},
	})
	assert.ErrorIs(t, err, domain.ErrSeatUnavailable)
}

func TestConfirmPayment_FinishesAfterCallerGoesAway(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})
	booking := f.withIntent(t, "A1", "A2")
	f.intentSucceeds(booking.PaymentIntentID).Once()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := f.build(&settleHookStore{Store: f.store, onSettle: cancel}, services.BookingConfig{})

	confirmed, err := svc.ConfirmPayment(ctx, userID, booking.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, confirmed.Status)
	for _, id := range []string{"A1", "A2"} {
		assert.Equal(t, domain.SeatBooked, seatOf(t, f.store, id).Status)
	}
	_, err = f.store.GetPaymentByBooking(context.Background(), booking.ID)
	assert.NoError(t, err)
}

func TestCancelBooking_FinishesAfterCallerGoesAway(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})
	booking := f.createBooking(t, "A1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := f.build(&settleHookStore{Store: f.store, onSettle: cancel}, services.BookingConfig{})

	_, err := svc.CancelBooking(ctx, userID, booking.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.SeatAvailable, seatOf(t, f.store, "A1").Status)
}

// interruptConfirm leaves booking confirmed in the store with its seats still
// selected and no payment, as a crash after the booking write would.
func (f *fixture) interruptConfirm(t *testing.T, booking *domain.Booking) {
	t.Helper()
	ctx := context.Background()

	stored, err := f.store.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	require.NoError(t, stored.ConfirmPayment(domain.IntentStatus{Status: domain.IntentSucceeded}, f.clock))
	require.NoError(t, f.store.UpdateBooking(ctx, stored, domain.BookingPending))
}

func TestListBookings_ReconcilesSettledBookings(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})
	ctx := context.Background()
	booking := f.withIntent(t, "A1")
	pending := f.createBooking(t, "A2")
	f.interruptConfirm(t, booking)
	f.intentSucceeds(booking.PaymentIntentID).Once()

	bookings, err := f.svc.ListBookings(ctx, userID)

	require.NoError(t, err)
	assert.Len(t, bookings, 2)
	assert.Equal(t, domain.SeatBooked, seatOf(t, f.store, "A1").Status)
	assert.Equal(t, pending.ID, seatOf(t, f.store, "A2").BookingID)
	_, err = f.store.GetPaymentByBooking(ctx, booking.ID)
	assert.NoError(t, err)
}

func TestReconcileRecentBookings(t *testing.T) {
	f := newFixture(t, services.BookingConfig{ReconcileWindow: time.Hour})
	ctx := context.Background()
	booking := f.withIntent(t, "A1", "A2")
	f.interruptConfirm(t, booking)
	f.intentSucceeds(booking.PaymentIntentID).Once()
	f.clock = f.clock.Add(30 * time.Minute)

	checked, err := f.svc.ReconcileRecentBookings(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, checked)
	for _, id := range []string{"A1", "A2"} {
		assert.Equal(t, domain.SeatBooked, seatOf(t, f.store, id).Status)
	}
	payment, err := f.store.GetPaymentByBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "25.00", payment.Amount.StringFixed(2))
}

func TestReconcileRecentBookings_OutsideWindow(t *testing.T) {
	f := newFixture(t, services.BookingConfig{ReconcileWindow: time.Hour})
	booking := f.withIntent(t, "A1")
	f.interruptConfirm(t, booking)
	f.clock = f.clock.Add(2 * time.Hour)

	checked, err := f.svc.ReconcileRecentBookings(context.Background())

	require.NoError(t, err)
	assert.Zero(t, checked)
	assert.Equal(t, domain.SeatSelected, seatOf(t, f.store, "A1").Status)
}

func TestReconcileRecentBookings_Disabled(t *testing.T) {
	f := newFixture(t, services.BookingConfig{})

	checked, err := f.svc.ReconcileRecentBookings(context.Background())

	require.NoError(t, err)
	assert.Zero(t, checked)
}
