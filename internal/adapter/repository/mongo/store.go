package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/srgjo27/cinema_booking/internal/core/domain"
	"github.com/srgjo27/cinema_booking/internal/platform/logger"
)

const (
	showtimesCollection = "showtimes"
	bookingsCollection  = "bookings"
	paymentsCollection  = "payments"
)

// Store keeps each showtime and its seat map in one document, so a seat
// write is a single atomic UpdateOne guarded by the document version.
type Store struct {
	showtimes *mongo.Collection
	bookings  *mongo.Collection
	payments  *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{
		showtimes: db.Collection(showtimesCollection),
		bookings:  db.Collection(bookingsCollection),
		payments:  db.Collection(paymentsCollection),
	}
}

// EnsureIndexes creates the indexes the store relies on. The unique
// booking_id index is what makes a second payment for a booking fail.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.payments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "booking_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create payments index: %w", err)
	}

	_, err = s.bookings.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "updated_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create bookings indexes: %w", err)
	}

	logger.Get().Info("MongoDB indexes ensured")
	return nil
}

// SaveShowtime inserts or replaces a showtime with its seats.
func (s *Store) SaveShowtime(ctx context.Context, st *domain.Showtime) error {
	doc, err := newShowtimeDoc(st)
	if err != nil {
		return err
	}

	_, err = s.showtimes.ReplaceOne(ctx, bson.M{"_id": st.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return storeErr("save showtime", err)
	}

	return nil
}

func (s *Store) GetShowtime(ctx context.Context, showtimeID string) (*domain.Showtime, error) {
	var doc showtimeDoc
	if err := s.showtimes.FindOne(ctx, bson.M{"_id": showtimeID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrShowtimeNotFound
		}
		return nil, storeErr("get showtime", err)
	}

	st, err := doc.toDomain()
	if err != nil {
		return nil, storeErr("decode showtime", err)
	}

	return st, nil
}

func (s *Store) UpdateSeatStatuses(ctx context.Context, showtimeID string, expectedVersion int64, changes []domain.SeatChange) error {
	update, arrayFilters := seatUpdate(changes)

	result, err := s.showtimes.UpdateOne(ctx,
		bson.M{"_id": showtimeID, "version": expectedVersion},
		update,
		options.Update().SetArrayFilters(options.ArrayFilters{Filters: arrayFilters}),
	)
	if err != nil {
		return storeErr("update seats", err)
	}

	if result.MatchedCount == 0 {
		exists, err := s.exists(ctx, s.showtimes, showtimeID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrShowtimeNotFound
		}
		return domain.ErrVersionConflict
	}

	return nil
}

// seatUpdate builds one $set per change, each addressed through its own
// array filter on the seat id, plus the version bump.
func seatUpdate(changes []domain.SeatChange) (bson.M, []interface{}) {
	set := bson.M{}
	filters := make([]interface{}, 0, len(changes))

	for i, c := range changes {
		name := fmt.Sprintf("s%d", i)
		set["seats.$["+name+"].status"] = string(c.Status)
		set["seats.$["+name+"].booking_id"] = c.BookingID
		filters = append(filters, bson.M{name + ".id": c.SeatID})
	}

	update := bson.M{"$inc": bson.M{"version": 1}}
	if len(set) > 0 {
		update["$set"] = set
	}

	return update, filters
}

func (s *Store) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	var doc bookingDoc
	if err := s.bookings.FindOne(ctx, bson.M{"_id": bookingID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, storeErr("get booking", err)
	}

	b, err := doc.toDomain()
	if err != nil {
		return nil, storeErr("decode booking", err)
	}

	return b, nil
}

func (s *Store) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	doc, err := newBookingDoc(booking)
	if err != nil {
		return err
	}

	if _, err := s.bookings.InsertOne(ctx, doc); err != nil {
		return storeErr("create booking", err)
	}

	return nil
}

func (s *Store) UpdateBooking(ctx context.Context, booking *domain.Booking, expected domain.BookingStatus) error {
	set := bson.M{
		"status":            string(booking.Status),
		"payment_status":    string(booking.PaymentStatus),
		"payment_intent_id": booking.PaymentIntentID,
		"updated_at":        booking.UpdatedAt,
	}

	result, err := s.bookings.UpdateOne(ctx,
		bson.M{"_id": booking.ID, "status": string(expected)},
		bson.M{"$set": set},
	)
	if err != nil {
		return storeErr("update booking", err)
	}

	if result.MatchedCount == 0 {
		exists, err := s.exists(ctx, s.bookings, booking.ID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrBookingNotFound
		}
		return domain.ErrStaleBooking
	}

	return nil
}

func (s *Store) ListBookingsByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return s.findBookings(ctx, bson.M{"user_id": userID}, opts)
}

func (s *Store) ListPendingBookings(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	filter := bson.M{
		"status":     string(domain.BookingPending),
		"created_at": bson.M{"$lt": createdBefore},
	}

	return s.findBookings(ctx, filter, opts)
}

func (s *Store) ListSettledBookings(ctx context.Context, updatedSince time.Time, limit int) ([]domain.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	filter := bson.M{
		"status":     bson.M{"$in": bson.A{string(domain.BookingConfirmed), string(domain.BookingCancelled)}},
		"updated_at": bson.M{"$gte": updatedSince},
	}

	return s.findBookings(ctx, filter, opts)
}

func (s *Store) findBookings(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Booking, error) {
	cursor, err := s.bookings.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeErr("find bookings", err)
	}
	defer cursor.Close(ctx)

	var docs []bookingDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storeErr("decode bookings", err)
	}

	bookings := make([]domain.Booking, 0, len(docs))
	for i := range docs {
		b, err := docs[i].toDomain()
		if err != nil {
			return nil, storeErr("decode booking", err)
		}
		bookings = append(bookings, *b)
	}

	return bookings, nil
}

func (s *Store) CreatePayment(ctx context.Context, payment *domain.Payment) error {
	doc, err := newPaymentDoc(payment)
	if err != nil {
		return err
	}

	if _, err := s.payments.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrPaymentExists
		}
		return storeErr("create payment", err)
	}

	return nil
}

func (s *Store) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	return s.findPayment(ctx, bson.M{"_id": paymentID})
}

func (s *Store) GetPaymentByBooking(ctx context.Context, bookingID string) (*domain.Payment, error) {
	return s.findPayment(ctx, bson.M{"booking_id": bookingID})
}

func (s *Store) findPayment(ctx context.Context, filter bson.M) (*domain.Payment, error) {
	var doc paymentDoc
	if err := s.payments.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, storeErr("get payment", err)
	}

	p, err := doc.toDomain()
	if err != nil {
		return nil, storeErr("decode payment", err)
	}

	return p, nil
}

func (s *Store) ListPaymentsByBookings(ctx context.Context, bookingIDs []string) ([]domain.Payment, error) {
	if len(bookingIDs) == 0 {
		return []domain.Payment{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.payments.Find(ctx, bson.M{"booking_id": bson.M{"$in": bookingIDs}}, opts)
	if err != nil {
		return nil, storeErr("find payments", err)
	}
	defer cursor.Close(ctx)

	var docs []paymentDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storeErr("decode payments", err)
	}

	payments := make([]domain.Payment, 0, len(docs))
	for i := range docs {
		p, err := docs[i].toDomain()
		if err != nil {
			return nil, storeErr("decode payment", err)
		}
		payments = append(payments, *p)
	}

	return payments, nil
}

func (s *Store) exists(ctx context.Context, coll *mongo.Collection, id string) (bool, error) {
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, storeErr("count "+coll.Name(), err)
	}
	return n > 0, nil
}

func storeErr(op string, err error) error {
	return &domain.StoreError{Op: op, Err: err}
}
