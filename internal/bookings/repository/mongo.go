package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "spacebook/internal/bookings/errors"
	"spacebook/pkg/config"
	mongotx "spacebook/pkg/db/mongo"
	"spacebook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	CollectionName = "Bookings"
)

type mongoBookingStore struct {
	cfg        *config.Config
	client     *mongo.Client
	collection *mongo.Collection
	locks      *lockRepository
	txManager  mongotx.TransactionManager
}

func NewMongoBookingStore(cfg *config.Config) BookingStore {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingStore{
		cfg:        cfg,
		client:     cfg.Client.Mongo,
		collection: db.Collection(CollectionName),
		locks:      newLockRepository(db, cfg.LockTTL, cfg.LockWait, cfg.Log),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout leaves a SessionContext untouched, wrapping it would detach the
// operation from its transaction.
func (r *mongoBookingStore) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return withTimeout(ctx, timeout)
}

func (r *mongoBookingStore) Get(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var booking model.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingStore) ListByResourceAndDate(ctx context.Context, resourceID string, from, to time.Time) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"resource_id": resourceID,
		"start_time":  bson.M{"$lt": to},
		"end_time":    bson.M{"$gt": from},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}, {Key: "_id", Value: 1}})

	return r.find(ctx, filter, opts)
}

func (r *mongoBookingStore) Insert(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *mongoBookingStore) Replace(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": booking.ID}, booking)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

func (r *mongoBookingStore) Remove(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if result.DeletedCount == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

func (r *mongoBookingStore) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoBookingStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Booking, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := make([]*model.Booking, 0)
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingStore) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingStore) CountByResource(ctx context.Context, resourceID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"resource_id": resourceID})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings by resource: %w", err)
	}
	return count, nil
}

// WithResourceLock takes the advisory lock document for resourceID and runs
// fn inside a transaction while holding it. The transaction is bounded by the
// lock's hold budget, LOCK_TTL minus a safety margin.
func (r *mongoBookingStore) WithResourceLock(ctx context.Context, resourceID string, fn func(ctx context.Context) error) error {
	held, err := r.locks.Acquire(ctx, resourceID)
	if err != nil {
		return err
	}
	defer r.locks.Release(held)

	// fn must commit before the lock document can be reclaimed.
	holdCtx, cancel := context.WithDeadline(ctx, held.deadline)
	defer cancel()

	return r.txManager.ExecuteTransaction(holdCtx, func(sessCtx mongo.SessionContext) error {
		return fn(sessCtx)
	})
}

func (r *mongoBookingStore) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()
	return r.client.Ping(ctx, readpref.Primary())
}
