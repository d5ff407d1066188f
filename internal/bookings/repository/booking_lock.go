package repository

import (
	"context"
	"fmt"
	"time"

	bookingserrors "spacebook/internal/bookings/errors"
	"spacebook/pkg/logger"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	LockCollectionName = "Booking_locks"
	lockIDPrefix       = "resource_lock_"
	lockPollInterval   = 25 * time.Millisecond
	lockReleaseTimeout = 5 * time.Second
	lockExpiryMargin   = time.Second
)

type resourceLock struct {
	ID         string    `bson:"_id"`
	ResourceID string    `bson:"resource_id"`
	Token      string    `bson:"token"`
	CreatedAt  time.Time `bson:"created_at"`
	ExpiresAt  time.Time `bson:"expires_at"`
}

// heldLock identifies one acquisition. Only the holder of token may delete
// the document, so a holder whose lock expired and was reclaimed cannot free
// the new owner's lock.
type heldLock struct {
	id         string
	resourceID string
	token      string
	// deadline is when the holder must be done, a margin before the document expires.
	deadline time.Time
}

// lockRepository implements per-resource advisory locks on a unique _id. A
// holder that dies leaves a document behind until expires_at passes; the TTL
// index then reaps it, and acquirers also delete expired documents themselves.
type lockRepository struct {
	collection *mongo.Collection
	ttl        time.Duration
	wait       time.Duration
	now        func() time.Time
	log        *logger.Logger
}

func newLockRepository(db *mongo.Database, ttl, wait time.Duration, log *logger.Logger) *lockRepository {
	return &lockRepository{
		collection: db.Collection(LockCollectionName),
		ttl:        ttl,
		wait:       wait,
		now:        time.Now,
		log:        log,
	}
}

func lockID(resourceID string) string {
	return lockIDPrefix + resourceID
}

// holdBudget is how long a holder may work before its lock could be reclaimed.
func holdBudget(ttl time.Duration) time.Duration {
	return ttl - min(lockExpiryMargin, ttl/2)
}

// Acquire polls until the lock is inserted or the wait budget is spent, in
// which case ErrLockContention is returned.
func (r *lockRepository) Acquire(ctx context.Context, resourceID string) (*heldLock, error) {
	id := lockID(resourceID)
	token := uuid.NewString()
	deadline := r.now().Add(r.wait)

	for {
		now := r.now().UTC()
		_, err := r.collection.InsertOne(ctx, resourceLock{
			ID:         id,
			ResourceID: resourceID,
			Token:      token,
			CreatedAt:  now,
			ExpiresAt:  now.Add(r.ttl),
		})
		if err == nil {
			return &heldLock{
				id:         id,
				resourceID: resourceID,
				token:      token,
				deadline:   now.Add(holdBudget(r.ttl)),
			}, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("failed to acquire resource lock: %w", err)
		}

		if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "expires_at": bson.M{"$lt": now}}); err != nil {
			return nil, fmt.Errorf("failed to clear expired resource lock: %w", err)
		}

		if !r.now().Before(deadline) {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrLockContention, resourceID)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
}

// Release runs on a fresh context so a cancelled request still frees its lock.
func (r *lockRepository) Release(held *heldLock) {
	ctx, cancel := context.WithTimeout(context.Background(), lockReleaseTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": held.id, "token": held.token})
	if err != nil {
		r.log.Warn("Failed to release resource lock", "resource_id", held.resourceID, "error", err)
		return
	}
	if result.DeletedCount == 0 {
		r.log.Warn("Resource lock expired before release", "resource_id", held.resourceID)
	}
}
