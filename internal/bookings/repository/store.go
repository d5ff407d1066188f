package repository

import (
	"context"
	"time"

	"spacebook/pkg/model"
)

// BookingStore persists bookings. Every check-then-write sequence for one
// resource must run inside WithResourceLock; store methods called with the
// ctx handed to fn join the same atomic unit.
type BookingStore interface {
	Get(ctx context.Context, id string) (*model.Booking, error)
	// ListByResourceAndDate returns the bookings of resourceID intersecting
	// [from, to), ordered by start time. Callers pass the bounds of one day.
	ListByResourceAndDate(ctx context.Context, resourceID string, from, to time.Time) ([]*model.Booking, error)
	Insert(ctx context.Context, booking *model.Booking) error
	Replace(ctx context.Context, booking *model.Booking) error
	Remove(ctx context.Context, id string) error
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error)
	Count(ctx context.Context) (int64, error)
	CountByResource(ctx context.Context, resourceID string) (int64, error)
	WithResourceLock(ctx context.Context, resourceID string, fn func(ctx context.Context) error) error
	Ping(ctx context.Context) error
}

// withTimeout bounds ctx by timeout unless ctx already expires sooner.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}
