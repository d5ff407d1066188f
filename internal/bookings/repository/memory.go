package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	bookingserrors "spacebook/internal/bookings/errors"
	"spacebook/pkg/locks"
	"spacebook/pkg/model"
)

type memoryBookingStore struct {
	mu         sync.RWMutex
	byID       map[string]*model.Booking
	byResource map[string]map[string]struct{}
	locks      *locks.KeyedMutex
}

// NewMemoryBookingStore keeps bookings in process memory. Returned bookings
// are copies, so callers never observe a half-written interval.
func NewMemoryBookingStore() BookingStore {
	return &memoryBookingStore{
		byID:       make(map[string]*model.Booking),
		byResource: make(map[string]map[string]struct{}),
		locks:      locks.NewKeyedMutex(),
	}
}

func (s *memoryBookingStore) Get(_ context.Context, id string) (*model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.byID[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	return clone(b), nil
}

func (s *memoryBookingStore) ListByResourceAndDate(_ context.Context, resourceID string, from, to time.Time) ([]*model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings := make([]*model.Booking, 0, len(s.byResource[resourceID]))
	for id := range s.byResource[resourceID] {
		b := s.byID[id]
		if b.Overlaps(from, to) {
			bookings = append(bookings, clone(b))
		}
	}
	sortByStart(bookings)
	return bookings, nil
}

func (s *memoryBookingStore) Insert(_ context.Context, booking *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[booking.ID]; exists {
		return fmt.Errorf("failed to create booking: duplicate id %s", booking.ID)
	}
	s.byID[booking.ID] = clone(booking)
	ids, ok := s.byResource[booking.ResourceID]
	if !ok {
		ids = make(map[string]struct{})
		s.byResource[booking.ResourceID] = ids
	}
	ids[booking.ID] = struct{}{}
	return nil
}

func (s *memoryBookingStore) Replace(_ context.Context, booking *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[booking.ID]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	if current.ResourceID != booking.ResourceID {
		delete(s.byResource[current.ResourceID], booking.ID)
		if s.byResource[booking.ResourceID] == nil {
			s.byResource[booking.ResourceID] = make(map[string]struct{})
		}
		s.byResource[booking.ResourceID][booking.ID] = struct{}{}
	}
	s.byID[booking.ID] = clone(booking)
	return nil
}

func (s *memoryBookingStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.byID[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	delete(s.byID, id)
	ids := s.byResource[b.ResourceID]
	delete(ids, id)
	if len(ids) == 0 {
		delete(s.byResource, b.ResourceID)
	}
	return nil
}

func (s *memoryBookingStore) FindAll(_ context.Context, limit int, offset int64) ([]*model.Booking, error) {
	s.mu.RLock()
	all := make([]*model.Booking, 0, len(s.byID))
	for _, b := range s.byID {
		all = append(all, clone(b))
	}
	s.mu.RUnlock()

	sortByStart(all)
	if offset >= int64(len(all)) {
		return []*model.Booking{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *memoryBookingStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byID)), nil
}

func (s *memoryBookingStore) CountByResource(_ context.Context, resourceID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byResource[resourceID])), nil
}

func (s *memoryBookingStore) WithResourceLock(ctx context.Context, resourceID string, fn func(ctx context.Context) error) error {
	unlock, err := s.locks.LockContext(ctx, resourceID)
	if err != nil {
		return err
	}
	defer unlock()

	return fn(ctx)
}

func (s *memoryBookingStore) Ping(context.Context) error {
	return nil
}

func clone(b *model.Booking) *model.Booking {
	c := *b
	return &c
}

func sortByStart(bookings []*model.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].StartTime.Equal(bookings[j].StartTime) {
			return bookings[i].ID < bookings[j].ID
		}
		return bookings[i].StartTime.Before(bookings[j].StartTime)
	})
}
