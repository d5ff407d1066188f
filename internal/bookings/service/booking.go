package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "spacebook/internal/bookings/errors"
	"spacebook/internal/bookings/events"
	"spacebook/internal/bookings/repository"
	"spacebook/internal/bookings/scheduling"
	"spacebook/internal/bookings/validator"
	"spacebook/pkg/clock"
	"spacebook/pkg/config"
	apperrors "spacebook/pkg/errors"
	"spacebook/pkg/model"

	"github.com/google/uuid"
)

// ResourceDirectory answers questions about bookable resources.
type ResourceDirectory interface {
	Exists(ctx context.Context, resourceID string) (bool, error)
	OwnerOf(ctx context.Context, resourceID string) (string, error)
}

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest, requester model.Requester) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	ListByResourceAndDate(ctx context.Context, resourceID, date string) ([]*model.Booking, error)
	Update(ctx context.Context, id string, upd *model.BookingUpdate, requester model.Requester) (*model.Booking, error)
	Delete(ctx context.Context, id string, requester model.Requester) error
	Availability(ctx context.Context, resourceID, date string) (*model.Availability, error)
}

type bookingService struct {
	store     repository.BookingStore
	resources ResourceDirectory
	policy    *scheduling.Policy
	validator *validator.BookingValidator
	publisher events.Publisher
	clock     clock.Clock
	cfg       *config.Config
}

func NewBookingService(
	store repository.BookingStore,
	resources ResourceDirectory,
	policy *scheduling.Policy,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	clk clock.Clock,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if clk == nil {
		clk = clock.System
	}
	return &bookingService{
		store:     store,
		resources: resources,
		policy:    policy,
		validator: validator,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest, requester model.Requester) (*model.Booking, error) {
	if requester.Anonymous() {
		return nil, forbidden("Authentication is required to create a booking")
	}
	if err := s.validator.ValidateRequest(req); err != nil {
		return nil, s.validationError(err)
	}
	if err := s.requireResource(ctx, req.ResourceID); err != nil {
		return nil, err
	}
	interval, err := s.interval(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	now := s.now()
	booking := &model.Booking{
		ID:         uuid.NewString(),
		ResourceID: req.ResourceID,
		OwnerID:    requester.ID,
		StartTime:  interval.Start.UTC(),
		EndTime:    interval.End.UTC(),
		CreatedAt:  now,
	}

	err = s.store.WithResourceLock(ctx, booking.ResourceID, func(ctx context.Context) error {
		// Resource deletion takes the same lock, so this check cannot go stale before the insert.
		if err := s.requireResource(ctx, booking.ResourceID); err != nil {
			return err
		}
		if err := s.checkConflict(ctx, booking, ""); err != nil {
			return err
		}
		if err := s.store.Insert(ctx, booking); err != nil {
			return storeError("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure("Failed to create booking", err, "resource_id", booking.ResourceID)
		return nil, lockError(err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"resource_id", booking.ResourceID,
		"owner_id", booking.OwnerID,
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
	)
	s.publish(ctx, events.TypeBookingCreated, booking)
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, bookingNotFound(id)
		}
		s.cfg.Log.Error("Failed to retrieve booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var (
		count             int64
		bookings          []*model.Booking
		errCount, errFind error
		wg                sync.WaitGroup
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.store.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.store.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return bookings, count, nil
}

func (s *bookingService) ListByResourceAndDate(ctx context.Context, resourceID, date string) ([]*model.Booking, error) {
	if err := s.requireResource(ctx, resourceID); err != nil {
		return nil, err
	}
	open, close, err := s.policy.Day(date)
	if err != nil {
		return nil, invalidTimeRange(err)
	}

	bookings, err := s.store.ListByResourceAndDate(ctx, resourceID, open, close)
	if err != nil {
		s.cfg.Log.Error("Failed to search bookings", "resource_id", resourceID, "date", date, "error", err)
		return nil, apperrors.Internal("Failed to search bookings", err)
	}

	s.cfg.Log.Debug("Booking search completed",
		"resource_id", resourceID,
		"date", date,
		"count", len(bookings),
	)
	return bookings, nil
}

func (s *bookingService) Update(ctx context.Context, id string, upd *model.BookingUpdate, requester model.Requester) (*model.Booking, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.CanManage(existing.OwnerID) {
		s.cfg.Log.Warn("Booking update denied", "id", id, "requester_id", requester.ID)
		return nil, forbidden("Only the booking owner or an admin may update this booking")
	}
	if err := s.validator.ValidateUpdate(upd); err != nil {
		return nil, s.validationError(err)
	}
	interval, err := s.interval(upd.Date, upd.StartTime, upd.EndTime)
	if err != nil {
		return nil, err
	}

	var updated *model.Booking
	err = s.store.WithResourceLock(ctx, existing.ResourceID, func(ctx context.Context) error {
		current, err := s.store.Get(ctx, id)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return bookingNotFound(id)
			}
			return storeError("Failed to retrieve booking", err)
		}

		candidate := *current
		candidate.StartTime = interval.Start.UTC()
		candidate.EndTime = interval.End.UTC()
		candidate.UpdatedAt = s.now()

		if err := s.checkConflict(ctx, &candidate, id); err != nil {
			return err
		}
		if err := s.store.Replace(ctx, &candidate); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return bookingNotFound(id)
			}
			return storeError("Failed to update booking", err)
		}
		updated = &candidate
		return nil
	})
	if err != nil {
		s.logFailure("Failed to update booking", err, "id", id)
		return nil, lockError(err)
	}

	s.cfg.Log.Info("Booking updated successfully",
		"id", id,
		"start_time", updated.StartTime,
		"end_time", updated.EndTime,
	)
	s.publish(ctx, events.TypeBookingUpdated, updated)
	return updated, nil
}

func (s *bookingService) Delete(ctx context.Context, id string, requester model.Requester) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !requester.CanManage(existing.OwnerID) {
		s.cfg.Log.Warn("Booking delete denied", "id", id, "requester_id", requester.ID)
		return forbidden("Only the booking owner or an admin may delete this booking")
	}

	err = s.store.WithResourceLock(ctx, existing.ResourceID, func(ctx context.Context) error {
		if err := s.store.Remove(ctx, id); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return bookingNotFound(id)
			}
			return storeError("Failed to delete booking", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure("Failed to delete booking", err, "id", id)
		return lockError(err)
	}

	s.cfg.Log.Info("Booking deleted successfully", "id", id)
	s.publish(ctx, events.TypeBookingDeleted, existing)
	return nil
}

func (s *bookingService) Availability(ctx context.Context, resourceID, date string) (*model.Availability, error) {
	if err := s.requireResource(ctx, resourceID); err != nil {
		return nil, err
	}
	open, close, err := s.policy.Day(date)
	if err != nil {
		return nil, invalidTimeRange(err)
	}

	bookings, err := s.store.ListByResourceAndDate(ctx, resourceID, open, close)
	if err != nil {
		s.cfg.Log.Error("Failed to load bookings for availability", "resource_id", resourceID, "date", date, "error", err)
		return nil, apperrors.Internal("Failed to compute availability", err)
	}

	return &model.Availability{
		ResourceID: resourceID,
		Date:       date,
		OpenTime:   open,
		CloseTime:  close,
		Slots:      scheduling.FreeSlots(bookings, open, close),
	}, nil
}

// --- Helpers ---

func (s *bookingService) now() time.Time {
	return scheduling.Now(s.clock)
}

func (s *bookingService) interval(date, start, end string) (scheduling.Interval, error) {
	interval, err := s.policy.Validate(date, start, end)
	if err != nil {
		s.cfg.Log.Warn("Booking time range rejected", "date", date, "start_time", start, "end_time", end, "error", err)
		return scheduling.Interval{}, invalidTimeRange(err)
	}
	return interval, nil
}

// checkConflict must run under the resource lock.
func (s *bookingService) checkConflict(ctx context.Context, candidate *model.Booking, excludeID string) error {
	open, close := s.policy.Window().On(candidate.StartTime)
	existing, err := s.store.ListByResourceAndDate(ctx, candidate.ResourceID, open, close)
	if err != nil {
		return storeError("Failed to check existing bookings", err)
	}
	if c := scheduling.FirstConflict(existing, candidate.StartTime, candidate.EndTime, excludeID); c != nil {
		return conflict(c)
	}
	return nil
}

func (s *bookingService) requireResource(ctx context.Context, resourceID string) error {
	if resourceID == "" {
		return apperrors.InvalidInput("Resource ID cannot be empty")
	}
	ok, err := s.resources.Exists(ctx, resourceID)
	if err != nil {
		s.cfg.Log.Error("Failed to look up resource", "resource_id", resourceID, "error", err)
		return apperrors.Internal("Failed to look up resource", err)
	}
	if !ok {
		return apperrors.NotFoundWithID("Resource", resourceID).WithCause(bookingserrors.ErrResourceNotFound)
	}
	return nil
}

func (s *bookingService) validationError(err error) error {
	s.cfg.Log.Warn("Booking validation failed", "error", err)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Booking validation failed", verrs.Details())
	}
	return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
}

func (s *bookingService) publish(ctx context.Context, eventType string, b *model.Booking) {
	if err := s.publisher.Publish(ctx, events.NewBookingEvent(eventType, b, s.now())); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event", "type", eventType, "id", b.ID, "error", err)
	}
}

func (s *bookingService) logFailure(msg string, err error, args ...any) {
	args = append(args, "error", err)
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus < 500 {
		s.cfg.Log.Warn(msg, args...)
		return
	}
	s.cfg.Log.Error(msg, args...)
}

func bookingNotFound(id string) *apperrors.AppError {
	return apperrors.NotFoundWithID("Booking", id).WithCause(bookingserrors.ErrNotFound)
}

func forbidden(msg string) *apperrors.AppError {
	return apperrors.Forbidden(msg).WithCause(bookingserrors.ErrForbidden)
}

func invalidTimeRange(err error) *apperrors.AppError {
	return apperrors.InvalidTimeRange(err.Error()).WithCause(err)
}

func conflict(existing *model.Booking) *apperrors.AppError {
	return apperrors.Conflict(fmt.Sprintf(
		"Booking time overlaps with existing booking (%s - %s)",
		existing.StartTime.Format(time.RFC3339),
		existing.EndTime.Format(time.RFC3339),
	)).WithDetails(map[string]any{
		"conflicting_booking_id": existing.ID,
		"start_time":             existing.StartTime,
		"end_time":               existing.EndTime,
	}).WithCause(bookingserrors.ErrTimeConflict)
}

// storeError maps store failures raised inside the lock. A backend constraint
// violation is reported as the same conflict the detector would have found.
func storeError(msg string, err error) error {
	if errors.Is(err, bookingserrors.ErrTimeConflict) {
		return apperrors.Conflict("Booking time overlaps with an existing booking").WithCause(err)
	}
	return apperrors.Internal(msg, err)
}

// lockError maps failures returned by WithResourceLock itself.
func lockError(err error) error {
	if apperrors.IsAppError(err) {
		return apperrors.AsAppError(err)
	}
	if errors.Is(err, bookingserrors.ErrLockContention) {
		return apperrors.Contention("Resource is busy, retry the request").WithCause(err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Timeout("Booking operation timed out")
	}
	return apperrors.Internal("Booking operation failed", err)
}
