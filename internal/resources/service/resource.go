package service

import (
	"context"
	"errors"
	"sync"
	"time"

	bookingserrors "spacebook/internal/bookings/errors"
	resourceserrors "spacebook/internal/resources/errors"
	"spacebook/internal/resources/repository"
	"spacebook/internal/resources/validator"
	"spacebook/pkg/clock"
	"spacebook/pkg/config"
	apperrors "spacebook/pkg/errors"
	"spacebook/pkg/model"
	"spacebook/pkg/sanitizer"

	"github.com/google/uuid"
)

// BookingIndex is the slice of the booking store a resource needs to guard
// its own deletion.
type BookingIndex interface {
	CountByResource(ctx context.Context, resourceID string) (int64, error)
	WithResourceLock(ctx context.Context, resourceID string, fn func(ctx context.Context) error) error
}

type ResourceService interface {
	Create(ctx context.Context, r *model.Resource, requester model.Requester) (*model.Resource, error)
	GetByID(ctx context.Context, id string) (*model.Resource, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Resource, int64, error)
	Update(ctx context.Context, id string, upd *model.ResourceUpdate, requester model.Requester) (*model.Resource, error)
	Delete(ctx context.Context, id string, requester model.Requester) error

	Exists(ctx context.Context, id string) (bool, error)
	OwnerOf(ctx context.Context, id string) (string, error)
}

type resourceService struct {
	repo      repository.ResourceRepository
	bookings  BookingIndex
	validator *validator.ResourceValidator
	clock     clock.Clock
	cfg       *config.Config
}

func NewResourceService(
	repo repository.ResourceRepository,
	bookings BookingIndex,
	validator *validator.ResourceValidator,
	clk clock.Clock,
	cfg *config.Config,
) ResourceService {
	if clk == nil {
		clk = clock.System
	}
	return &resourceService{
		repo:      repo,
		bookings:  bookings,
		validator: validator,
		clock:     clk,
		cfg:       cfg,
	}
}

func (s *resourceService) Create(ctx context.Context, r *model.Resource, requester model.Requester) (*model.Resource, error) {
	if !requester.IsAdmin() {
		s.cfg.Log.Warn("Resource create denied", "requester_id", requester.ID)
		return nil, forbidden("Only admins may create resources")
	}

	res := &model.Resource{
		Name: sanitizer.NormalizeResourceName(r.Name),
		Type: sanitizer.NormalizeResourceType(r.Type),
	}
	if err := s.validator.Validate(res); err != nil {
		return nil, s.validationError(err, res.Name)
	}

	res.ID = uuid.NewString()
	res.OwnerID = requester.ID
	res.CreatedAt = s.clock.Now().UTC().Truncate(time.Millisecond)

	if err := s.repo.Create(ctx, res); err != nil {
		s.cfg.Log.Error("Failed to create resource", "name", res.Name, "error", err)
		return nil, apperrors.Internal("Failed to create resource", err)
	}

	s.cfg.Log.Info("Resource created successfully",
		"id", res.ID,
		"name", res.Name,
		"type", res.Type,
		"owner_id", res.OwnerID,
	)
	return res, nil
}

func (s *resourceService) GetByID(ctx context.Context, id string) (*model.Resource, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}

	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, resourceserrors.ErrNotFound) {
			return nil, notFound(id)
		}
		s.cfg.Log.Error("Failed to retrieve resource", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve resource", err)
	}
	return res, nil
}

func (s *resourceService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Resource, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var (
		count             int64
		resources         []*model.Resource
		errCount, errFind error
		wg                sync.WaitGroup
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count resources", "error", errCount)
			errCount = apperrors.Internal("Failed to count resources", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		resources, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list resources", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve resources", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return resources, count, nil
}

func (s *resourceService) Update(ctx context.Context, id string, upd *model.ResourceUpdate, requester model.Requester) (*model.Resource, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.CanManage(existing.OwnerID) {
		s.cfg.Log.Warn("Resource update denied", "id", id, "requester_id", requester.ID)
		return nil, forbidden("Only the resource owner or an admin may update this resource")
	}

	upd.Name = sanitizer.NormalizeResourceName(upd.Name)
	upd.Type = sanitizer.NormalizeResourceType(upd.Type)
	if err := s.validator.ValidateUpdate(upd); err != nil {
		return nil, s.validationError(err, existing.Name)
	}

	if upd.Name != "" {
		existing.Name = upd.Name
	}
	if upd.Type != "" {
		existing.Type = upd.Type
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		if errors.Is(err, resourceserrors.ErrNotFound) {
			return nil, notFound(id)
		}
		s.cfg.Log.Error("Failed to update resource", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update resource", err)
	}

	s.cfg.Log.Info("Resource updated successfully", "id", id, "name", existing.Name, "type", existing.Type)
	return existing, nil
}

// Delete runs under the booking lock of the resource, so no booking can be
// created between the count and the removal.
func (s *resourceService) Delete(ctx context.Context, id string, requester model.Requester) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !requester.CanManage(existing.OwnerID) {
		s.cfg.Log.Warn("Resource delete denied", "id", id, "requester_id", requester.ID)
		return forbidden("Only the resource owner or an admin may delete this resource")
	}

	err = s.bookings.WithResourceLock(ctx, id, func(ctx context.Context) error {
		n, err := s.bookings.CountByResource(ctx, id)
		if err != nil {
			return apperrors.Internal("Failed to count bookings for resource", err)
		}
		if n > 0 {
			return apperrors.Conflict("Resource still has bookings").
				WithDetails(map[string]any{"bookings": n}).
				WithCause(resourceserrors.ErrHasBookings)
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			if errors.Is(err, resourceserrors.ErrNotFound) {
				return notFound(id)
			}
			return apperrors.Internal("Failed to delete resource", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			s.cfg.Log.Warn("Resource delete rejected", "id", id, "error", err)
			return apperrors.AsAppError(err)
		}
		s.cfg.Log.Error("Failed to delete resource", "id", id, "error", err)
		if errors.Is(err, bookingserrors.ErrLockContention) {
			return apperrors.Contention("Resource is busy, retry the request").WithCause(err)
		}
		return apperrors.Internal("Failed to delete resource", err)
	}

	s.cfg.Log.Info("Resource deleted successfully", "id", id)
	return nil
}

func (s *resourceService) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, resourceserrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *resourceService) OwnerOf(ctx context.Context, id string) (string, error) {
	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return res.OwnerID, nil
}

func (s *resourceService) validationError(err error, name string) error {
	s.cfg.Log.Warn("Resource validation failed", "name", name, "error", err)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Resource validation failed", verrs.Details())
	}
	return apperrors.Validation("Resource validation failed", map[string]any{"error": err.Error()})
}

func notFound(id string) *apperrors.AppError {
	return apperrors.NotFoundWithID("Resource", id).WithCause(resourceserrors.ErrNotFound)
}

func forbidden(msg string) *apperrors.AppError {
	return apperrors.Forbidden(msg).WithCause(resourceserrors.ErrForbidden)
}
