package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	bookingserrors "spacebook/internal/bookings/errors"
	bookingsrepo "spacebook/internal/bookings/repository"
	resourceserrors "spacebook/internal/resources/errors"
	"spacebook/internal/resources/repository"
	"spacebook/internal/resources/validator"
	"spacebook/pkg/clock"
	"spacebook/pkg/config"
	apperrors "spacebook/pkg/errors"
	"spacebook/pkg/logger"
	"spacebook/pkg/model"
)

// ────────────────────────────────────────────────
// Test doubles
// ────────────────────────────────────────────────

var (
	admin = model.Requester{ID: "root", Role: model.RoleAdmin}
	alice = model.Requester{ID: "alice", Role: model.RoleUser}
)

type mockBookingIndex struct {
	countByResourceFunc  func(ctx context.Context, resourceID string) (int64, error)
	withResourceLockFunc func(ctx context.Context, resourceID string, fn func(ctx context.Context) error) error
}

func (m *mockBookingIndex) CountByResource(ctx context.Context, resourceID string) (int64, error) {
	if m.countByResourceFunc != nil {
		return m.countByResourceFunc(ctx, resourceID)
	}
	return 0, nil
}

func (m *mockBookingIndex) WithResourceLock(ctx context.Context, resourceID string, fn func(ctx context.Context) error) error {
	if m.withResourceLockFunc != nil {
		return m.withResourceLockFunc(ctx, resourceID, fn)
	}
	return fn(ctx)
}

func newTestService(bookings BookingIndex) ResourceService {
	log := logger.Discard()
	cfg := &config.Config{Log: log, ReadTimeout: 5 * time.Second}
	if bookings == nil {
		bookings = &mockBookingIndex{}
	}
	return NewResourceService(
		repository.NewMemoryResourceRepository(),
		bookings,
		validator.NewResourceValidator(log),
		clock.NewFixed(time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)),
		cfg,
	)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if !apperrors.HasCode(err, code) {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestCreate_AdminOnly(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, &model.Resource{Name: "Atlas", Type: "room"}, alice)
	assertCode(t, err, apperrors.CodeForbidden)
	if !errors.Is(err, resourceserrors.ErrForbidden) {
		t.Errorf("expected ErrForbidden cause, got %v", err)
	}

	res, err := svc.Create(ctx, &model.Resource{Name: "  Atlas   Room ", Type: " Room"}, admin)
	if err != nil {
		t.Fatalf("admin create: %v", err)
	}
	if res.ID == "" || res.OwnerID != admin.ID {
		t.Errorf("unexpected resource: %+v", res)
	}
	if res.Name != "Atlas Room" || res.Type != model.ResourceTypeRoom {
		t.Errorf("expected sanitized fields, got name=%q type=%q", res.Name, res.Type)
	}

	ok, err := svc.Exists(ctx, res.ID)
	if err != nil || !ok {
		t.Errorf("expected resource to exist, got %v %v", ok, err)
	}
	owner, err := svc.OwnerOf(ctx, res.ID)
	if err != nil || owner != admin.ID {
		t.Errorf("expected owner %s, got %q %v", admin.ID, owner, err)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := newTestService(nil)
	_, err := svc.Create(context.Background(), &model.Resource{Name: "Atlas", Type: "parking"}, admin)
	assertCode(t, err, apperrors.CodeValidation)
}

func TestExists_Unknown(t *testing.T) {
	svc := newTestService(nil)
	ok, err := svc.Exists(context.Background(), "missing")
	if err != nil || ok {
		t.Errorf("expected (false, nil), got (%v, %v)", ok, err)
	}
}

// ────────────────────────────────────────────────
// Update / Delete
// ────────────────────────────────────────────────

func TestUpdate_OwnerOrAdmin(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	res, err := svc.Create(ctx, &model.Resource{Name: "Atlas", Type: "room"}, admin)
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Update(ctx, res.ID, &model.ResourceUpdate{Name: "Borealis"}, alice)
	assertCode(t, err, apperrors.CodeForbidden)

	updated, err := svc.Update(ctx, res.ID, &model.ResourceUpdate{Type: "DESK"}, admin)
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.Name != "Atlas" || updated.Type != model.ResourceTypeDesk {
		t.Errorf("expected partial update, got %+v", updated)
	}

	_, err = svc.Update(ctx, "missing", &model.ResourceUpdate{Name: "x"}, admin)
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestDelete_RefusedWhileBooked(t *testing.T) {
	var lockedID string
	bookings := &mockBookingIndex{
		countByResourceFunc: func(ctx context.Context, resourceID string) (int64, error) {
			return 2, nil
		},
		withResourceLockFunc: func(ctx context.Context, resourceID string, fn func(context.Context) error) error {
			lockedID = resourceID
			return fn(ctx)
		},
	}
	svc := newTestService(bookings)
	ctx := context.Background()

	res, err := svc.Create(ctx, &model.Resource{Name: "Atlas", Type: "room"}, admin)
	if err != nil {
		t.Fatal(err)
	}

	err = svc.Delete(ctx, res.ID, admin)
	assertCode(t, err, apperrors.CodeConflict)
	if !errors.Is(err, resourceserrors.ErrHasBookings) {
		t.Errorf("expected ErrHasBookings cause, got %v", err)
	}
	if lockedID != res.ID {
		t.Errorf("expected delete to lock %s, locked %q", res.ID, lockedID)
	}
	if ok, _ := svc.Exists(ctx, res.ID); !ok {
		t.Error("resource must survive a refused delete")
	}
}

func TestDelete_Contention(t *testing.T) {
	bookings := &mockBookingIndex{
		withResourceLockFunc: func(ctx context.Context, resourceID string, fn func(context.Context) error) error {
			return fmt.Errorf("%w: %s", bookingserrors.ErrLockContention, resourceID)
		},
	}
	svc := newTestService(bookings)
	ctx := context.Background()

	res, err := svc.Create(ctx, &model.Resource{Name: "Atlas", Type: "room"}, admin)
	if err != nil {
		t.Fatal(err)
	}
	assertCode(t, svc.Delete(ctx, res.ID, admin), apperrors.CodeContention)
}

func TestDelete_WithRealBookingStore(t *testing.T) {
	store := bookingsrepo.NewMemoryBookingStore()
	svc := newTestService(store)
	ctx := context.Background()

	res, err := svc.Create(ctx, &model.Resource{Name: "Atlas", Type: "room"}, admin)
	if err != nil {
		t.Fatal(err)
	}

	day := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	if err := store.Insert(ctx, &model.Booking{
		ID:         "b1",
		ResourceID: res.ID,
		OwnerID:    alice.ID,
		StartTime:  day.Add(10 * time.Hour),
		EndTime:    day.Add(11 * time.Hour),
	}); err != nil {
		t.Fatal(err)
	}

	assertCode(t, svc.Delete(ctx, res.ID, alice), apperrors.CodeForbidden)
	assertCode(t, svc.Delete(ctx, res.ID, admin), apperrors.CodeConflict)

	if err := store.Remove(ctx, "b1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, res.ID, admin); err != nil {
		t.Fatalf("delete after bookings cleared: %v", err)
	}
	assertCode(t, svc.Delete(ctx, res.ID, admin), apperrors.CodeNotFound)
}

func TestGetAll(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	for _, name := range []string{"Charlie", "Alpha", "Bravo"} {
		if _, err := svc.Create(ctx, &model.Resource{Name: name, Type: "desk"}, admin); err != nil {
			t.Fatal(err)
		}
	}

	page, total, err := svc.GetAll(ctx, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(page) != 2 || page[0].Name != "Alpha" {
		t.Errorf("unexpected page: total=%d page=%v", total, page)
	}
}
