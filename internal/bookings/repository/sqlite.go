package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	bookingserrors "spacebook/internal/bookings/errors"
	"spacebook/pkg/db/sqlite"
	"spacebook/pkg/locks"
	"spacebook/pkg/model"
)

// The triggers reject overlapping rows even if a caller skips WithResourceLock.
const bookingsSchema = `
CREATE TABLE IF NOT EXISTS bookings (
	id          TEXT PRIMARY KEY,
	resource_id TEXT NOT NULL,
	owner_id    TEXT NOT NULL,
	start_time  INTEGER NOT NULL,
	end_time    INTEGER NOT NULL,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL DEFAULT 0,
	CHECK (start_time < end_time)
) STRICT;

CREATE INDEX IF NOT EXISTS bookings_resource_start_idx ON bookings (resource_id, start_time);

CREATE TRIGGER IF NOT EXISTS bookings_no_overlap_insert
BEFORE INSERT ON bookings
WHEN EXISTS (
	SELECT 1 FROM bookings
	WHERE resource_id = NEW.resource_id
	  AND start_time < NEW.end_time
	  AND NEW.start_time < end_time
)
BEGIN
	SELECT RAISE(ABORT, 'booking_overlap');
END;

CREATE TRIGGER IF NOT EXISTS bookings_no_overlap_update
BEFORE UPDATE OF resource_id, start_time, end_time ON bookings
WHEN EXISTS (
	SELECT 1 FROM bookings
	WHERE resource_id = NEW.resource_id
	  AND id != NEW.id
	  AND start_time < NEW.end_time
	  AND NEW.start_time < end_time
)
BEGIN
	SELECT RAISE(ABORT, 'booking_overlap');
END;
`

const overlapViolation = "booking_overlap"

const bookingColumns = `id, resource_id, owner_id, start_time, end_time, created_at, updated_at`

type sqliteBookingStore struct {
	db    *sql.DB
	locks *locks.KeyedMutex
}

// MigrateSQLite applies the bookings schema, table, index and overlap
// triggers. It is idempotent.
func MigrateSQLite(db *sql.DB) error {
	return sqlite.Migrate(db, bookingsSchema)
}

// NewSQLiteBookingStore applies the bookings schema to db.
func NewSQLiteBookingStore(db *sql.DB) BookingStore {
	sqlite.MustMigrate(db, bookingsSchema)
	return &sqliteBookingStore{db: db, locks: locks.NewKeyedMutex()}
}

func (s *sqliteBookingStore) Get(ctx context.Context, id string) (*model.Booking, error) {
	row := sqlite.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)

	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return b, nil
}

func (s *sqliteBookingStore) ListByResourceAndDate(ctx context.Context, resourceID string, from, to time.Time) ([]*model.Booking, error) {
	return s.query(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE resource_id = ? AND start_time < ? AND end_time > ?
		 ORDER BY start_time, id`,
		resourceID, to.UnixNano(), from.UnixNano())
}

func (s *sqliteBookingStore) Insert(ctx context.Context, booking *model.Booking) error {
	_, err := sqlite.Conn(ctx, s.db).ExecContext(ctx,
		`INSERT INTO bookings (`+bookingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		booking.ID, booking.ResourceID, booking.OwnerID,
		booking.StartTime.UnixNano(), booking.EndTime.UnixNano(),
		booking.CreatedAt.UnixNano(), unixNanoOrZero(booking.UpdatedAt))
	if err != nil {
		return mapSQLiteError("failed to create booking", err)
	}
	return nil
}

func (s *sqliteBookingStore) Replace(ctx context.Context, booking *model.Booking) error {
	result, err := sqlite.Conn(ctx, s.db).ExecContext(ctx,
		`UPDATE bookings SET resource_id = ?, owner_id = ?, start_time = ?, end_time = ?, updated_at = ?
		 WHERE id = ?`,
		booking.ResourceID, booking.OwnerID,
		booking.StartTime.UnixNano(), booking.EndTime.UnixNano(),
		unixNanoOrZero(booking.UpdatedAt), booking.ID)
	if err != nil {
		return mapSQLiteError("failed to update booking", err)
	}
	return requireAffected(result)
}

func (s *sqliteBookingStore) Remove(ctx context.Context, id string) error {
	result, err := sqlite.Conn(ctx, s.db).ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return requireAffected(result)
}

func (s *sqliteBookingStore) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.query(ctx,
		`SELECT `+bookingColumns+` FROM bookings ORDER BY start_time, id LIMIT ? OFFSET ?`,
		limit, offset)
}

func (s *sqliteBookingStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := sqlite.Conn(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return n, nil
}

func (s *sqliteBookingStore) CountByResource(ctx context.Context, resourceID string) (int64, error) {
	var n int64
	err := sqlite.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE resource_id = ?`, resourceID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings by resource: %w", err)
	}
	return n, nil
}

func (s *sqliteBookingStore) WithResourceLock(ctx context.Context, resourceID string, fn func(ctx context.Context) error) error {
	unlock, err := s.locks.LockContext(ctx, resourceID)
	if err != nil {
		return err
	}
	defer unlock()

	return sqlite.WithTx(ctx, s.db, fn)
}

func (s *sqliteBookingStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqliteBookingStore) query(ctx context.Context, query string, args ...any) ([]*model.Booking, error) {
	rows, err := sqlite.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]*model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to decode bookings: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(row scanner) (*model.Booking, error) {
	var (
		b                            model.Booking
		start, end, created, updated int64
	)
	if err := row.Scan(&b.ID, &b.ResourceID, &b.OwnerID, &start, &end, &created, &updated); err != nil {
		return nil, err
	}
	b.StartTime = time.Unix(0, start).UTC()
	b.EndTime = time.Unix(0, end).UTC()
	b.CreatedAt = time.Unix(0, created).UTC()
	if updated != 0 {
		b.UpdatedAt = time.Unix(0, updated).UTC()
	}
	return &b, nil
}

func unixNanoOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

func mapSQLiteError(msg string, err error) error {
	if strings.Contains(err.Error(), overlapViolation) {
		return fmt.Errorf("%w: %v", bookingserrors.ErrTimeConflict, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
