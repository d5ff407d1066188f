package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	resourceserrors "spacebook/internal/resources/errors"
	"spacebook/pkg/db/sqlite"
	"spacebook/pkg/model"
)

const resourcesSchema = `
CREATE TABLE IF NOT EXISTS resources (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	name       TEXT NOT NULL,
	type       TEXT NOT NULL CHECK (type IN ('room', 'desk')),
	created_at INTEGER NOT NULL
) STRICT;

CREATE INDEX IF NOT EXISTS resources_name_idx ON resources (name, id);
`

type sqliteResourceRepository struct {
	db *sql.DB
}

// MigrateSQLite applies the resources schema. It is idempotent.
func MigrateSQLite(db *sql.DB) error {
	return sqlite.Migrate(db, resourcesSchema)
}

// NewSQLiteResourceRepository shares db with the booking store, so calls made
// inside a booking transaction see the same snapshot.
func NewSQLiteResourceRepository(db *sql.DB) ResourceRepository {
	sqlite.MustMigrate(db, resourcesSchema)
	return &sqliteResourceRepository{db: db}
}

func (s *sqliteResourceRepository) Create(ctx context.Context, r *model.Resource) error {
	_, err := sqlite.Conn(ctx, s.db).ExecContext(ctx,
		`INSERT INTO resources (id, owner_id, name, type, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.OwnerID, r.Name, r.Type, r.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}
	return nil
}

func (s *sqliteResourceRepository) FindByID(ctx context.Context, id string) (*model.Resource, error) {
	row := sqlite.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, owner_id, name, type, created_at FROM resources WHERE id = ?`, id)
	r, err := scanResource(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", resourceserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find resource: %w", err)
	}
	return r, nil
}

func (s *sqliteResourceRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Resource, error) {
	rows, err := sqlite.Conn(ctx, s.db).QueryContext(ctx,
		`SELECT id, owner_id, name, type, created_at FROM resources ORDER BY name, id LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query resources: %w", err)
	}
	defer rows.Close()

	resources := []*model.Resource{}
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to decode resource: %w", err)
		}
		resources = append(resources, r)
	}
	return resources, rows.Err()
}

func (s *sqliteResourceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := sqlite.Conn(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM resources`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count resources: %w", err)
	}
	return count, nil
}

func (s *sqliteResourceRepository) Update(ctx context.Context, r *model.Resource) error {
	result, err := sqlite.Conn(ctx, s.db).ExecContext(ctx,
		`UPDATE resources SET name = ?, type = ? WHERE id = ?`, r.Name, r.Type, r.ID)
	if err != nil {
		return fmt.Errorf("failed to update resource: %w", err)
	}
	return requireAffected(result, r.ID)
}

func (s *sqliteResourceRepository) Delete(ctx context.Context, id string) error {
	result, err := sqlite.Conn(ctx, s.db).ExecContext(ctx, `DELETE FROM resources WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}
	return requireAffected(result, id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResource(row scanner) (*model.Resource, error) {
	var (
		r         model.Resource
		createdAt int64
	)
	if err := row.Scan(&r.ID, &r.OwnerID, &r.Name, &r.Type, &createdAt); err != nil {
		return nil, err
	}
	r.CreatedAt = time.Unix(0, createdAt).UTC()
	return &r, nil
}

func requireAffected(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", resourceserrors.ErrNotFound, id)
	}
	return nil
}
