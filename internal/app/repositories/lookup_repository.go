package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/walkandtalk/walktalk/internal/app/models"
)

// LookupRepository resolves the small lookup tables (statuses, activity
// types, interests) between ids and names. Repositories use it to supply the
// auxiliary values the mappers require.
type LookupRepository interface {
	StatusIDByName(ctx context.Context, name string) (string, error)
	StatusNameByID(ctx context.Context, id string) (string, error)
	ActivityTypeIDByName(ctx context.Context, name string) (string, error)
	ActivityTypeNameByID(ctx context.Context, id string) (string, error)
	Interests(ctx context.Context) ([]models.Interest, error)
}

// PgLookupRepository implements LookupRepository over Postgres
type PgLookupRepository struct {
	db *pgxpool.Pool
}

var _ LookupRepository = (*PgLookupRepository)(nil)

// NewLookupRepository creates a new PgLookupRepository
func NewLookupRepository(db *pgxpool.Pool) *PgLookupRepository {
	return &PgLookupRepository{db: db}
}

func (r *PgLookupRepository) lookup(ctx context.Context, query, key string) (string, error) {
	var value string
	err := r.db.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("no lookup row for %q", key)
		}
		return "", fmt.Errorf("error resolving lookup: %w", err)
	}
	return value, nil
}

// StatusIDByName resolves a status name to its id
func (r *PgLookupRepository) StatusIDByName(ctx context.Context, name string) (string, error) {
	return r.lookup(ctx, "SELECT id FROM statuses WHERE name = $1", name)
}

// StatusNameByID resolves a status id to its name
func (r *PgLookupRepository) StatusNameByID(ctx context.Context, id string) (string, error) {
	return r.lookup(ctx, "SELECT name FROM statuses WHERE id = $1", id)
}

// ActivityTypeIDByName resolves an activity-type name to its id
func (r *PgLookupRepository) ActivityTypeIDByName(ctx context.Context, name string) (string, error) {
	return r.lookup(ctx, "SELECT id FROM activity_types WHERE name = $1", name)
}

// ActivityTypeNameByID resolves an activity-type id to its name
func (r *PgLookupRepository) ActivityTypeNameByID(ctx context.Context, id string) (string, error) {
	return r.lookup(ctx, "SELECT name FROM activity_types WHERE id = $1", id)
}

// Interests retrieves the selectable interests
func (r *PgLookupRepository) Interests(ctx context.Context) ([]models.Interest, error) {
	rows, err := r.db.Query(ctx, "SELECT id, name FROM interests ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var interests []models.Interest
	for rows.Next() {
		var interest models.Interest
		if err := rows.Scan(&interest.ID, &interest.Name); err != nil {
			return nil, fmt.Errorf("error scanning interest row: %w", err)
		}
		interests = append(interests, interest)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interest rows: %w", err)
	}
	return interests, nil
}
