// Package seed populates the lookup tables the app depends on.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// CreateDefaultData inserts the default statuses, activity types and
// interests if they don't exist. Safe to run on every startup.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default lookup data...")

	var finalErr error

	statuses := []string{"ACTIVE", "CANCELLED", "COMPLETED"}
	if err := upsertNames(ctx, dbPool, "statuses", statuses); err != nil {
		lgr.Error().Err(err).Msg("Error seeding statuses")
		finalErr = errors.Join(finalErr, err)
	}

	activityTypes := []string{"WALK", "RUN", "HIKE", "CYCLE"}
	if err := upsertNames(ctx, dbPool, "activity_types", activityTypes); err != nil {
		lgr.Error().Err(err).Msg("Error seeding activity types")
		finalErr = errors.Join(finalErr, err)
	}

	interests := []string{
		"Nature", "Fitness", "Photography", "Dogs",
		"Running", "Meditation", "History", "Food",
	}
	if err := upsertNames(ctx, dbPool, "interests", interests); err != nil {
		lgr.Error().Err(err).Msg("Error seeding interests")
		finalErr = errors.Join(finalErr, err)
	}

	return finalErr
}

// upsertNames inserts each name with a fresh id, leaving existing rows alone
func upsertNames(ctx context.Context, dbPool *pgxpool.Pool, table string, names []string) error {
	query := fmt.Sprintf("INSERT INTO %s (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING", table)
	for _, name := range names {
		if _, err := dbPool.Exec(ctx, query, uuid.NewString(), name); err != nil {
			return fmt.Errorf("error seeding %s %q: %w", table, name, err)
		}
	}
	return nil
}
