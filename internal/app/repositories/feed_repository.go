package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/walkandtalk/walktalk/internal/app/mappers"
	"github.com/walkandtalk/walktalk/internal/app/models"
	"github.com/walkandtalk/walktalk/internal/app/models/dto"
	"github.com/walkandtalk/walktalk/internal/pkg/dberrors"
)

// FeedRepository serves the social feed: events and announcements and event
// participation. Fetches return empty results for absence; mutations are
// atomic at this boundary.
type FeedRepository interface {
	Feed(ctx context.Context, limit int) ([]models.FeedItem, error)
	EventByID(ctx context.Context, id string) (*models.Event, error)
	SearchEvents(ctx context.Context, query string, limit int) ([]models.Event, error)
	CreateEvent(ctx context.Context, event models.Event) (*models.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	CreateAnnouncement(ctx context.Context, a models.Announcement) (*models.Announcement, error)
	DeleteAnnouncement(ctx context.Context, id string) error
	JoinEvent(ctx context.Context, eventID, userID string) error
	LeaveEvent(ctx context.Context, eventID, userID string) error
	EventParticipants(ctx context.Context, eventID string) ([]models.EventParticipant, error)
}

// PgFeedRepository implements FeedRepository over Postgres
type PgFeedRepository struct {
	db      *pgxpool.Pool
	lookups LookupRepository
}

var _ FeedRepository = (*PgFeedRepository)(nil)

// NewFeedRepository creates a new PgFeedRepository
func NewFeedRepository(db *pgxpool.Pool, lookups LookupRepository) *PgFeedRepository {
	return &PgFeedRepository{db: db, lookups: lookups}
}

const eventColumns = "e.id, e.title, e.description, e.creator_id, e.status_id, e.location, e.event_date, e.image_url, e.created_at"

// Feed returns the merged feed of events and announcements, newest first.
func (r *PgFeedRepository) Feed(ctx context.Context, limit int) ([]models.FeedItem, error) {
	events, err := r.recentEvents(ctx, limit)
	if err != nil {
		return nil, err
	}
	announcements, err := r.recentAnnouncements(ctx, limit)
	if err != nil {
		return nil, err
	}

	items := make([]models.FeedItem, 0, len(events)+len(announcements))
	for _, e := range events {
		items = append(items, e)
	}
	for _, a := range announcements {
		items = append(items, a)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].FeedCreatedAt().After(items[j].FeedCreatedAt())
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (r *PgFeedRepository) recentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	builder := squirrel.Select(eventColumns, "s.name AS status_name").
		From("events e").
		Join("statuses s ON e.status_id = s.id").
		OrderBy("e.created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var row dto.EventRow
		var statusName string
		if err := rows.Scan(
			&row.ID, &row.Title, &row.Description, &row.CreatorID, &row.StatusID,
			&row.Location, &row.EventDate, &row.ImageURL, &row.CreatedAt, &statusName,
		); err != nil {
			return nil, fmt.Errorf("error scanning event row: %w", err)
		}
		event, err := mappers.EventToDomain(row, statusName)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, nil
}

func (r *PgFeedRepository) recentAnnouncements(ctx context.Context, limit int) ([]models.Announcement, error) {
	builder := squirrel.Select(
		"a.id", "a.title", "a.description", "a.creator_id", "a.status_id",
		"a.location", "a.activity_type_id", "a.created_at",
		"s.name AS status_name", "at.name AS activity_type_name",
	).
		From("announcements a").
		Join("statuses s ON a.status_id = s.id").
		Join("activity_types at ON a.activity_type_id = at.id").
		OrderBy("a.created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var announcements []models.Announcement
	for rows.Next() {
		var row dto.AnnouncementRow
		var statusName, activityTypeName string
		if err := rows.Scan(
			&row.ID, &row.Title, &row.Description, &row.CreatorID, &row.StatusID,
			&row.Location, &row.ActivityTypeID, &row.CreatedAt, &statusName, &activityTypeName,
		); err != nil {
			return nil, fmt.Errorf("error scanning announcement row: %w", err)
		}
		announcement, err := mappers.AnnouncementToDomain(row, statusName, activityTypeName)
		if err != nil {
			return nil, err
		}
		announcements = append(announcements, announcement)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating announcement rows: %w", err)
	}
	return announcements, nil
}

// EventByID retrieves an event, or (nil, nil) when absent
func (r *PgFeedRepository) EventByID(ctx context.Context, id string) (*models.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s, s.name
		FROM events e
		JOIN statuses s ON e.status_id = s.id
		WHERE e.id = $1
	`, eventColumns)

	var row dto.EventRow
	var statusName string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&row.ID, &row.Title, &row.Description, &row.CreatorID, &row.StatusID,
		&row.Location, &row.EventDate, &row.ImageURL, &row.CreatedAt, &statusName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving event: %w", err)
	}

	event, err := mappers.EventToDomain(row, statusName)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// SearchEvents retrieves events matching the query on title or location
func (r *PgFeedRepository) SearchEvents(ctx context.Context, query string, limit int) ([]models.Event, error) {
	builder := squirrel.Select(eventColumns, "s.name AS status_name").
		From("events e").
		Join("statuses s ON e.status_id = s.id").
		Where("e.title ILIKE ? OR e.location ILIKE ?", "%"+query+"%", "%"+query+"%").
		OrderBy("e.event_date ASC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var row dto.EventRow
		var statusName string
		if err := rows.Scan(
			&row.ID, &row.Title, &row.Description, &row.CreatorID, &row.StatusID,
			&row.Location, &row.EventDate, &row.ImageURL, &row.CreatedAt, &statusName,
		); err != nil {
			return nil, fmt.Errorf("error scanning event row: %w", err)
		}
		event, err := mappers.EventToDomain(row, statusName)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, nil
}

// CreateEvent inserts a new event and returns the stored record
func (r *PgFeedRepository) CreateEvent(ctx context.Context, event models.Event) (*models.Event, error) {
	statusID, err := r.lookups.StatusIDByName(ctx, event.Status)
	if err != nil {
		return nil, err
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	row := mappers.EventToRow(event, statusID)

	query := `
		INSERT INTO events (id, title, description, creator_id, status_id, location, event_date, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err = r.db.QueryRow(ctx, query,
		row.ID, row.Title, row.Description, row.CreatorID, row.StatusID,
		row.Location, row.EventDate, row.ImageURL,
	).Scan(&event.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating event: %w", err)
	}
	return &event, nil
}

// DeleteEvent hard-deletes an event
func (r *PgFeedRepository) DeleteEvent(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, "DELETE FROM events WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("error deleting event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("no event found with ID %s", id)
	}
	return nil
}

// CreateAnnouncement inserts a new announcement and returns the stored record
func (r *PgFeedRepository) CreateAnnouncement(ctx context.Context, a models.Announcement) (*models.Announcement, error) {
	statusID, err := r.lookups.StatusIDByName(ctx, a.Status)
	if err != nil {
		return nil, err
	}
	activityTypeID, err := r.lookups.ActivityTypeIDByName(ctx, a.ActivityType)
	if err != nil {
		return nil, err
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	row := mappers.AnnouncementToRow(a, statusID, activityTypeID)

	query := `
		INSERT INTO announcements (id, title, description, creator_id, status_id, location, activity_type_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err = r.db.QueryRow(ctx, query,
		row.ID, row.Title, row.Description, row.CreatorID, row.StatusID,
		row.Location, row.ActivityTypeID,
	).Scan(&a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating announcement: %w", err)
	}
	return &a, nil
}

// DeleteAnnouncement hard-deletes an announcement
func (r *PgFeedRepository) DeleteAnnouncement(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, "DELETE FROM announcements WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("error deleting announcement: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("no announcement found with ID %s", id)
	}
	return nil
}

// JoinEvent records a user's participation in an event
func (r *PgFeedRepository) JoinEvent(ctx context.Context, eventID, userID string) error {
	_, err := r.db.Exec(ctx,
		"INSERT INTO event_participants (event_id, user_id) VALUES ($1, $2)",
		eventID, userID,
	)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "event_participants_pkey") {
			return fmt.Errorf("user %s already joined event %s", userID, eventID)
		}
		return fmt.Errorf("error joining event: %w", err)
	}
	return nil
}

// LeaveEvent removes a user's participation from an event
func (r *PgFeedRepository) LeaveEvent(ctx context.Context, eventID, userID string) error {
	_, err := r.db.Exec(ctx,
		"DELETE FROM event_participants WHERE event_id = $1 AND user_id = $2",
		eventID, userID,
	)
	if err != nil {
		return fmt.Errorf("error leaving event: %w", err)
	}
	return nil
}

// EventParticipants retrieves all participants of an event
func (r *PgFeedRepository) EventParticipants(ctx context.Context, eventID string) ([]models.EventParticipant, error) {
	rows, err := r.db.Query(ctx,
		"SELECT event_id, user_id, joined_at FROM event_participants WHERE event_id = $1 ORDER BY joined_at ASC",
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var participants []models.EventParticipant
	for rows.Next() {
		var row dto.EventParticipantRow
		if err := rows.Scan(&row.EventID, &row.UserID, &row.JoinedAt); err != nil {
			return nil, fmt.Errorf("error scanning participant row: %w", err)
		}
		participant, err := mappers.EventParticipantToDomain(row)
		if err != nil {
			return nil, err
		}
		participants = append(participants, participant)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}
	return participants, nil
}
