package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/walkandtalk/walktalk/internal/app/mappers"
	"github.com/walkandtalk/walktalk/internal/app/models"
	"github.com/walkandtalk/walktalk/internal/app/models/dto"
	"github.com/walkandtalk/walktalk/internal/realtime"
)

// NotificationRepository stores notifications and fans out newly created ones
// to live subscribers through the realtime hub.
type NotificationRepository interface {
	ForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	Create(ctx context.Context, notification models.Notification) (*models.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	// Subscribe registers a live listener for one user's new notifications.
	// The returned function unsubscribes and is safe to call more than once.
	Subscribe(userID string, fn func(models.Notification)) func()
}

// PgNotificationRepository implements NotificationRepository over Postgres
type PgNotificationRepository struct {
	db  *pgxpool.Pool
	hub *realtime.Hub
}

var _ NotificationRepository = (*PgNotificationRepository)(nil)

// NewNotificationRepository creates a new PgNotificationRepository
func NewNotificationRepository(db *pgxpool.Pool, hub *realtime.Hub) *PgNotificationRepository {
	return &PgNotificationRepository{db: db, hub: hub}
}

const notificationColumns = "id, user_id, notification_type, title, body, related_id, is_read, created_at"

func scanNotificationRow(row pgx.Row) (dto.NotificationRow, error) {
	var r dto.NotificationRow
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.NotificationType,
		&r.Title,
		&r.Body,
		&r.RelatedID,
		&r.IsRead,
		&r.CreatedAt,
	)
	return r, err
}

// ForUser retrieves the user's notifications, newest first
func (r *PgNotificationRepository) ForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf("SELECT %s FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2", notificationColumns)
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		row, err := scanNotificationRow(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning notification row: %w", err)
		}
		notification, err := mappers.NotificationToDomain(row)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}
	return notifications, nil
}

// Create persists a notification and publishes it to the recipient's topic
func (r *PgNotificationRepository) Create(ctx context.Context, notification models.Notification) (*models.Notification, error) {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}

	row := mappers.NotificationToRow(notification)
	err := r.db.QueryRow(ctx,
		"INSERT INTO notifications (id, user_id, notification_type, title, body, related_id, is_read) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at",
		row.ID, row.UserID, row.NotificationType, row.Title, row.Body, row.RelatedID, row.IsRead,
	).Scan(&notification.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating notification: %w", err)
	}

	r.hub.Publish(realtime.UserTopic(notification.UserID), notification)
	return &notification, nil
}

// MarkRead marks one notification read, scoped to its owner
func (r *PgNotificationRepository) MarkRead(ctx context.Context, notificationID, userID string) error {
	result, err := r.db.Exec(ctx,
		"UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2",
		notificationID, userID,
	)
	if err != nil {
		return fmt.Errorf("error marking notification read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification %s not found for user %s", notificationID, userID)
	}
	return nil
}

// MarkAllRead marks every unread notification of a user read
func (r *PgNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx,
		"UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE",
		userID,
	)
	if err != nil {
		return fmt.Errorf("error marking notifications read: %w", err)
	}
	return nil
}

// Subscribe attaches fn to the user's notification topic
func (r *PgNotificationRepository) Subscribe(userID string, fn func(models.Notification)) func() {
	return r.hub.Subscribe(realtime.UserTopic(userID), func(payload interface{}) {
		if notification, ok := payload.(models.Notification); ok {
			fn(notification)
		}
	})
}
