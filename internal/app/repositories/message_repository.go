package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/walkandtalk/walktalk/internal/app/mappers"
	"github.com/walkandtalk/walktalk/internal/app/models"
	"github.com/walkandtalk/walktalk/internal/app/models/dto"
)

// MessageRepository stores chat messages. Deletion is per-user: deleting a
// message only hides it from the deleting user, the row itself stays.
type MessageRepository interface {
	MessagesForViewer(ctx context.Context, chatID, viewerID string, limit int) ([]models.Message, error)
	MessageByID(ctx context.Context, messageID string) (*models.Message, error)
	Send(ctx context.Context, message models.Message) (*models.Message, error)
	DeleteForUser(ctx context.Context, messageID, userID string) error
}

// PgMessageRepository implements MessageRepository over Postgres
type PgMessageRepository struct {
	db *pgxpool.Pool
}

var _ MessageRepository = (*PgMessageRepository)(nil)

// NewMessageRepository creates a new PgMessageRepository
func NewMessageRepository(db *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{db: db}
}

const messageColumns = "id, chat_id, sender_id, content, temp_id, deleted_by, created_at"

func scanMessageRow(row pgx.Row) (dto.MessageRow, error) {
	var r dto.MessageRow
	err := row.Scan(
		&r.ID,
		&r.ChatID,
		&r.SenderID,
		&r.Content,
		&r.TempID,
		&r.DeletedBy,
		&r.CreatedAt,
	)
	return r, err
}

// MessagesForViewer retrieves the newest messages of a chat, oldest first,
// excluding the ones the viewer deleted for themselves.
func (r *PgMessageRepository) MessagesForViewer(ctx context.Context, chatID, viewerID string, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`
		SELECT %s FROM (
			SELECT %s FROM messages
			WHERE chat_id = $1 AND NOT (deleted_by @> ARRAY[$2]::text[])
			ORDER BY created_at DESC
			LIMIT $3
		) recent
		ORDER BY created_at ASC
	`, messageColumns, messageColumns)

	rows, err := r.db.Query(ctx, query, chatID, viewerID, limit)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		row, err := scanMessageRow(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}
		message, err := mappers.MessageToDomain(row)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}
	return messages, nil
}

// MessageByID retrieves one message, or (nil, nil) when absent
func (r *PgMessageRepository) MessageByID(ctx context.Context, messageID string) (*models.Message, error) {
	query := fmt.Sprintf("SELECT %s FROM messages WHERE id = $1", messageColumns)

	row, err := scanMessageRow(r.db.QueryRow(ctx, query, messageID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving message: %w", err)
	}

	message, err := mappers.MessageToDomain(row)
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// Send persists a message. The client-assigned temp ID is stored alongside
// the server ID so optimistic local copies can be reconciled.
func (r *PgMessageRepository) Send(ctx context.Context, message models.Message) (*models.Message, error) {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	row := mappers.MessageToRow(message)
	err := r.db.QueryRow(ctx,
		"INSERT INTO messages (id, chat_id, sender_id, content, temp_id) VALUES ($1, $2, $3, $4, $5) RETURNING created_at",
		row.ID, row.ChatID, row.SenderID, row.Content, row.TempID,
	).Scan(&message.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating message: %w", err)
	}
	return &message, nil
}

// DeleteForUser hides the message from one user by appending them to the
// tombstone list. Idempotent for repeated deletes by the same user.
func (r *PgMessageRepository) DeleteForUser(ctx context.Context, messageID, userID string) error {
	_, err := r.db.Exec(ctx,
		"UPDATE messages SET deleted_by = array_append(deleted_by, $2) WHERE id = $1 AND NOT (deleted_by @> ARRAY[$2]::text[])",
		messageID, userID,
	)
	if err != nil {
		return fmt.Errorf("error deleting message for user: %w", err)
	}
	return nil
}
