package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/walkandtalk/walktalk/internal/app/mappers"
	"github.com/walkandtalk/walktalk/internal/app/models"
	"github.com/walkandtalk/walktalk/internal/app/models/dto"
)

// ChatRepository serves conversations and per-user participation state. The
// unread count is always derived from chat_participants.last_read_at against
// message timestamps at read time; there is no stored counter to go stale.
type ChatRepository interface {
	ChatsForUser(ctx context.Context, userID string) ([]models.Chat, error)
	ChatByID(ctx context.Context, chatID, viewerID string) (*models.Chat, error)
	CreatePrivateChat(ctx context.Context, userA, userB string) (*models.Chat, error)
	CreateGroupChat(ctx context.Context, eventID string, participantIDs []string) (*models.Chat, error)
	Participant(ctx context.Context, chatID, userID string) (*models.ChatParticipant, error)
	SetMuted(ctx context.Context, chatID, userID string, muted bool) error
	MarkRead(ctx context.Context, chatID, userID string, at time.Time) error
}

// PgChatRepository implements ChatRepository over Postgres
type PgChatRepository struct {
	db *pgxpool.Pool
}

var _ ChatRepository = (*PgChatRepository)(nil)

// NewChatRepository creates a new PgChatRepository
func NewChatRepository(db *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{db: db}
}

// unreadCountQuery counts messages the viewer has not read yet, skipping the
// viewer's own messages and the ones they soft-deleted.
const unreadCountQuery = `
	SELECT COUNT(*)
	FROM messages m
	WHERE m.chat_id = $1
	  AND m.sender_id <> $2
	  AND NOT (m.deleted_by @> ARRAY[$2]::text[])
	  AND m.created_at > COALESCE(
		(SELECT cp.last_read_at FROM chat_participants cp WHERE cp.chat_id = $1 AND cp.user_id = $2),
		'epoch'::timestamptz
	  )
`

func (r *PgChatRepository) unreadCount(ctx context.Context, chatID, viewerID string) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, unreadCountQuery, chatID, viewerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("error deriving unread count: %w", err)
	}
	return count, nil
}

const chatSelect = `
	SELECT c.id, c.chat_type, c.event_id,
	       ARRAY(SELECT cp2.user_id FROM chat_participants cp2 WHERE cp2.chat_id = c.id ORDER BY cp2.joined_at) AS participant_ids,
	       lm.content, lm.created_at, c.created_at
	FROM chats c
	LEFT JOIN LATERAL (
		SELECT content, created_at FROM messages m
		WHERE m.chat_id = c.id
		ORDER BY m.created_at DESC
		LIMIT 1
	) lm ON TRUE
`

func scanChatRow(row pgx.Row) (dto.ChatRow, error) {
	var r dto.ChatRow
	err := row.Scan(
		&r.ID,
		&r.ChatType,
		&r.EventID,
		&r.ParticipantIDs,
		&r.LastMessage,
		&r.LastMessageAt,
		&r.CreatedAt,
	)
	return r, err
}

// ChatsForUser retrieves the user's chats with last-message preview and the
// viewer's derived unread count, most recently active first.
func (r *PgChatRepository) ChatsForUser(ctx context.Context, userID string) ([]models.Chat, error) {
	query := chatSelect + `
	WHERE EXISTS (SELECT 1 FROM chat_participants cp WHERE cp.chat_id = c.id AND cp.user_id = $1)
	ORDER BY COALESCE(lm.created_at, c.created_at) DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var chatRows []dto.ChatRow
	for rows.Next() {
		row, err := scanChatRow(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning chat row: %w", err)
		}
		chatRows = append(chatRows, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat rows: %w", err)
	}

	var chats []models.Chat
	for _, row := range chatRows {
		unread, err := r.unreadCount(ctx, row.ID, userID)
		if err != nil {
			return nil, err
		}
		chat, err := mappers.ChatToDomain(row, unread)
		if err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	return chats, nil
}

// ChatByID retrieves one chat with the viewer's unread count, or (nil, nil)
// when absent
func (r *PgChatRepository) ChatByID(ctx context.Context, chatID, viewerID string) (*models.Chat, error) {
	query := chatSelect + " WHERE c.id = $1"

	row, err := scanChatRow(r.db.QueryRow(ctx, query, chatID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving chat: %w", err)
	}

	unread, err := r.unreadCount(ctx, chatID, viewerID)
	if err != nil {
		return nil, err
	}
	chat, err := mappers.ChatToDomain(row, unread)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// CreatePrivateChat creates a two-party chat and both participant records in
// one transaction.
func (r *PgChatRepository) CreatePrivateChat(ctx context.Context, userA, userB string) (*models.Chat, error) {
	return r.createChat(ctx, models.ChatTypePrivate, nil, []string{userA, userB})
}

// CreateGroupChat creates the chat bound to an event together with its
// initial participant records.
func (r *PgChatRepository) CreateGroupChat(ctx context.Context, eventID string, participantIDs []string) (*models.Chat, error) {
	return r.createChat(ctx, models.ChatTypeGroup, &eventID, participantIDs)
}

func (r *PgChatRepository) createChat(ctx context.Context, chatType models.ChatType, eventID *string, participantIDs []string) (*models.Chat, error) {
	if chatType == models.ChatTypePrivate && len(participantIDs) != 2 {
		return nil, fmt.Errorf("private chat requires exactly 2 participants, got %d", len(participantIDs))
	}

	chatID := uuid.New().String()
	var createdAt time.Time

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("error beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx,
		"INSERT INTO chats (id, chat_type, event_id) VALUES ($1, $2, $3) RETURNING created_at",
		chatID, string(chatType), eventID,
	).Scan(&createdAt)
	if err != nil {
		return nil, fmt.Errorf("error creating chat: %w", err)
	}

	for _, userID := range participantIDs {
		if _, err := tx.Exec(ctx,
			"INSERT INTO chat_participants (chat_id, user_id) VALUES ($1, $2)",
			chatID, userID,
		); err != nil {
			return nil, fmt.Errorf("error adding chat participant: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("error committing transaction: %w", err)
	}

	chat := models.Chat{
		ID:             chatID,
		Type:           chatType,
		EventID:        eventID,
		ParticipantIDs: participantIDs,
		CreatedAt:      createdAt,
	}
	return &chat, nil
}

// Participant retrieves one participation record, or (nil, nil) when absent
func (r *PgChatRepository) Participant(ctx context.Context, chatID, userID string) (*models.ChatParticipant, error) {
	var row dto.ChatParticipantRow
	err := r.db.QueryRow(ctx,
		"SELECT chat_id, user_id, is_muted, last_read_at, joined_at FROM chat_participants WHERE chat_id = $1 AND user_id = $2",
		chatID, userID,
	).Scan(&row.ChatID, &row.UserID, &row.IsMuted, &row.LastReadAt, &row.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving chat participant: %w", err)
	}

	participant, err := mappers.ChatParticipantToDomain(row)
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

// SetMuted flips the viewer's mute flag for a chat
func (r *PgChatRepository) SetMuted(ctx context.Context, chatID, userID string, muted bool) error {
	result, err := r.db.Exec(ctx,
		"UPDATE chat_participants SET is_muted = $3 WHERE chat_id = $1 AND user_id = $2",
		chatID, userID, muted,
	)
	if err != nil {
		return fmt.Errorf("error updating mute flag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s is not a participant of chat %s", userID, chatID)
	}
	return nil
}

// MarkRead advances the viewer's last-read watermark
func (r *PgChatRepository) MarkRead(ctx context.Context, chatID, userID string, at time.Time) error {
	_, err := r.db.Exec(ctx,
		"UPDATE chat_participants SET last_read_at = $3 WHERE chat_id = $1 AND user_id = $2 AND (last_read_at IS NULL OR last_read_at < $3)",
		chatID, userID, at,
	)
	if err != nil {
		return fmt.Errorf("error marking chat read: %w", err)
	}
	return nil
}
