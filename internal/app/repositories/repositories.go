package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/walkandtalk/walktalk/internal/realtime"
)

// Repositories bundles every repository for injection
type Repositories struct {
	Users         UserRepository
	Lookups       LookupRepository
	Feed          FeedRepository
	Chats         ChatRepository
	Messages      MessageRepository
	Notifications NotificationRepository
	Reports       ReportRepository
	Tokens        TokenRepository
}

// NewRepositories wires all repositories to one connection pool
func NewRepositories(db *pgxpool.Pool, hub *realtime.Hub) *Repositories {
	lookups := NewLookupRepository(db)
	return &Repositories{
		Users:         NewUserRepository(db),
		Lookups:       lookups,
		Feed:          NewFeedRepository(db, lookups),
		Chats:         NewChatRepository(db),
		Messages:      NewMessageRepository(db),
		Notifications: NewNotificationRepository(db, hub),
		Reports:       NewReportRepository(db),
		Tokens:        NewTokenRepository(db),
	}
}
