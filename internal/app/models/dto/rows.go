package dto

import "time"

// Wire-level row shapes mirroring the backend tables. Nullable columns are
// pointers; the mappers in internal/app/mappers convert rows to domain
// records and back and are the only place these shapes are interpreted.

// UserRow mirrors the 'users' table
type UserRow struct {
	ID          string     `json:"id" db:"id"`
	Email       string     `json:"email" db:"email"`
	Phone       *string    `json:"phone" db:"phone"`
	Name        string     `json:"name" db:"name"`
	AvatarURL   *string    `json:"avatar_url" db:"avatar_url"`
	Bio         *string    `json:"bio" db:"bio"`
	Goals       *string    `json:"goals" db:"goals"`
	ProviderID  *string    `json:"provider_id" db:"provider_id"`
	Mode        string     `json:"mode" db:"mode"`
	InterestIDs []string   `json:"interest_ids" db:"interest_ids"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at" db:"last_login_at"`
}

// EventRow mirrors the 'events' table
type EventRow struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	CreatorID   string    `json:"creator_id" db:"creator_id"`
	StatusID    string    `json:"status_id" db:"status_id"`
	Location    string    `json:"location" db:"location"`
	EventDate   time.Time `json:"event_date" db:"event_date"`
	ImageURL    *string   `json:"image_url" db:"image_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// AnnouncementRow mirrors the 'announcements' table
type AnnouncementRow struct {
	ID             string    `json:"id" db:"id"`
	Title          string    `json:"title" db:"title"`
	Description    string    `json:"description" db:"description"`
	CreatorID      string    `json:"creator_id" db:"creator_id"`
	StatusID       string    `json:"status_id" db:"status_id"`
	Location       string    `json:"location" db:"location"`
	ActivityTypeID string    `json:"activity_type_id" db:"activity_type_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// EventParticipantRow mirrors the 'event_participants' table. The columns are
// NOT NULL in the schema; pointers here let the mapper fail fast with a
// descriptive error on a contract breach instead of silently defaulting.
type EventParticipantRow struct {
	EventID  *string    `json:"event_id" db:"event_id"`
	UserID   *string    `json:"user_id" db:"user_id"`
	JoinedAt *time.Time `json:"joined_at" db:"joined_at"`
}

// ChatRow mirrors the 'chats' table. The per-viewer unread count is derived
// at read time from chat_participants.last_read_at and is never stored.
type ChatRow struct {
	ID             string     `json:"id" db:"id"`
	ChatType       string     `json:"chat_type" db:"chat_type"`
	EventID        *string    `json:"event_id" db:"event_id"`
	ParticipantIDs []string   `json:"participant_ids" db:"participant_ids"`
	LastMessage    *string    `json:"last_message" db:"last_message"`
	LastMessageAt  *time.Time `json:"last_message_at" db:"last_message_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// MessageRow mirrors the 'messages' table
type MessageRow struct {
	ID        string    `json:"id" db:"id"`
	TempID    *string   `json:"temp_id" db:"temp_id"`
	ChatID    string    `json:"chat_id" db:"chat_id"`
	SenderID  string    `json:"sender_id" db:"sender_id"`
	Content   string    `json:"content" db:"content"`
	DeletedBy []string  `json:"deleted_by" db:"deleted_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ChatParticipantRow mirrors the 'chat_participants' table
type ChatParticipantRow struct {
	ChatID     string     `json:"chat_id" db:"chat_id"`
	UserID     string     `json:"user_id" db:"user_id"`
	IsMuted    bool       `json:"is_muted" db:"is_muted"`
	LastReadAt *time.Time `json:"last_read_at" db:"last_read_at"`
	JoinedAt   time.Time  `json:"joined_at" db:"joined_at"`
}

// NotificationRow mirrors the 'notifications' table
type NotificationRow struct {
	ID               string    `json:"id" db:"id"`
	UserID           string    `json:"user_id" db:"user_id"`
	NotificationType string    `json:"notification_type" db:"notification_type"`
	Title            string    `json:"title" db:"title"`
	Body             string    `json:"body" db:"body"`
	RelatedID        *string   `json:"related_id" db:"related_id"`
	IsRead           bool      `json:"is_read" db:"is_read"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// ReportRow mirrors the 'reports' table
type ReportRow struct {
	ID          string    `json:"id" db:"id"`
	ReporterID  string    `json:"reporter_id" db:"reporter_id"`
	ContentType string    `json:"content_type" db:"content_type"`
	ContentID   string    `json:"content_id" db:"content_id"`
	Reason      string    `json:"reason" db:"reason"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// StatusRow mirrors the 'statuses' lookup table
type StatusRow struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// ActivityTypeRow mirrors the 'activity_types' lookup table
type ActivityTypeRow struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// InterestRow mirrors the 'interests' lookup table
type InterestRow struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
