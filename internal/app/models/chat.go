package models

import "time"

// ChatType discriminates group chats (bound to an event) from private ones
type ChatType string

const (
	ChatTypeGroup   ChatType = "GROUP"
	ChatTypePrivate ChatType = "PRIVATE"
)

// Chat is a conversation. Invariants: a GROUP chat has EventID set, a PRIVATE
// chat has exactly two participant ids. The mapper rejects rows that violate
// either.
type Chat struct {
	ID             string    `json:"id"`
	Type           ChatType  `json:"type"`
	EventID        *string   `json:"eventId,omitempty"`
	ParticipantIDs []string  `json:"participantIds"`
	LastMessage    *string   `json:"lastMessage,omitempty"`
	LastMessageAt  *time.Time `json:"lastMessageAt,omitempty"`
	UnreadCount    int       `json:"unreadCount"` // derived per viewer, never stored
	CreatedAt      time.Time `json:"createdAt"`
}

// Message belongs to exactly one chat. TempID carries the client-generated id
// of an optimistic send until the durable id comes back. DeletedBy is a
// per-user tombstone set: a user in it no longer sees the message, everyone
// else still does.
type Message struct {
	ID        string    `json:"id"`
	TempID    *string   `json:"tempId,omitempty"`
	ChatID    string    `json:"chatId"`
	SenderID  string    `json:"senderId"`
	Content   string    `json:"content"`
	DeletedBy []string  `json:"deletedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// DeletedFor reports whether userID has soft-deleted this message from their
// own view.
func (m Message) DeletedFor(userID string) bool {
	for _, id := range m.DeletedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// ChatParticipant is the join record between a Chat and a User. LastReadAt is
// the source of truth for unread counts; IsMuted suppresses notifications for
// this user only.
type ChatParticipant struct {
	ChatID     string     `json:"chatId"`
	UserID     string     `json:"userId"`
	IsMuted    bool       `json:"isMuted"`
	LastReadAt *time.Time `json:"lastReadAt,omitempty"`
	JoinedAt   time.Time  `json:"joinedAt"`
}
