package models

import "time"

// NotificationType enumerates the known notification kinds. Wire values
// outside this set decode to NotificationTypeNewEvent so that types the
// backend introduces later do not break older clients.
type NotificationType string

const (
	NotificationTypeNewEvent        NotificationType = "NEW_EVENT"
	NotificationTypeNewAnnouncement NotificationType = "NEW_ANNOUNCEMENT"
	NotificationTypeNewMessage      NotificationType = "NEW_MESSAGE"
	NotificationTypeEventReminder   NotificationType = "EVENT_REMINDER"
	NotificationTypeEventJoined     NotificationType = "EVENT_JOINED"
)

// DecodeNotificationType maps a wire value to a known variant, falling back
// to NotificationTypeNewEvent for anything unrecognized.
func DecodeNotificationType(raw string) NotificationType {
	switch t := NotificationType(raw); t {
	case NotificationTypeNewEvent,
		NotificationTypeNewAnnouncement,
		NotificationTypeNewMessage,
		NotificationTypeEventReminder,
		NotificationTypeEventJoined:
		return t
	default:
		return NotificationTypeNewEvent
	}
}

// Notification is a user-addressed alert, optionally pointing at the related
// event, chat or announcement through RelatedID.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	RelatedID *string          `json:"relatedId,omitempty"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}
