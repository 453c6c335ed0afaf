// Package mappers converts between wire-level rows and domain records, in
// both directions. Every function is pure: auxiliary lookups (status names,
// activity-type names and their ids) are resolved by the caller and passed
// in, and a mapper never performs I/O, retries or partial mutation.
package mappers

import (
	"fmt"

	"github.com/walkandtalk/walktalk/internal/app/models"
	"github.com/walkandtalk/walktalk/internal/app/models/dto"
)

// UserToDomain builds a domain user from its row. Duplicate interest ids are
// collapsed to keep the domain invariant without failing the read.
func UserToDomain(row dto.UserRow) (models.User, error) {
	if row.ID == "" {
		return models.User{}, fmt.Errorf("user row: missing id")
	}
	if row.Email == "" {
		return models.User{}, fmt.Errorf("user row %s: missing email", row.ID)
	}
	return models.User{
		ID:          row.ID,
		Email:       row.Email,
		Phone:       row.Phone,
		Name:        row.Name,
		AvatarURL:   row.AvatarURL,
		Bio:         row.Bio,
		Goals:       row.Goals,
		ProviderID:  row.ProviderID,
		Mode:        decodeUserMode(row.Mode),
		InterestIDs: dedupe(row.InterestIDs),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		LastLoginAt: row.LastLoginAt,
	}, nil
}

// UserToRow is the inverse of UserToDomain.
func UserToRow(u models.User) dto.UserRow {
	return dto.UserRow{
		ID:          u.ID,
		Email:       u.Email,
		Phone:       u.Phone,
		Name:        u.Name,
		AvatarURL:   u.AvatarURL,
		Bio:         u.Bio,
		Goals:       u.Goals,
		ProviderID:  u.ProviderID,
		Mode:        string(u.Mode),
		InterestIDs: u.InterestIDs,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

// EventToDomain builds an event; statusName is the caller-resolved name for
// row.StatusID.
func EventToDomain(row dto.EventRow, statusName string) (models.Event, error) {
	if row.ID == "" {
		return models.Event{}, fmt.Errorf("event row: missing id")
	}
	if row.CreatorID == "" {
		return models.Event{}, fmt.Errorf("event row %s: missing creator_id", row.ID)
	}
	return models.Event{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		CreatorID:   row.CreatorID,
		Status:      statusName,
		Location:    row.Location,
		Date:        row.EventDate,
		ImageURL:    row.ImageURL,
		CreatedAt:   row.CreatedAt,
	}, nil
}

// EventToRow is the inverse of EventToDomain; statusID is the caller-resolved
// id for the event's status name.
func EventToRow(e models.Event, statusID string) dto.EventRow {
	return dto.EventRow{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		CreatorID:   e.CreatorID,
		StatusID:    statusID,
		Location:    e.Location,
		EventDate:   e.Date,
		ImageURL:    e.ImageURL,
		CreatedAt:   e.CreatedAt,
	}
}

// AnnouncementToDomain builds an announcement; statusName and
// activityTypeName are caller-resolved.
func AnnouncementToDomain(row dto.AnnouncementRow, statusName, activityTypeName string) (models.Announcement, error) {
	if row.ID == "" {
		return models.Announcement{}, fmt.Errorf("announcement row: missing id")
	}
	if row.CreatorID == "" {
		return models.Announcement{}, fmt.Errorf("announcement row %s: missing creator_id", row.ID)
	}
	return models.Announcement{
		ID:           row.ID,
		Title:        row.Title,
		Description:  row.Description,
		CreatorID:    row.CreatorID,
		Status:       statusName,
		Location:     row.Location,
		ActivityType: activityTypeName,
		CreatedAt:    row.CreatedAt,
	}, nil
}

// AnnouncementToRow is the inverse of AnnouncementToDomain.
func AnnouncementToRow(a models.Announcement, statusID, activityTypeID string) dto.AnnouncementRow {
	return dto.AnnouncementRow{
		ID:             a.ID,
		Title:          a.Title,
		Description:    a.Description,
		CreatorID:      a.CreatorID,
		StatusID:       statusID,
		Location:       a.Location,
		ActivityTypeID: activityTypeID,
		CreatedAt:      a.CreatedAt,
	}
}

// EventParticipantToDomain fails fast when a structurally required column is
// absent: a null here means the backend broke its contract and silently
// defaulting would corrupt join bookkeeping downstream.
func EventParticipantToDomain(row dto.EventParticipantRow) (models.EventParticipant, error) {
	if row.EventID == nil {
		return models.EventParticipant{}, fmt.Errorf("event participant row: event_id is null")
	}
	if row.UserID == nil {
		return models.EventParticipant{}, fmt.Errorf("event participant row: user_id is null")
	}
	if row.JoinedAt == nil {
		return models.EventParticipant{}, fmt.Errorf("event participant row (event %s, user %s): joined_at is null", *row.EventID, *row.UserID)
	}
	return models.EventParticipant{
		EventID:  *row.EventID,
		UserID:   *row.UserID,
		JoinedAt: *row.JoinedAt,
	}, nil
}

// EventParticipantToRow is the inverse of EventParticipantToDomain.
func EventParticipantToRow(p models.EventParticipant) dto.EventParticipantRow {
	joinedAt := p.JoinedAt
	return dto.EventParticipantRow{
		EventID:  &p.EventID,
		UserID:   &p.UserID,
		JoinedAt: &joinedAt,
	}
}

// ChatToDomain builds a chat; unreadCount is derived by the caller for the
// viewing user. The chat-type invariants are enforced here: a group chat is
// bound to an event, a private chat to exactly two participants.
func ChatToDomain(row dto.ChatRow, unreadCount int) (models.Chat, error) {
	chatType := models.ChatType(row.ChatType)
	switch chatType {
	case models.ChatTypeGroup:
		if row.EventID == nil {
			return models.Chat{}, fmt.Errorf("chat row %s: group chat without event_id", row.ID)
		}
	case models.ChatTypePrivate:
		if len(row.ParticipantIDs) != 2 {
			return models.Chat{}, fmt.Errorf("chat row %s: private chat with %d participants", row.ID, len(row.ParticipantIDs))
		}
	default:
		return models.Chat{}, fmt.Errorf("chat row %s: unknown chat type %q", row.ID, row.ChatType)
	}
	return models.Chat{
		ID:             row.ID,
		Type:           chatType,
		EventID:        row.EventID,
		ParticipantIDs: row.ParticipantIDs,
		LastMessage:    row.LastMessage,
		LastMessageAt:  row.LastMessageAt,
		UnreadCount:    unreadCount,
		CreatedAt:      row.CreatedAt,
	}, nil
}

// ChatToRow is the inverse of ChatToDomain. The unread count is a per-viewer
// derivation and has no column.
func ChatToRow(c models.Chat) dto.ChatRow {
	return dto.ChatRow{
		ID:             c.ID,
		ChatType:       string(c.Type),
		EventID:        c.EventID,
		ParticipantIDs: c.ParticipantIDs,
		LastMessage:    c.LastMessage,
		LastMessageAt:  c.LastMessageAt,
		CreatedAt:      c.CreatedAt,
	}
}

// MessageToDomain builds a message from its row.
func MessageToDomain(row dto.MessageRow) (models.Message, error) {
	if row.ID == "" {
		return models.Message{}, fmt.Errorf("message row: missing id")
	}
	if row.ChatID == "" {
		return models.Message{}, fmt.Errorf("message row %s: missing chat_id", row.ID)
	}
	return models.Message{
		ID:        row.ID,
		TempID:    row.TempID,
		ChatID:    row.ChatID,
		SenderID:  row.SenderID,
		Content:   row.Content,
		DeletedBy: row.DeletedBy,
		CreatedAt: row.CreatedAt,
	}, nil
}

// MessageToRow is the inverse of MessageToDomain.
func MessageToRow(m models.Message) dto.MessageRow {
	return dto.MessageRow{
		ID:        m.ID,
		TempID:    m.TempID,
		ChatID:    m.ChatID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		DeletedBy: m.DeletedBy,
		CreatedAt: m.CreatedAt,
	}
}

// ChatParticipantToDomain builds a chat participant from its row.
func ChatParticipantToDomain(row dto.ChatParticipantRow) (models.ChatParticipant, error) {
	if row.ChatID == "" || row.UserID == "" {
		return models.ChatParticipant{}, fmt.Errorf("chat participant row: missing chat_id or user_id")
	}
	return models.ChatParticipant{
		ChatID:     row.ChatID,
		UserID:     row.UserID,
		IsMuted:    row.IsMuted,
		LastReadAt: row.LastReadAt,
		JoinedAt:   row.JoinedAt,
	}, nil
}

// ChatParticipantToRow is the inverse of ChatParticipantToDomain.
func ChatParticipantToRow(p models.ChatParticipant) dto.ChatParticipantRow {
	return dto.ChatParticipantRow{
		ChatID:     p.ChatID,
		UserID:     p.UserID,
		IsMuted:    p.IsMuted,
		LastReadAt: p.LastReadAt,
		JoinedAt:   p.JoinedAt,
	}
}

// NotificationToDomain builds a notification. An unknown wire type decodes to
// the default variant rather than failing, so types the backend adds later
// do not break existing clients.
func NotificationToDomain(row dto.NotificationRow) (models.Notification, error) {
	if row.ID == "" {
		return models.Notification{}, fmt.Errorf("notification row: missing id")
	}
	if row.UserID == "" {
		return models.Notification{}, fmt.Errorf("notification row %s: missing user_id", row.ID)
	}
	return models.Notification{
		ID:        row.ID,
		UserID:    row.UserID,
		Type:      models.DecodeNotificationType(row.NotificationType),
		Title:     row.Title,
		Body:      row.Body,
		RelatedID: row.RelatedID,
		IsRead:    row.IsRead,
		CreatedAt: row.CreatedAt,
	}, nil
}

// NotificationToRow is the inverse of NotificationToDomain.
func NotificationToRow(n models.Notification) dto.NotificationRow {
	return dto.NotificationRow{
		ID:               n.ID,
		UserID:           n.UserID,
		NotificationType: string(n.Type),
		Title:            n.Title,
		Body:             n.Body,
		RelatedID:        n.RelatedID,
		IsRead:           n.IsRead,
		CreatedAt:        n.CreatedAt,
	}
}

// ReportToDomain builds a report from its row.
func ReportToDomain(row dto.ReportRow) (models.Report, error) {
	if row.ID == "" {
		return models.Report{}, fmt.Errorf("report row: missing id")
	}
	switch models.ReportedContentType(row.ContentType) {
	case models.ReportedContentEvent, models.ReportedContentAnnouncement, models.ReportedContentUser:
	default:
		return models.Report{}, fmt.Errorf("report row %s: unknown content type %q", row.ID, row.ContentType)
	}
	return models.Report{
		ID:          row.ID,
		ReporterID:  row.ReporterID,
		ContentType: models.ReportedContentType(row.ContentType),
		ContentID:   row.ContentID,
		Reason:      row.Reason,
		CreatedAt:   row.CreatedAt,
	}, nil
}

// ReportToRow is the inverse of ReportToDomain.
func ReportToRow(r models.Report) dto.ReportRow {
	return dto.ReportRow{
		ID:          r.ID,
		ReporterID:  r.ReporterID,
		ContentType: string(r.ContentType),
		ContentID:   r.ContentID,
		Reason:      r.Reason,
		CreatedAt:   r.CreatedAt,
	}
}

func decodeUserMode(raw string) models.UserMode {
	switch m := models.UserMode(raw); m {
	case models.UserModeWalker, models.UserModeOrganizer:
		return m
	default:
		return models.UserModeWalker
	}
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return ids
	}
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
