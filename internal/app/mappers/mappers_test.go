package mappers_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walkandtalk/walktalk/internal/app/mappers"
	"github.com/walkandtalk/walktalk/internal/app/models"
	"github.com/walkandtalk/walktalk/internal/app/models/dto"
)

func strPtr(s string) *string { return &s }

func TestUserRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	row := dto.UserRow{
		ID:          "u-1",
		Email:       "mara@example.com",
		Phone:       strPtr("+31612345678"),
		Name:        "Mara",
		Bio:         strPtr("weekend hiker"),
		Mode:        "ORGANIZER",
		InterestIDs: []string{"i-1", "i-2"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	u, err := mappers.UserToDomain(row)
	require.NoError(t, err)
	assert.Equal(t, models.UserModeOrganizer, u.Mode)
	assert.Equal(t, row, mappers.UserToRow(u))
}

func TestUserInterestsDeduplicated(t *testing.T) {
	row := dto.UserRow{
		ID:          "u-1",
		Email:       "mara@example.com",
		Name:        "Mara",
		Mode:        "WALKER",
		InterestIDs: []string{"i-1", "i-2", "i-1", "i-2", "i-3"},
	}
	u, err := mappers.UserToDomain(row)
	require.NoError(t, err)
	assert.Equal(t, []string{"i-1", "i-2", "i-3"}, u.InterestIDs)
}

func TestUserUnknownModeDefaultsToWalker(t *testing.T) {
	row := dto.UserRow{ID: "u-1", Email: "a@b.c", Name: "A", Mode: "SOMETHING_NEW"}
	u, err := mappers.UserToDomain(row)
	require.NoError(t, err)
	assert.Equal(t, models.UserModeWalker, u.Mode)
}

func TestEventRoundTrip(t *testing.T) {
	now := time.Date(2026, 5, 2, 17, 30, 0, 0, time.UTC)
	row := dto.EventRow{
		ID:          "e-1",
		Title:       "Canal loop",
		Description: "Easy 5k walk",
		CreatorID:   "u-1",
		StatusID:    "s-active",
		Location:    "Jordaan",
		EventDate:   now.Add(48 * time.Hour),
		ImageURL:    strPtr("uploads/e-1.jpg"),
		CreatedAt:   now,
	}

	e, err := mappers.EventToDomain(row, "Active")
	require.NoError(t, err)
	assert.Equal(t, "Active", e.Status)
	assert.Equal(t, models.FeedItemTypeEvent, e.FeedItemType())
	assert.Equal(t, row, mappers.EventToRow(e, "s-active"))
}

func TestAnnouncementRoundTrip(t *testing.T) {
	now := time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC)
	row := dto.AnnouncementRow{
		ID:             "a-1",
		Title:          "Looking for a running buddy",
		Description:    "Mornings, city park",
		CreatorID:      "u-2",
		StatusID:       "s-open",
		Location:       "Vondelpark",
		ActivityTypeID: "at-running",
		CreatedAt:      now,
	}

	a, err := mappers.AnnouncementToDomain(row, "Open", "Running")
	require.NoError(t, err)
	assert.Equal(t, "Running", a.ActivityType)
	assert.Equal(t, models.FeedItemTypeAnnouncement, a.FeedItemType())
	assert.Equal(t, row, mappers.AnnouncementToRow(a, "s-open", "at-running"))
}

func TestEventParticipantRequiresJoinedAt(t *testing.T) {
	row := dto.EventParticipantRow{
		EventID: strPtr("e-1"),
		UserID:  strPtr("u-1"),
	}
	_, err := mappers.EventParticipantToDomain(row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "joined_at is null")
}

func TestEventParticipantRequiresIdentity(t *testing.T) {
	_, err := mappers.EventParticipantToDomain(dto.EventParticipantRow{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event_id is null")
}

func TestEventParticipantRoundTrip(t *testing.T) {
	joined := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	row := dto.EventParticipantRow{
		EventID:  strPtr("e-1"),
		UserID:   strPtr("u-1"),
		JoinedAt: &joined,
	}
	p, err := mappers.EventParticipantToDomain(row)
	require.NoError(t, err)
	back := mappers.EventParticipantToRow(p)
	assert.Equal(t, *row.EventID, *back.EventID)
	assert.Equal(t, *row.UserID, *back.UserID)
	assert.True(t, row.JoinedAt.Equal(*back.JoinedAt))
}

func TestChatGroupRequiresEvent(t *testing.T) {
	row := dto.ChatRow{ID: "c-1", ChatType: "GROUP", ParticipantIDs: []string{"u-1"}}
	_, err := mappers.ChatToDomain(row, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "group chat without event_id")
}

func TestChatPrivateRequiresTwoParticipants(t *testing.T) {
	row := dto.ChatRow{ID: "c-1", ChatType: "PRIVATE", ParticipantIDs: []string{"u-1", "u-2", "u-3"}}
	_, err := mappers.ChatToDomain(row, 0)
	require.Error(t, err)
}

func TestChatRoundTrip(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	row := dto.ChatRow{
		ID:             "c-1",
		ChatType:       "PRIVATE",
		ParticipantIDs: []string{"u-1", "u-2"},
		LastMessage:    strPtr("see you there"),
		LastMessageAt:  &now,
		CreatedAt:      now,
	}
	c, err := mappers.ChatToDomain(row, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, c.UnreadCount)
	assert.Equal(t, row, mappers.ChatToRow(c))
}

func TestMessageRoundTrip(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 5, 0, 0, time.UTC)
	row := dto.MessageRow{
		ID:        "m-1",
		TempID:    strPtr("tmp-abc"),
		ChatID:    "c-1",
		SenderID:  "u-1",
		Content:   "on my way",
		DeletedBy: []string{"u-2"},
		CreatedAt: now,
	}
	m, err := mappers.MessageToDomain(row)
	require.NoError(t, err)
	assert.True(t, m.DeletedFor("u-2"))
	assert.False(t, m.DeletedFor("u-1"))
	assert.Equal(t, row, mappers.MessageToRow(m))
}

func TestNotificationUnknownTypeDecodesToDefault(t *testing.T) {
	row := dto.NotificationRow{
		ID:               "n-1",
		UserID:           "u-1",
		NotificationType: "UnknownFutureType",
	}
	n, err := mappers.NotificationToDomain(row)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationTypeNewEvent, n.Type)
}

func TestNotificationMissingIDFails(t *testing.T) {
	row := dto.NotificationRow{
		UserID:           "u-1",
		NotificationType: "NEW_MESSAGE",
	}
	_, err := mappers.NotificationToDomain(row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing id")
}

func TestNotificationRoundTrip(t *testing.T) {
	now := time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC)
	row := dto.NotificationRow{
		ID:               "n-1",
		UserID:           "u-1",
		NotificationType: "NEW_MESSAGE",
		Title:            "New message",
		Body:             "Mara: on my way",
		RelatedID:        strPtr("c-1"),
		IsRead:           false,
		CreatedAt:        now,
	}
	n, err := mappers.NotificationToDomain(row)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationTypeNewMessage, n.Type)
	assert.Equal(t, row, mappers.NotificationToRow(n))
}

func TestReportRoundTrip(t *testing.T) {
	now := time.Date(2026, 6, 3, 9, 0, 0, 0, time.UTC)
	row := dto.ReportRow{
		ID:          "r-1",
		ReporterID:  "u-1",
		ContentType: "EVENT",
		ContentID:   "e-1",
		Reason:      "spam",
		CreatedAt:   now,
	}
	r, err := mappers.ReportToDomain(row)
	require.NoError(t, err)
	assert.Equal(t, models.ReportedContentEvent, r.ContentType)
	assert.Equal(t, row, mappers.ReportToRow(r))
}
