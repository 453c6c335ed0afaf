package models

import "time"

// FeedItemType tags the two feed item variants
type FeedItemType string

const (
	FeedItemTypeEvent        FeedItemType = "EVENT"
	FeedItemTypeAnnouncement FeedItemType = "ANNOUNCEMENT"
)

// FeedItem is the sealed supertype of the social feed. The only variants are
// Event and Announcement; consumers switch on the concrete type and the
// unexported method keeps the set closed so the switch stays exhaustive.
type FeedItem interface {
	FeedItemID() string
	FeedItemType() FeedItemType
	FeedCreatedAt() time.Time
	isFeedItem()
}

// Event is a scheduled walk posted to the feed
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatorID   string    `json:"creatorId"`
	Status      string    `json:"status"` // resolved status name, not the id
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (e Event) FeedItemID() string         { return e.ID }
func (e Event) FeedItemType() FeedItemType { return FeedItemTypeEvent }
func (e Event) FeedCreatedAt() time.Time   { return e.CreatedAt }
func (e Event) isFeedItem()                {}

// Announcement is a non-scheduled feed post tied to an activity type
type Announcement struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	CreatorID    string    `json:"creatorId"`
	Status       string    `json:"status"`
	Location     string    `json:"location"`
	ActivityType string    `json:"activityType"` // resolved activity-type name
	CreatedAt    time.Time `json:"createdAt"`
}

func (a Announcement) FeedItemID() string         { return a.ID }
func (a Announcement) FeedItemType() FeedItemType { return FeedItemTypeAnnouncement }
func (a Announcement) FeedCreatedAt() time.Time   { return a.CreatedAt }
func (a Announcement) isFeedItem()                {}

// EventParticipant is the join record between an Event and a User
type EventParticipant struct {
	EventID  string    `json:"eventId"`
	UserID   string    `json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`
}
