package models

import "time"

// UserMode defines how the user primarily uses the app
type UserMode string

const (
	UserModeWalker    UserMode = "WALKER"
	UserModeOrganizer UserMode = "ORGANIZER"
)

// User defines the domain user record. All fields are value-owned; a user is
// never mutated in place, updates go through the repository and are re-read.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Phone       *string    `json:"phone,omitempty"`
	Name        string     `json:"name"`
	AvatarURL   *string    `json:"avatarUrl,omitempty"`
	Bio         *string    `json:"bio,omitempty"`
	Goals       *string    `json:"goals,omitempty"`
	ProviderID  *string    `json:"providerId,omitempty"` // external identity-provider subject
	Mode        UserMode   `json:"mode"`
	InterestIDs []string   `json:"interestIds"` // no duplicates
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}
