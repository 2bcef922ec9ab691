package model

import "time"

// Profile is a member's display identity, keyed by user_id.
type Profile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Bio       string    `json:"bio"`
	DpURL     string    `json:"dp_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlaceholderUsername is the display name shown for senders with no stored
// profile (typically an admin that never completed profile setup).
const PlaceholderUsername = "Admin"

// PlaceholderProfile synthesizes a display identity for a user with no
// profile row, so the chat view is always renderable.
func PlaceholderProfile(userID string) *Profile {
	return &Profile{
		UserID:   userID,
		Username: PlaceholderUsername,
	}
}
