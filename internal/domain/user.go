package domain

import "time"

// User represents a platform user. Guests get an anonymous identity cookie;
// signing in sets DisplayName and flips Authenticated.
type User struct {
	UserID        string    `json:"user_id"`
	DisplayName   string    `json:"display_name"`
	Authenticated bool      `json:"authenticated"`
	LastSeenAt    time.Time `json:"last_seen_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SessionState is the authentication view read at the moment an action is
// about to execute. It is derived from the user record per request and never
// cached across turns.
type SessionState struct {
	Authenticated bool   `json:"authenticated"`
	DisplayName   string `json:"display_name"`
}

// AuthorName returns the attribution for user-generated content: the display
// name when authenticated, otherwise the literal "Guest".
func (s SessionState) AuthorName() string {
	if s.Authenticated && s.DisplayName != "" {
		return s.DisplayName
	}
	return "Guest"
}
