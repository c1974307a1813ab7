package domain

import "time"

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single chat message in a conversation. Turns are append-only
// within a session; only a bounded trailing window is forwarded to the model
// service as context.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation groups persisted turns for display.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Turns     []Turn    `json:"turns"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TrailingWindow returns the most recent n turns. The full history is
// retained for display only.
func (c *Conversation) TrailingWindow(n int) []Turn {
	if n <= 0 || len(c.Turns) == 0 {
		return nil
	}
	if n >= len(c.Turns) {
		return c.Turns
	}
	return c.Turns[len(c.Turns)-n:]
}
