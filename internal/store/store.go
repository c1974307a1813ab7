// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/mathpeer/mathpeer/internal/domain"
)

// Repository defines the narrow persistence interface the dispatcher and API
// depend on. Record mutations are read-then-append (goals prepend); the
// joined-group set has set semantics. An in-memory implementation backs the
// tests.
type Repository interface {
	// GetUser retrieves a user by ID. Returns nil, nil when absent.
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// UpsertUser creates or updates a user record.
	UpsertUser(ctx context.Context, user *domain.User) error

	// UpdateLastSeen updates the last_seen_at timestamp for a user.
	UpdateLastSeen(ctx context.Context, userID string, lastSeen time.Time) error

	// ListBookings returns a user's booked sessions in append order.
	ListBookings(ctx context.Context, userID string) ([]domain.Booking, error)

	// AppendBooking appends a booking to the user's booking list.
	AppendBooking(ctx context.Context, userID string, b domain.Booking) error

	// ListScheduleItems returns a user's custom schedule items in append order.
	ListScheduleItems(ctx context.Context, userID string) ([]domain.ScheduleItem, error)

	// AppendScheduleItem appends a schedule item to the user's list.
	AppendScheduleItem(ctx context.Context, userID string, item domain.ScheduleItem) error

	// ListGoals returns a user's goals newest-first.
	ListGoals(ctx context.Context, userID string) ([]domain.Goal, error)

	// PrependGoal adds a goal at the head of the user's goal list.
	PrependGoal(ctx context.Context, userID string, g domain.Goal) error

	// ListPosts returns all forum posts in append order.
	ListPosts(ctx context.Context) ([]domain.Post, error)

	// AppendPost appends a forum post.
	AppendPost(ctx context.Context, p domain.Post) error

	// JoinedGroups returns the titles in the user's joined-group set.
	JoinedGroups(ctx context.Context, userID string) ([]string, error)

	// JoinGroup adds a title to the joined-group set. Idempotent.
	JoinGroup(ctx context.Context, userID, title string) error

	// LeaveGroup removes a title from the joined-group set. Idempotent.
	LeaveGroup(ctx context.Context, userID, title string) error

	// GetConversation retrieves a conversation owned by the user.
	// Returns nil, nil when absent.
	GetConversation(ctx context.Context, userID, conversationID string) (*domain.Conversation, error)

	// UpsertConversation persists conversation turns. A write under an ID
	// owned by another user is rejected.
	UpsertConversation(ctx context.Context, conv *domain.Conversation) error

	// Ping verifies connectivity to the underlying storage.
	Ping(ctx context.Context) error

	// Close releases storage resources.
	Close() error
}
