package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mathpeer/mathpeer/internal/domain"
)

// MemoryStore implements Repository in memory. It is used by tests and by
// local development without a database file.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[string]domain.User
	bookings      map[string][]domain.Booking
	scheduleItems map[string][]domain.ScheduleItem
	goals         map[string][]domain.Goal
	posts         []domain.Post
	joinedGroups  map[string][]string
	conversations map[string]domain.Conversation
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]domain.User),
		bookings:      make(map[string][]domain.Booking),
		scheduleItems: make(map[string][]domain.ScheduleItem),
		goals:         make(map[string][]domain.Goal),
		joinedGroups:  make(map[string][]string),
		conversations: make(map[string]domain.Conversation),
	}
}

func (m *MemoryStore) GetUser(_ context.Context, userID string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *MemoryStore) UpsertUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.UserID] = *user
	return nil
}

func (m *MemoryStore) UpdateLastSeen(_ context.Context, userID string, lastSeen time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.LastSeenAt = lastSeen
		u.UpdatedAt = time.Now()
		m.users[userID] = u
	}
	return nil
}

func (m *MemoryStore) ListBookings(_ context.Context, userID string) ([]domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Booking(nil), m.bookings[userID]...), nil
}

func (m *MemoryStore) AppendBooking(_ context.Context, userID string, b domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[userID] = append(m.bookings[userID], b)
	return nil
}

func (m *MemoryStore) ListScheduleItems(_ context.Context, userID string) ([]domain.ScheduleItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.ScheduleItem(nil), m.scheduleItems[userID]...), nil
}

func (m *MemoryStore) AppendScheduleItem(_ context.Context, userID string, item domain.ScheduleItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduleItems[userID] = append(m.scheduleItems[userID], item)
	return nil
}

func (m *MemoryStore) ListGoals(_ context.Context, userID string) ([]domain.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Goal(nil), m.goals[userID]...), nil
}

func (m *MemoryStore) PrependGoal(_ context.Context, userID string, g domain.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goals[userID] = append([]domain.Goal{g}, m.goals[userID]...)
	return nil
}

func (m *MemoryStore) ListPosts(_ context.Context) ([]domain.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Post(nil), m.posts...), nil
}

func (m *MemoryStore) AppendPost(_ context.Context, p domain.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts = append(m.posts, p)
	return nil
}

func (m *MemoryStore) JoinedGroups(_ context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.joinedGroups[userID]...), nil
}

func (m *MemoryStore) JoinGroup(_ context.Context, userID, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.joinedGroups[userID] {
		if t == title {
			return nil
		}
	}
	m.joinedGroups[userID] = append(m.joinedGroups[userID], title)
	return nil
}

func (m *MemoryStore) LeaveGroup(_ context.Context, userID, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	titles := m.joinedGroups[userID]
	for i, t := range titles {
		if t == title {
			m.joinedGroups[userID] = append(titles[:i], titles[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *MemoryStore) GetConversation(_ context.Context, userID, conversationID string) (*domain.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conv, ok := m.conversations[conversationID]
	if !ok || conv.UserID != userID {
		return nil, nil
	}
	copied := conv
	copied.Turns = append([]domain.Turn(nil), conv.Turns...)
	return &copied, nil
}

func (m *MemoryStore) UpsertConversation(_ context.Context, conv *domain.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.conversations[conv.ID]; ok && existing.UserID != conv.UserID {
		return fmt.Errorf("upsert conversation %s: owned by another user", conv.ID)
	}
	stored := *conv
	stored.Turns = append([]domain.Turn(nil), conv.Turns...)
	stored.UpdatedAt = time.Now()
	m.conversations[conv.ID] = stored
	return nil
}

func (m *MemoryStore) Ping(_ context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
