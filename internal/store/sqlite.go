package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mathpeer/mathpeer/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL DEFAULT '',
		authenticated INTEGER NOT NULL DEFAULT 0,
		last_seen_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		tutor_name TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		time TEXT NOT NULL,
		duration TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings(user_id);

	CREATE TABLE IF NOT EXISTS schedule_items (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		date TEXT NOT NULL,
		time TEXT NOT NULL,
		type TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_schedule_items_user ON schedule_items(user_id);

	CREATE TABLE IF NOT EXISTS goals (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		target INTEGER NOT NULL,
		progress INTEGER NOT NULL,
		label TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_id);

	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		tag TEXT NOT NULL,
		author TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS joined_groups (
		user_id TEXT NOT NULL,
		group_title TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (user_id, group_title)
	);

	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		turns_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetUser retrieves a user by their user ID.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT user_id, display_name, authenticated, last_seen_at, created_at, updated_at
		FROM users WHERE user_id = ?`

	row := s.db.QueryRowContext(ctx, query, userID)

	var user domain.User
	var authenticated int
	var lastSeen, createdAt, updatedAt int64

	err := row.Scan(&user.UserID, &user.DisplayName, &authenticated, &lastSeen, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	user.Authenticated = authenticated != 0
	user.LastSeenAt = time.Unix(lastSeen, 0)
	user.CreatedAt = time.Unix(createdAt, 0)
	user.UpdatedAt = time.Unix(updatedAt, 0)

	return &user, nil
}

// UpsertUser creates or updates a user record.
func (s *SQLiteStore) UpsertUser(ctx context.Context, user *domain.User) error {
	query := `
	INSERT INTO users (user_id, display_name, authenticated, last_seen_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		display_name = excluded.display_name,
		authenticated = excluded.authenticated,
		last_seen_at = excluded.last_seen_at,
		updated_at = excluded.updated_at`

	authenticated := 0
	if user.Authenticated {
		authenticated = 1
	}

	_, err := s.db.ExecContext(ctx, query,
		user.UserID, user.DisplayName, authenticated,
		user.LastSeenAt.Unix(), user.CreatedAt.Unix(), user.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// UpdateLastSeen updates the last_seen_at timestamp for a user.
func (s *SQLiteStore) UpdateLastSeen(ctx context.Context, userID string, lastSeen time.Time) error {
	query := `UPDATE users SET last_seen_at = ?, updated_at = ? WHERE user_id = ?`
	if _, err := s.db.ExecContext(ctx, query, lastSeen.Unix(), time.Now().Unix(), userID); err != nil {
		return fmt.Errorf("update last_seen: %w", err)
	}
	return nil
}

// ListBookings returns a user's bookings in append order.
func (s *SQLiteStore) ListBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	query := `
		SELECT id, tutor_name, subject, date, time, duration, status, created_at
		FROM bookings WHERE user_id = ? ORDER BY rowid ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer closeRows(rows)

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		var createdAt int64
		if err := rows.Scan(&b.ID, &b.TutorName, &b.Subject, &b.Date, &b.Time, &b.Duration, &b.Status, &createdAt); err != nil {
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		b.CreatedAt = time.Unix(createdAt, 0)
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return bookings, nil
}

// AppendBooking appends a booking to the user's booking list.
func (s *SQLiteStore) AppendBooking(ctx context.Context, userID string, b domain.Booking) error {
	query := `
	INSERT INTO bookings (id, user_id, tutor_name, subject, date, time, duration, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		b.ID, userID, b.TutorName, b.Subject, b.Date, b.Time, b.Duration, b.Status, b.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("append booking: %w", err)
	}
	return nil
}

// ListScheduleItems returns a user's schedule items in append order.
func (s *SQLiteStore) ListScheduleItems(ctx context.Context, userID string) ([]domain.ScheduleItem, error) {
	query := `
		SELECT id, title, date, time, type, created_at
		FROM schedule_items WHERE user_id = ? ORDER BY rowid ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query schedule items: %w", err)
	}
	defer closeRows(rows)

	var items []domain.ScheduleItem
	for rows.Next() {
		var it domain.ScheduleItem
		var createdAt int64
		if err := rows.Scan(&it.ID, &it.Title, &it.Date, &it.Time, &it.Type, &createdAt); err != nil {
			return nil, fmt.Errorf("scan schedule item row: %w", err)
		}
		it.CreatedAt = time.Unix(createdAt, 0)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedule items: %w", err)
	}
	return items, nil
}

// AppendScheduleItem appends a schedule item to the user's list.
func (s *SQLiteStore) AppendScheduleItem(ctx context.Context, userID string, item domain.ScheduleItem) error {
	query := `
	INSERT INTO schedule_items (id, user_id, title, date, time, type, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		item.ID, userID, item.Title, item.Date, item.Time, item.Type, item.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("append schedule item: %w", err)
	}
	return nil
}

// ListGoals returns a user's goals newest-first.
func (s *SQLiteStore) ListGoals(ctx context.Context, userID string) ([]domain.Goal, error) {
	query := `
		SELECT id, title, target, progress, label, created_at
		FROM goals WHERE user_id = ? ORDER BY rowid DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer closeRows(rows)

	var goals []domain.Goal
	for rows.Next() {
		var g domain.Goal
		var createdAt int64
		if err := rows.Scan(&g.ID, &g.Title, &g.Target, &g.Progress, &g.Label, &createdAt); err != nil {
			return nil, fmt.Errorf("scan goal row: %w", err)
		}
		g.CreatedAt = time.Unix(createdAt, 0)
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return goals, nil
}

// PrependGoal adds a goal at the head of the user's goal list. Newest-first
// ordering is realized by ListGoals reading in reverse insertion order.
func (s *SQLiteStore) PrependGoal(ctx context.Context, userID string, g domain.Goal) error {
	query := `
	INSERT INTO goals (id, user_id, title, target, progress, label, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		g.ID, userID, g.Title, g.Target, g.Progress, g.Label, g.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("prepend goal: %w", err)
	}
	return nil
}

// ListPosts returns all forum posts in append order.
func (s *SQLiteStore) ListPosts(ctx context.Context) ([]domain.Post, error) {
	query := `SELECT id, title, body, tag, author, created_at FROM posts ORDER BY rowid ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer closeRows(rows)

	var posts []domain.Post
	for rows.Next() {
		var p domain.Post
		var createdAt int64
		if err := rows.Scan(&p.ID, &p.Title, &p.Body, &p.Tag, &p.Author, &createdAt); err != nil {
			return nil, fmt.Errorf("scan post row: %w", err)
		}
		p.CreatedAt = time.Unix(createdAt, 0)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

// AppendPost appends a forum post.
func (s *SQLiteStore) AppendPost(ctx context.Context, p domain.Post) error {
	query := `INSERT INTO posts (id, title, body, tag, author, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, p.ID, p.Title, p.Body, p.Tag, p.Author, p.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("append post: %w", err)
	}
	return nil
}

// JoinedGroups returns the titles in the user's joined-group set.
func (s *SQLiteStore) JoinedGroups(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT group_title FROM joined_groups WHERE user_id = ? ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query joined groups: %w", err)
	}
	defer closeRows(rows)

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan joined group row: %w", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate joined groups: %w", err)
	}
	return titles, nil
}

// JoinGroup adds a title to the joined-group set. Adding an already-present
// title is a no-op.
func (s *SQLiteStore) JoinGroup(ctx context.Context, userID, title string) error {
	query := `INSERT OR IGNORE INTO joined_groups (user_id, group_title, created_at) VALUES (?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, userID, title, time.Now().Unix()); err != nil {
		return fmt.Errorf("join group: %w", err)
	}
	return nil
}

// LeaveGroup removes a title from the joined-group set. Removing an absent
// title is a no-op.
func (s *SQLiteStore) LeaveGroup(ctx context.Context, userID, title string) error {
	query := `DELETE FROM joined_groups WHERE user_id = ? AND group_title = ?`
	if _, err := s.db.ExecContext(ctx, query, userID, title); err != nil {
		return fmt.Errorf("leave group: %w", err)
	}
	return nil
}

// GetConversation retrieves a conversation owned by the user.
func (s *SQLiteStore) GetConversation(ctx context.Context, userID, conversationID string) (*domain.Conversation, error) {
	query := `SELECT id, user_id, turns_json, updated_at FROM conversations WHERE id = ? AND user_id = ?`

	row := s.db.QueryRowContext(ctx, query, conversationID, userID)

	var conv domain.Conversation
	var turnsJSON string
	var updatedAt int64

	err := row.Scan(&conv.ID, &conv.UserID, &turnsJSON, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan conversation row: %w", err)
	}

	if err := unmarshalTurns(turnsJSON, &conv.Turns); err != nil {
		return nil, fmt.Errorf("decode conversation turns: %w", err)
	}
	conv.UpdatedAt = time.Unix(updatedAt, 0)

	return &conv, nil
}

// UpsertConversation persists conversation turns as a JSON blob. A write
// under an ID owned by another user is rejected, never applied.
func (s *SQLiteStore) UpsertConversation(ctx context.Context, conv *domain.Conversation) error {
	turnsJSON, err := marshalTurns(conv.Turns)
	if err != nil {
		return fmt.Errorf("encode conversation turns: %w", err)
	}

	now := time.Now().Unix()
	query := `
	INSERT INTO conversations (id, user_id, turns_json, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		turns_json = excluded.turns_json,
		updated_at = excluded.updated_at
	WHERE user_id = excluded.user_id`

	res, err := s.db.ExecContext(ctx, query, conv.ID, conv.UserID, turnsJSON, now, now)
	if err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("upsert conversation %s: owned by another user", conv.ID)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
