// Package session provides per-device identity and authentication state.
// Every visitor gets an anonymous identity cookie so guest flows (forum
// posts, quizzes) work without signing in; privileged actions read the
// authentication state at execution time.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/mathpeer/mathpeer/internal/domain"
	"github.com/mathpeer/mathpeer/internal/store"
)

const (
	// CookieName is the anonymous identity cookie.
	CookieName  = "mathpeer_uid"
	cookieTTL   = 30 * 24 * time.Hour
	maxNameLen  = 64
	anonIDBytes = 16
)

type contextKey int

const userIDKey contextKey = iota

var anonIDPattern = regexp.MustCompile(`^anon_[a-f0-9]{32}$`)

// UserIDFromContext extracts the user ID from the request context.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

func generateAnonID() (string, error) {
	buf := make([]byte, anonIDBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate anonymous id: %w", err)
	}
	return "anon_" + hex.EncodeToString(buf), nil
}

func isValidAnonID(id string) bool {
	return anonIDPattern.MatchString(id)
}

func setIdentityCookie(w http.ResponseWriter, id string, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(cookieTTL.Seconds()),
		Expires:  time.Now().Add(cookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
}

func ensureUser(ctx context.Context, repo store.Repository, userID string) error {
	user, err := repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user != nil {
		return nil
	}

	now := time.Now()
	return repo.UpsertUser(ctx, &domain.User{
		UserID:     userID,
		LastSeenAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func getOrCreateAnonID(w http.ResponseWriter, r *http.Request, isDev bool) (string, error) {
	if c, err := r.Cookie(CookieName); err == nil && isValidAnonID(c.Value) {
		setIdentityCookie(w, c.Value, isDev)
		return c.Value, nil
	}

	id, err := generateAnonID()
	if err != nil {
		return "", err
	}
	setIdentityCookie(w, id, isDev)
	return id, nil
}

// Middleware injects anonymous per-device identity into the request context,
// creating the user record on first contact.
func Middleware(repo store.Repository, isDev bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := getOrCreateAnonID(w, r, isDev)
			if err != nil {
				http.Error(w, `{"error":"failed to establish identity"}`, http.StatusInternalServerError)
				return
			}

			if err := ensureUser(r.Context(), repo, userID); err != nil {
				http.Error(w, `{"error":"failed to initialize user"}`, http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// State reads the current authentication view for a user. It is read at the
// moment an action is about to execute and never cached across turns:
// authentication can change between turns.
func State(ctx context.Context, repo store.Repository, userID string) (domain.SessionState, error) {
	user, err := repo.GetUser(ctx, userID)
	if err != nil {
		return domain.SessionState{}, fmt.Errorf("read session state: %w", err)
	}
	if user == nil {
		return domain.SessionState{}, nil
	}
	return domain.SessionState{
		Authenticated: user.Authenticated,
		DisplayName:   user.DisplayName,
	}, nil
}

// ValidDisplayName reports whether a sign-in display name is acceptable.
func ValidDisplayName(name string) bool {
	return name != "" && len(name) <= maxNameLen
}
