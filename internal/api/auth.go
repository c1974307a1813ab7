package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mathpeer/mathpeer/internal/session"
)

// AuthHandler provides the authentication entry points the session gate
// redirects to. Sign-in is display-name based: it flips the authenticated
// flag on the anonymous identity so gated actions can execute.
type AuthHandler struct {
	*Handler
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *Handler) *AuthHandler {
	return &AuthHandler{Handler: base}
}

// RegisterRoutes registers auth routes.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})
	r.Get("/api/me", h.Me)
}

type loginRequest struct {
	DisplayName string `json:"display_name"`
}

// Login authenticates the current identity with a display name.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	userID := session.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	name := strings.TrimSpace(req.DisplayName)
	if !session.ValidDisplayName(name) {
		Error(w, http.StatusBadRequest, "invalid display name")
		return
	}

	user, err := h.repo.GetUser(r.Context(), userID)
	if err != nil || user == nil {
		slog.Error("failed to load user for login", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	user.DisplayName = name
	user.Authenticated = true
	user.UpdatedAt = time.Now()
	if err := h.repo.UpsertUser(r.Context(), user); err != nil {
		slog.Error("failed to persist login", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	slog.Info("user signed in", "user_id", userID)
	JSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"display_name":  name,
	})
}

// Logout clears the authenticated flag.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := session.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.repo.GetUser(r.Context(), userID)
	if err != nil || user == nil {
		Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	user.Authenticated = false
	user.UpdatedAt = time.Now()
	if err := h.repo.UpsertUser(r.Context(), user); err != nil {
		slog.Error("failed to persist logout", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{"authenticated": false})
}

// Me returns the current session state.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := session.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sess, err := session.State(r.Context(), h.repo, userID)
	if err != nil {
		slog.Error("failed to read session state", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"user_id":       userID,
		"authenticated": sess.Authenticated,
		"display_name":  sess.DisplayName,
	})
}
