package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mathpeer/mathpeer/internal/session"
)

// RecordsHandler serves the persisted-record read paths the dashboard,
// schedule, and forum views consume.
type RecordsHandler struct {
	*Handler
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(base *Handler) *RecordsHandler {
	return &RecordsHandler{Handler: base}
}

// RegisterRoutes registers record read routes.
func (h *RecordsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", h.GetCatalog)
		r.Get("/bookings", h.GetBookings)
		r.Get("/schedule", h.GetSchedule)
		r.Get("/goals", h.GetGoals)
		r.Get("/posts", h.GetPosts)
		r.Get("/groups/joined", h.GetJoinedGroups)
	})
}

// GetCatalog returns the static entity catalog.
func (h *RecordsHandler) GetCatalog(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, h.cat)
}

// GetBookings returns the user's booked sessions.
func (h *RecordsHandler) GetBookings(w http.ResponseWriter, r *http.Request) {
	userID := session.UserIDFromContext(r.Context())
	bookings, err := h.repo.ListBookings(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list bookings", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"bookings": bookings})
}

// GetSchedule returns the user's custom schedule items.
func (h *RecordsHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	userID := session.UserIDFromContext(r.Context())
	items, err := h.repo.ListScheduleItems(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list schedule items", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// GetGoals returns the user's goals, newest first.
func (h *RecordsHandler) GetGoals(w http.ResponseWriter, r *http.Request) {
	userID := session.UserIDFromContext(r.Context())
	goals, err := h.repo.ListGoals(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list goals", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"goals": goals})
}

// GetPosts returns all forum posts.
func (h *RecordsHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.repo.ListPosts(r.Context())
	if err != nil {
		slog.Error("failed to list posts", "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

// GetJoinedGroups returns the titles in the user's joined-group set.
func (h *RecordsHandler) GetJoinedGroups(w http.ResponseWriter, r *http.Request) {
	userID := session.UserIDFromContext(r.Context())
	titles, err := h.repo.JoinedGroups(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list joined groups", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if titles == nil {
		titles = []string{}
	}
	JSON(w, http.StatusOK, map[string]interface{}{"groups": titles})
}
