package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mathpeer/mathpeer/internal/dispatch"
	"github.com/mathpeer/mathpeer/internal/session"
)

// ChatHandler handles conversational dispatcher endpoints.
type ChatHandler struct {
	*Handler
	rateLimiter *RateLimiter
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(base *Handler) *ChatHandler {
	return &ChatHandler{
		Handler:     base,
		rateLimiter: NewRateLimiter(20, time.Minute),
	}
}

// RegisterRoutes registers chat routes.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/chat", func(r chi.Router) {
		r.Post("/", h.Chat)
		r.Get("/history", h.History)
	})
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
	CurrentPath    string `json:"current_path"`
}

// Chat processes one user turn through the action dispatcher.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID := session.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if !h.rateLimiter.Allow(userID) {
		Error(w, http.StatusTooManyRequests, "too many requests")
		return
	}

	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}

	// Session state is read here, at execution time, never cached across
	// turns.
	sess, err := session.State(r.Context(), h.repo, userID)
	if err != nil {
		slog.Error("failed to read session state", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	result, err := h.dispatcher.Chat(r.Context(), dispatch.ChatInput{
		UserID:         userID,
		ConversationID: req.ConversationID,
		Message:        req.Message,
		CurrentPath:    req.CurrentPath,
		Session:        sess,
	})
	if err != nil {
		switch {
		case errors.Is(err, dispatch.ErrEmptyMessage):
			Error(w, http.StatusBadRequest, "message must not be empty")
		case errors.Is(err, dispatch.ErrConversationBusy):
			Error(w, http.StatusConflict, "request already in flight")
		default:
			slog.Error("chat turn failed", "error", err, "user_id", userID)
			Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	JSON(w, http.StatusOK, result)
}

// History returns the full persisted conversation for display.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := session.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	conversationID := r.URL.Query().Get("conversation_id")
	if conversationID == "" {
		Error(w, http.StatusBadRequest, "conversation_id is required")
		return
	}

	turns, err := h.dispatcher.History(r.Context(), userID, conversationID)
	if err != nil {
		slog.Error("failed to load history", "error", err, "user_id", userID, "conversation_id", conversationID)
		Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"conversation_id": conversationID,
		"turns":           turns,
	})
}
