package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mathpeer/mathpeer/internal/catalog"
	"github.com/mathpeer/mathpeer/internal/domain"
	"github.com/mathpeer/mathpeer/internal/model"
	"github.com/mathpeer/mathpeer/internal/store"
)

const defaultHistoryWindow = 10

// Recoverable-failure replies. The conversation stays coherent even when no
// action could be attempted.
const (
	replyTransportFailure = "Sorry, I'm having trouble reaching my brain right now. Please try again in a moment."
	replyUnparseable      = "Sorry, I didn't quite catch that. Could you rephrase?"
)

// Sentinel errors the HTTP layer maps to status codes.
var (
	ErrEmptyMessage     = errors.New("dispatch: message must not be empty")
	ErrConversationBusy = errors.New("dispatch: a request is already in flight for this conversation")
)

// ModelClient sends one conversational turn to the external language-model
// service and returns its raw response text.
type ModelClient interface {
	Complete(ctx context.Context, req model.Request) (string, error)
}

// Service is the conversation orchestrator. Per user turn it appends the user
// message to history, assembles the outbound payload, invokes the model
// service, and drives extraction, validation, gating, and execution.
type Service struct {
	repo          store.Repository
	cat           *catalog.Catalog
	llm           ModelClient
	executor      *Executor
	historyWindow int

	inflight sync.Map // userID/conversationID -> struct{}
}

// ChatInput is one user turn.
type ChatInput struct {
	UserID         string
	ConversationID string
	Message        string
	CurrentPath    string
	Session        domain.SessionState
}

// ChatResult is the dispatcher's answer to one user turn. Navigate and
// AuthRedirect are instructions to the client; the reply is always present.
type ChatResult struct {
	ConversationID string `json:"conversation_id"`
	Reply          string `json:"reply"`
	Navigate       string `json:"navigate,omitempty"`
	AuthRedirect   string `json:"auth_redirect,omitempty"`
}

// NewService creates the orchestrator. historyWindow bounds the trailing
// turns forwarded to the model service; older turns are retained for display
// only.
func NewService(repo store.Repository, cat *catalog.Catalog, llm ModelClient, executor *Executor, historyWindow int) (*Service, error) {
	if repo == nil {
		return nil, errors.New("dispatch: repository must not be nil")
	}
	if cat == nil {
		return nil, errors.New("dispatch: catalog must not be nil")
	}
	if llm == nil {
		return nil, errors.New("dispatch: model client must not be nil")
	}
	if executor == nil {
		return nil, errors.New("dispatch: executor must not be nil")
	}
	if historyWindow <= 0 {
		historyWindow = defaultHistoryWindow
	}
	return &Service{
		repo:          repo,
		cat:           cat,
		llm:           llm,
		executor:      executor,
		historyWindow: historyWindow,
	}, nil
}

// Chat processes one user turn. Turns within a conversation are processed
// strictly in send order: a send while a prior request is pending is rejected
// with ErrConversationBusy, not queued.
func (s *Service) Chat(ctx context.Context, in ChatInput) (ChatResult, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return ChatResult{}, ErrEmptyMessage
	}

	conv, err := s.loadConversation(ctx, in.UserID, strings.TrimSpace(in.ConversationID))
	if err != nil {
		return ChatResult{}, err
	}
	conversationID := conv.ID

	inflightKey := in.UserID + "/" + conversationID
	if _, busy := s.inflight.LoadOrStore(inflightKey, struct{}{}); busy {
		return ChatResult{}, ErrConversationBusy
	}
	defer s.inflight.Delete(inflightKey)

	history := conv.TrailingWindow(s.historyWindow)
	conv.Turns = append(conv.Turns, domain.Turn{Role: domain.RoleUser, Content: message})

	raw, err := s.llm.Complete(ctx, model.Request{
		Message: message,
		Context: s.modelContext(in.CurrentPath),
		History: history,
	})
	if err != nil {
		slog.Warn("model service call failed", "error", err, "user_id", in.UserID, "conversation_id", conversationID)
		return s.finishTurn(ctx, conv, ChatResult{
			ConversationID: conversationID,
			Reply:          replyTransportFailure,
		})
	}

	env := ExtractEnvelope(raw)
	if env == nil {
		slog.Warn("model response had no parseable payload", "user_id", in.UserID, "conversation_id", conversationID)
		return s.finishTurn(ctx, conv, ChatResult{
			ConversationID: conversationID,
			Reply:          replyUnparseable,
		})
	}

	action := Validate(env.Action)

	outcome, err := s.executor.Execute(ctx, in.UserID, in.Session, action)
	if err != nil {
		// The side effect did not happen; the reply already gives the user a
		// coherent answer, so nothing is surfaced.
		slog.Error("action execution failed", "error", err, "user_id", in.UserID, "kind", action.Kind)
		outcome = Outcome{}
	} else if action.Kind != domain.ActionNone {
		slog.Info("action dispatched", "user_id", in.UserID, "conversation_id", conversationID, "kind", action.Kind)
	}

	reply := strings.TrimSpace(env.Reply)
	if reply == "" {
		reply = replyUnparseable
	}

	return s.finishTurn(ctx, conv, ChatResult{
		ConversationID: conversationID,
		Reply:          reply,
		Navigate:       outcome.Navigate,
		AuthRedirect:   outcome.AuthRedirect,
	})
}

// History returns the full persisted conversation for display.
func (s *Service) History(ctx context.Context, userID, conversationID string) ([]domain.Turn, error) {
	conv, err := s.repo.GetConversation(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, nil
	}
	return conv.Turns, nil
}

// loadConversation resolves the conversation for this turn. Conversation IDs
// are server-minted, so a supplied ID the user cannot read is either foreign
// or stale; it is never reused, because writing under it could replace
// another user's turns. Both cases start a fresh conversation.
func (s *Service) loadConversation(ctx context.Context, userID, conversationID string) (*domain.Conversation, error) {
	if conversationID != "" {
		conv, err := s.repo.GetConversation(ctx, userID, conversationID)
		if err != nil {
			return nil, err
		}
		if conv != nil {
			return conv, nil
		}
	}
	return &domain.Conversation{ID: uuid.NewString(), UserID: userID}, nil
}

// finishTurn appends the assistant reply to history and persists the
// conversation regardless of action outcome, so the thread stays coherent
// even when the action silently no-ops.
func (s *Service) finishTurn(ctx context.Context, conv *domain.Conversation, result ChatResult) (ChatResult, error) {
	conv.Turns = append(conv.Turns, domain.Turn{Role: domain.RoleAssistant, Content: result.Reply})
	conv.UpdatedAt = time.Now()
	if err := s.repo.UpsertConversation(ctx, conv); err != nil {
		slog.Error("failed to persist conversation", "error", err, "conversation_id", conv.ID)
	}
	return result, nil
}

func (s *Service) modelContext(currentPath string) model.Context {
	mc := model.Context{CurrentPath: currentPath}
	for _, p := range s.cat.Pages {
		mc.Pages = append(mc.Pages, p.Route)
	}
	for _, g := range s.cat.StudyGroups {
		mc.StudyGroups = append(mc.StudyGroups, g.Title)
	}
	for _, t := range s.cat.Tutors {
		mc.Tutors = append(mc.Tutors, model.TutorContext{Name: t.Name, Subjects: t.Subjects})
	}
	for _, q := range s.cat.Quizzes {
		mc.Quizzes = append(mc.Quizzes, q.Slug)
	}
	return mc
}
