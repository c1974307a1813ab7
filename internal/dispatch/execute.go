package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/mathpeer/mathpeer/internal/catalog"
	"github.com/mathpeer/mathpeer/internal/domain"
	"github.com/mathpeer/mathpeer/internal/notify"
	"github.com/mathpeer/mathpeer/internal/store"
)

const defaultGoalTarget = 10

// Notifier publishes a record-change notification after each persisted write
// so open UI views can refresh.
type Notifier interface {
	Publish(userID, topic string)
}

// Outcome is what the executor hands back to the client instead of acting on
// a browser directly: a route to navigate to, or an authentication redirect
// preserving the intended destination. Both empty means no visible effect.
type Outcome struct {
	Navigate     string `json:"navigate,omitempty"`
	AuthRedirect string `json:"auth_redirect,omitempty"`
}

// Executor performs the persisted-state mutation and/or navigation for each
// validated action kind. It is a stateless one-shot dispatcher: every branch
// is a no-op on missing or invalid data rather than an error, so the worst
// outcome of any failure path is that the requested side effect did not
// happen.
type Executor struct {
	repo     store.Repository
	resolver *Resolver
	notifier Notifier

	now   func() time.Time
	newID func() string
}

// NewExecutor creates an Executor over the given repository, catalog, and
// notifier.
func NewExecutor(repo store.Repository, cat *catalog.Catalog, notifier Notifier) *Executor {
	return &Executor{
		repo:     repo,
		resolver: NewResolver(cat),
		notifier: notifier,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// authRedirect builds the auth entry point encoding the page the user should
// return to after signing in.
func authRedirect(destination string) string {
	return "/auth?next=" + url.QueryEscape(destination)
}

// gatedDestination maps a gated action kind to the page the user intended to
// reach.
func gatedDestination(kind domain.ActionKind) string {
	switch kind {
	case domain.ActionJoinGroup, domain.ActionLeaveGroup:
		return "/study-groups"
	case domain.ActionBookSession:
		return "/tutors"
	case domain.ActionAddScheduleItem:
		return "/schedule"
	case domain.ActionAddGoal:
		return "/dashboard"
	default:
		return "/dashboard"
	}
}

// Execute runs one validated action for the user. Session state is read by
// the caller at execution time, never cached across turns. Errors are
// storage-level only; the action semantics themselves never fail.
func (e *Executor) Execute(ctx context.Context, userID string, sess domain.SessionState, a domain.Action) (Outcome, error) {
	if a.IsGated() && !sess.Authenticated {
		slog.Info("gated action attempted unauthenticated", "user_id", userID, "kind", a.Kind)
		return Outcome{AuthRedirect: authRedirect(gatedDestination(a.Kind))}, nil
	}

	switch a.Kind {
	case domain.ActionNavigate:
		route, ok := e.resolver.ResolveRoute(a.Route)
		if !ok {
			return Outcome{}, nil
		}
		return Outcome{Navigate: route}, nil

	case domain.ActionStartQuiz:
		route, ok := e.resolver.ResolveQuizRoute(a.Slug, a.Difficulty)
		if !ok {
			return Outcome{}, nil
		}
		return Outcome{Navigate: route}, nil

	case domain.ActionJoinGroup:
		if err := e.repo.JoinGroup(ctx, userID, a.GroupTitle); err != nil {
			return Outcome{}, fmt.Errorf("join group: %w", err)
		}
		e.notifier.Publish(userID, notify.TopicGroups)
		return Outcome{}, nil

	case domain.ActionLeaveGroup:
		if err := e.repo.LeaveGroup(ctx, userID, a.GroupTitle); err != nil {
			return Outcome{}, fmt.Errorf("leave group: %w", err)
		}
		e.notifier.Publish(userID, notify.TopicGroups)
		return Outcome{}, nil

	case domain.ActionBookSession:
		return e.bookSession(ctx, userID, a)

	case domain.ActionAddScheduleItem:
		return e.addScheduleItem(ctx, userID, a)

	case domain.ActionAddGoal:
		return e.addGoal(ctx, userID, a)

	case domain.ActionCreatePost:
		return e.createPost(ctx, userID, sess, a)

	case domain.ActionNone:
		return Outcome{}, nil

	default:
		return Outcome{}, nil
	}
}

func (e *Executor) bookSession(ctx context.Context, userID string, a domain.Action) (Outcome, error) {
	tutor := e.resolver.ResolveTutor(a.TutorName, a.Subject)

	subject := a.Subject
	if subject == "" && len(tutor.Subjects) > 0 {
		subject = tutor.Subjects[0]
	}

	booking := domain.Booking{
		ID:        e.newID(),
		TutorName: tutor.Name,
		Subject:   subject,
		Date:      NormalizeDate(a.Date, e.now()),
		Time:      NormalizeTime(a.Time),
		Duration:  NormalizeDuration(a.Duration),
		Status:    "confirmed",
		CreatedAt: e.now(),
	}

	if err := e.repo.AppendBooking(ctx, userID, booking); err != nil {
		return Outcome{}, fmt.Errorf("append booking: %w", err)
	}
	slog.Info("session booked", "user_id", userID, "tutor", tutor.Name, "date", booking.Date, "time", booking.Time)
	e.notifier.Publish(userID, notify.TopicBookings)
	return Outcome{}, nil
}

func (e *Executor) addScheduleItem(ctx context.Context, userID string, a domain.Action) (Outcome, error) {
	if a.Title == "" {
		return Outcome{}, nil
	}

	itemType := a.ItemType
	if itemType == "" {
		itemType = "session"
	}

	item := domain.ScheduleItem{
		ID:        e.newID(),
		Title:     a.Title,
		Date:      NormalizeDate(a.Date, e.now()),
		Time:      NormalizeTime(a.Time),
		Type:      itemType,
		CreatedAt: e.now(),
	}

	if err := e.repo.AppendScheduleItem(ctx, userID, item); err != nil {
		return Outcome{}, fmt.Errorf("append schedule item: %w", err)
	}
	e.notifier.Publish(userID, notify.TopicSchedule)
	return Outcome{}, nil
}

func (e *Executor) addGoal(ctx context.Context, userID string, a domain.Action) (Outcome, error) {
	if a.Title == "" {
		return Outcome{}, nil
	}

	target := a.Target
	if target <= 0 {
		target = defaultGoalTarget
	}

	goal := domain.Goal{
		ID:        e.newID(),
		Title:     a.Title,
		Target:    target,
		Progress:  0,
		Label:     domain.ProgressLabel(0, target),
		CreatedAt: e.now(),
	}

	if err := e.repo.PrependGoal(ctx, userID, goal); err != nil {
		return Outcome{}, fmt.Errorf("prepend goal: %w", err)
	}
	e.notifier.Publish(userID, notify.TopicGoals)
	return Outcome{}, nil
}

func (e *Executor) createPost(ctx context.Context, userID string, sess domain.SessionState, a domain.Action) (Outcome, error) {
	if a.Title == "" || a.Body == "" {
		return Outcome{}, nil
	}

	tag := a.Tag
	if tag == "" {
		tag = "Other"
	}

	post := domain.Post{
		ID:        e.newID(),
		Title:     a.Title,
		Body:      a.Body,
		Tag:       tag,
		Author:    sess.AuthorName(),
		CreatedAt: e.now(),
	}

	if err := e.repo.AppendPost(ctx, post); err != nil {
		return Outcome{}, fmt.Errorf("append post: %w", err)
	}
	e.notifier.Publish(userID, notify.TopicPosts)
	return Outcome{}, nil
}
