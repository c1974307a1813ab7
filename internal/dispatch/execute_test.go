package dispatch

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mathpeer/mathpeer/internal/catalog"
	"github.com/mathpeer/mathpeer/internal/domain"
	"github.com/mathpeer/mathpeer/internal/store"
)

type recordingNotifier struct {
	events []string
}

func (n *recordingNotifier) Publish(userID, topic string) {
	n.events = append(n.events, userID+":"+topic)
}

func newTestExecutor(repo store.Repository) (*Executor, *recordingNotifier) {
	notifier := &recordingNotifier{}
	e := NewExecutor(repo, catalog.Default(), notifier)
	e.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	counter := 0
	e.newID = func() string {
		counter++
		return fmt.Sprintf("id-%d", counter)
	}
	return e, notifier
}

var authedSession = domain.SessionState{Authenticated: true, DisplayName: "Alex"}

func TestExecuteJoinGroupIdempotent(t *testing.T) {
	repo := store.NewMemory()
	e, notifier := newTestExecutor(repo)
	ctx := context.Background()

	action := domain.Action{Kind: domain.ActionJoinGroup, GroupTitle: "Calculus Crew"}
	for i := 0; i < 2; i++ {
		if _, err := e.Execute(ctx, "u1", authedSession, action); err != nil {
			t.Fatalf("execute: %v", err)
		}
	}

	groups, err := repo.JoinedGroups(ctx, "u1")
	if err != nil {
		t.Fatalf("joined groups: %v", err)
	}
	if len(groups) != 1 || groups[0] != "Calculus Crew" {
		t.Errorf("groups = %v, want exactly one Calculus Crew", groups)
	}
	if len(notifier.events) != 2 {
		t.Errorf("notifications = %d, want 2 (one per write)", len(notifier.events))
	}
}

func TestExecuteLeaveGroupIdempotent(t *testing.T) {
	repo := store.NewMemory()
	e, _ := newTestExecutor(repo)
	ctx := context.Background()

	if _, err := e.Execute(ctx, "u1", authedSession, domain.Action{Kind: domain.ActionJoinGroup, GroupTitle: "Stats Squad"}); err != nil {
		t.Fatalf("join: %v", err)
	}

	leave := domain.Action{Kind: domain.ActionLeaveGroup, GroupTitle: "Stats Squad"}
	for i := 0; i < 2; i++ {
		if _, err := e.Execute(ctx, "u1", authedSession, leave); err != nil {
			t.Fatalf("leave: %v", err)
		}
	}

	groups, _ := repo.JoinedGroups(ctx, "u1")
	if len(groups) != 0 {
		t.Errorf("groups = %v, want empty", groups)
	}
}

func TestExecuteGatedActionUnauthenticated(t *testing.T) {
	repo := store.NewMemory()
	e, notifier := newTestExecutor(repo)
	ctx := context.Background()
	guest := domain.SessionState{}

	outcome, err := e.Execute(ctx, "u1", guest, domain.Action{Kind: domain.ActionBookSession, Subject: "Calculus"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if outcome.AuthRedirect == "" {
		t.Fatal("expected auth redirect")
	}
	if !strings.HasPrefix(outcome.AuthRedirect, "/auth?next=") {
		t.Errorf("auth redirect = %q", outcome.AuthRedirect)
	}
	if !strings.Contains(outcome.AuthRedirect, "%2Ftutors") {
		t.Errorf("redirect should encode the tutors page, got %q", outcome.AuthRedirect)
	}

	bookings, _ := repo.ListBookings(ctx, "u1")
	if len(bookings) != 0 {
		t.Errorf("bookings = %d, want 0 (no partial mutation)", len(bookings))
	}
	if len(notifier.events) != 0 {
		t.Errorf("notifications = %v, want none", notifier.events)
	}
}

func TestExecuteBookSession(t *testing.T) {
	repo := store.NewMemory()
	e, notifier := newTestExecutor(repo)
	ctx := context.Background()

	action := domain.Action{Kind: domain.ActionBookSession, Subject: "Calculus"}
	if _, err := e.Execute(ctx, "u1", authedSession, action); err != nil {
		t.Fatalf("execute: %v", err)
	}

	bookings, _ := repo.ListBookings(ctx, "u1")
	if len(bookings) != 1 {
		t.Fatalf("bookings = %d, want 1", len(bookings))
	}
	b := bookings[0]
	if b.TutorName != "Marcus Lee" {
		t.Errorf("tutor = %q, want Marcus Lee (resolved by subject)", b.TutorName)
	}
	if b.Subject != "Calculus" {
		t.Errorf("subject = %q", b.Subject)
	}
	if b.Date != "2026-03-15" {
		t.Errorf("date = %q, want tomorrow 2026-03-15", b.Date)
	}
	if b.Time != "3:00 PM" {
		t.Errorf("time = %q, want defaulted 3:00 PM", b.Time)
	}
	if b.Duration != "1 hour" {
		t.Errorf("duration = %q, want 1 hour", b.Duration)
	}
	if b.Status != "confirmed" {
		t.Errorf("status = %q, want confirmed", b.Status)
	}
	if b.ID == "" {
		t.Error("booking should have an ID")
	}
	if len(notifier.events) != 1 || notifier.events[0] != "u1:bookings_updated" {
		t.Errorf("notifications = %v", notifier.events)
	}
}

func TestExecuteAddGoal(t *testing.T) {
	repo := store.NewMemory()
	e, _ := newTestExecutor(repo)
	ctx := context.Background()

	t.Run("defaults target to 10", func(t *testing.T) {
		if _, err := e.Execute(ctx, "u1", authedSession, domain.Action{Kind: domain.ActionAddGoal, Title: "Practice daily"}); err != nil {
			t.Fatalf("execute: %v", err)
		}
		goals, _ := repo.ListGoals(ctx, "u1")
		if len(goals) != 1 {
			t.Fatalf("goals = %d, want 1", len(goals))
		}
		if goals[0].Target != 10 || goals[0].Progress != 0 || goals[0].Label != "0/10" {
			t.Errorf("goal = %+v", goals[0])
		}
	})

	t.Run("newest goal comes first", func(t *testing.T) {
		if _, err := e.Execute(ctx, "u1", authedSession, domain.Action{Kind: domain.ActionAddGoal, Title: "Finish worksheet", Target: 3}); err != nil {
			t.Fatalf("execute: %v", err)
		}
		goals, _ := repo.ListGoals(ctx, "u1")
		if len(goals) != 2 || goals[0].Title != "Finish worksheet" {
			t.Errorf("goals = %+v, want Finish worksheet first", goals)
		}
		if goals[0].Label != "0/3" {
			t.Errorf("label = %q, want 0/3", goals[0].Label)
		}
	})

	t.Run("blank title is a no-op", func(t *testing.T) {
		if _, err := e.Execute(ctx, "u1", authedSession, domain.Action{Kind: domain.ActionAddGoal}); err != nil {
			t.Fatalf("execute: %v", err)
		}
		goals, _ := repo.ListGoals(ctx, "u1")
		if len(goals) != 2 {
			t.Errorf("goals = %d, want 2 (no new goal)", len(goals))
		}
	})
}

func TestExecuteAddScheduleItem(t *testing.T) {
	repo := store.NewMemory()
	e, _ := newTestExecutor(repo)
	ctx := context.Background()

	if _, err := e.Execute(ctx, "u1", authedSession, domain.Action{Kind: domain.ActionAddScheduleItem, Title: "Review session"}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	items, _ := repo.ListScheduleItems(ctx, "u1")
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].Type != "session" {
		t.Errorf("type = %q, want defaulted session", items[0].Type)
	}
	if items[0].Date != "2026-03-15" || items[0].Time != "3:00 PM" {
		t.Errorf("item = %+v", items[0])
	}
}

func TestExecuteCreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("guest author when unauthenticated", func(t *testing.T) {
		repo := store.NewMemory()
		e, _ := newTestExecutor(repo)

		action := domain.Action{Kind: domain.ActionCreatePost, Title: "Stuck on limits", Body: "How do I evaluate this?"}
		if _, err := e.Execute(ctx, "u1", domain.SessionState{}, action); err != nil {
			t.Fatalf("execute: %v", err)
		}

		posts, _ := repo.ListPosts(ctx)
		if len(posts) != 1 {
			t.Fatalf("posts = %d, want 1 (posting is permitted pseudonymously)", len(posts))
		}
		if posts[0].Author != "Guest" {
			t.Errorf("author = %q, want Guest", posts[0].Author)
		}
		if posts[0].Tag != "Other" {
			t.Errorf("tag = %q, want defaulted Other", posts[0].Tag)
		}
	})

	t.Run("display name when authenticated", func(t *testing.T) {
		repo := store.NewMemory()
		e, _ := newTestExecutor(repo)

		action := domain.Action{Kind: domain.ActionCreatePost, Title: "Tip", Body: "Draw a picture first", Tag: "Geometry"}
		if _, err := e.Execute(ctx, "u1", authedSession, action); err != nil {
			t.Fatalf("execute: %v", err)
		}

		posts, _ := repo.ListPosts(ctx)
		if posts[0].Author != "Alex" || posts[0].Tag != "Geometry" {
			t.Errorf("post = %+v", posts[0])
		}
	})
}

func TestExecuteNavigate(t *testing.T) {
	repo := store.NewMemory()
	e, notifier := newTestExecutor(repo)
	ctx := context.Background()
	guest := domain.SessionState{}

	t.Run("valid route", func(t *testing.T) {
		outcome, err := e.Execute(ctx, "u1", guest, domain.Action{Kind: domain.ActionNavigate, Route: "/dashboard"})
		if err != nil {
			t.Fatalf("execute: %v", err)
		}
		if outcome.Navigate != "/dashboard" {
			t.Errorf("navigate = %q", outcome.Navigate)
		}
	})

	t.Run("route outside the allow-list is dropped", func(t *testing.T) {
		outcome, err := e.Execute(ctx, "u1", guest, domain.Action{Kind: domain.ActionNavigate, Route: "/evil.com"})
		if err != nil {
			t.Fatalf("execute: %v", err)
		}
		if outcome.Navigate != "" || outcome.AuthRedirect != "" {
			t.Errorf("outcome = %+v, want no-op", outcome)
		}
	})

	t.Run("start_quiz builds a quiz route", func(t *testing.T) {
		outcome, err := e.Execute(ctx, "u1", guest, domain.Action{Kind: domain.ActionStartQuiz, Slug: "geometry-essentials"})
		if err != nil {
			t.Fatalf("execute: %v", err)
		}
		if outcome.Navigate != "/resources?quiz=geometry-essentials" {
			t.Errorf("navigate = %q", outcome.Navigate)
		}
	})

	if len(notifier.events) != 0 {
		t.Errorf("navigation should not notify, got %v", notifier.events)
	}
}

func TestExecuteNoneIsNoOp(t *testing.T) {
	repo := store.NewMemory()
	e, notifier := newTestExecutor(repo)

	outcome, err := e.Execute(context.Background(), "u1", authedSession, domain.NoAction())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if outcome != (Outcome{}) {
		t.Errorf("outcome = %+v, want zero", outcome)
	}
	if len(notifier.events) != 0 {
		t.Errorf("notifications = %v, want none", notifier.events)
	}
}
