package dispatch

import (
	"testing"

	"github.com/mathpeer/mathpeer/internal/domain"
)

func TestValidateCoercesToNone(t *testing.T) {
	tests := []struct {
		name    string
		payload *ActionPayload
	}{
		{name: "nil payload", payload: nil},
		{name: "unknown kind", payload: &ActionPayload{Type: "delete_everything"}},
		{name: "empty kind", payload: &ActionPayload{Type: ""}},
		{name: "whitespace kind", payload: &ActionPayload{Type: "   "}},
		{name: "join_group without title", payload: &ActionPayload{Type: "join_group", Data: map[string]interface{}{}}},
		{name: "join_group with blank title", payload: &ActionPayload{Type: "join_group", Data: map[string]interface{}{"groupTitle": "  "}}},
		{name: "join_group with non-string title", payload: &ActionPayload{Type: "join_group", Data: map[string]interface{}{"groupTitle": 42.0}}},
		{name: "create_post without body", payload: &ActionPayload{Type: "create_post", Data: map[string]interface{}{"title": "Help"}}},
		{name: "create_post without title", payload: &ActionPayload{Type: "create_post", Data: map[string]interface{}{"body": "text"}}},
		{name: "start_quiz without slug", payload: &ActionPayload{Type: "start_quiz", Data: map[string]interface{}{"difficulty": "hard"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.payload)
			if got.Kind != domain.ActionNone {
				t.Errorf("kind = %q, want %q", got.Kind, domain.ActionNone)
			}
		})
	}
}

func TestValidateBookSessionOptionalFields(t *testing.T) {
	// book_session has no required fields; absent optionals stay unspecified
	// and are defaulted downstream.
	got := Validate(&ActionPayload{Type: "book_session", Data: map[string]interface{}{"subject": "Calculus"}})
	if got.Kind != domain.ActionBookSession {
		t.Fatalf("kind = %q, want %q", got.Kind, domain.ActionBookSession)
	}
	if got.Subject != "Calculus" {
		t.Errorf("subject = %q, want Calculus", got.Subject)
	}
	if got.TutorName != "" || got.Date != "" || got.Time != "" || got.Duration != "" {
		t.Errorf("optional fields should stay empty, got %+v", got)
	}

	got = Validate(&ActionPayload{Type: "book_session"})
	if got.Kind != domain.ActionBookSession {
		t.Errorf("nil data: kind = %q, want %q", got.Kind, domain.ActionBookSession)
	}
}

func TestValidateWellFormedActions(t *testing.T) {
	tests := []struct {
		name    string
		payload *ActionPayload
		check   func(t *testing.T, a domain.Action)
	}{
		{
			name:    "navigate",
			payload: &ActionPayload{Type: "navigate", Data: map[string]interface{}{"route": "/tutors"}},
			check: func(t *testing.T, a domain.Action) {
				if a.Kind != domain.ActionNavigate || a.Route != "/tutors" {
					t.Errorf("got %+v", a)
				}
			},
		},
		{
			name:    "leave_group",
			payload: &ActionPayload{Type: "leave_group", Data: map[string]interface{}{"groupTitle": "Calculus Crew"}},
			check: func(t *testing.T, a domain.Action) {
				if a.Kind != domain.ActionLeaveGroup || a.GroupTitle != "Calculus Crew" {
					t.Errorf("got %+v", a)
				}
			},
		},
		{
			name:    "add_goal with numeric target",
			payload: &ActionPayload{Type: "add_goal", Data: map[string]interface{}{"title": "Practice", "target": 5.0}},
			check: func(t *testing.T, a domain.Action) {
				if a.Kind != domain.ActionAddGoal || a.Target != 5 {
					t.Errorf("got %+v", a)
				}
			},
		},
		{
			name:    "add_goal with string target",
			payload: &ActionPayload{Type: "add_goal", Data: map[string]interface{}{"title": "Practice", "target": "7"}},
			check: func(t *testing.T, a domain.Action) {
				if a.Target != 7 {
					t.Errorf("target = %d, want 7", a.Target)
				}
			},
		},
		{
			name:    "add_goal with junk target",
			payload: &ActionPayload{Type: "add_goal", Data: map[string]interface{}{"title": "Practice", "target": "lots"}},
			check: func(t *testing.T, a domain.Action) {
				if a.Target != 0 {
					t.Errorf("target = %d, want 0 (defaulted downstream)", a.Target)
				}
			},
		},
		{
			name:    "start_quiz",
			payload: &ActionPayload{Type: "start_quiz", Data: map[string]interface{}{"slug": "algebra-basics", "difficulty": "easy"}},
			check: func(t *testing.T, a domain.Action) {
				if a.Kind != domain.ActionStartQuiz || a.Slug != "algebra-basics" || a.Difficulty != "easy" {
					t.Errorf("got %+v", a)
				}
			},
		},
		{
			name:    "create_post",
			payload: &ActionPayload{Type: "create_post", Data: map[string]interface{}{"title": "Stuck", "body": "help with limits"}},
			check: func(t *testing.T, a domain.Action) {
				if a.Kind != domain.ActionCreatePost || a.Title != "Stuck" || a.Body != "help with limits" {
					t.Errorf("got %+v", a)
				}
				if a.Tag != "" {
					t.Errorf("tag should stay unspecified, got %q", a.Tag)
				}
			},
		},
		{
			name:    "none",
			payload: &ActionPayload{Type: "none"},
			check: func(t *testing.T, a domain.Action) {
				if a.Kind != domain.ActionNone {
					t.Errorf("got %+v", a)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Validate(tt.payload))
		})
	}
}
