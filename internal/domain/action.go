// Package domain contains core domain types for the MathPeer application.
package domain

// ActionKind identifies one supported side effect of a chat turn.
type ActionKind string

const (
	ActionNavigate        ActionKind = "navigate"
	ActionJoinGroup       ActionKind = "join_group"
	ActionLeaveGroup      ActionKind = "leave_group"
	ActionBookSession     ActionKind = "book_session"
	ActionAddScheduleItem ActionKind = "add_schedule_item"
	ActionAddGoal         ActionKind = "add_goal"
	ActionCreatePost      ActionKind = "create_post"
	ActionStartQuiz       ActionKind = "start_quiz"
	ActionNone            ActionKind = "none"
)

// KnownActionKinds is the closed action vocabulary. Anything the model
// service returns outside this set is coerced to ActionNone.
var KnownActionKinds = map[ActionKind]bool{
	ActionNavigate:        true,
	ActionJoinGroup:       true,
	ActionLeaveGroup:      true,
	ActionBookSession:     true,
	ActionAddScheduleItem: true,
	ActionAddGoal:         true,
	ActionCreatePost:      true,
	ActionStartQuiz:       true,
	ActionNone:            true,
}

// Action is the validated result of interpreting a user request. Kind is
// always a member of KnownActionKinds; only the fields relevant to that kind
// carry meaning.
type Action struct {
	Kind ActionKind

	// navigate
	Route string

	// join_group / leave_group
	GroupTitle string

	// book_session
	TutorName string
	Subject   string
	Date      string
	Time      string
	Duration  string

	// add_schedule_item / add_goal / create_post
	Title    string
	ItemType string
	Target   int
	Body     string
	Tag      string

	// start_quiz
	Slug       string
	Difficulty string
}

// NoAction is the zero side effect.
func NoAction() Action {
	return Action{Kind: ActionNone}
}

// IsGated reports whether the action kind requires an authenticated session
// before its side effect may execute. Posting and quizzes are permitted
// pseudonymously.
func (a Action) IsGated() bool {
	switch a.Kind {
	case ActionJoinGroup, ActionLeaveGroup, ActionBookSession, ActionAddScheduleItem, ActionAddGoal:
		return true
	default:
		return false
	}
}
