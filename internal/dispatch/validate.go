package dispatch

import (
	"strings"

	"github.com/mathpeer/mathpeer/internal/domain"
)

// Validate maps a candidate payload onto a well-formed Action. The type must
// be a member of the closed vocabulary and kind-specific required fields must
// be present; anything else normalizes to ActionNone. Optional fields absent
// from the payload stay unspecified and are defaulted downstream. Validate
// never fails, so every action reaching the executor is total.
func Validate(payload *ActionPayload) domain.Action {
	if payload == nil {
		return domain.NoAction()
	}

	kind := domain.ActionKind(strings.TrimSpace(payload.Type))
	if !domain.KnownActionKinds[kind] {
		return domain.NoAction()
	}

	data := payload.Data

	switch kind {
	case domain.ActionNavigate:
		return domain.Action{
			Kind:  kind,
			Route: stringField(data, "route"),
		}

	case domain.ActionJoinGroup, domain.ActionLeaveGroup:
		title := stringField(data, "groupTitle")
		if title == "" {
			return domain.NoAction()
		}
		return domain.Action{Kind: kind, GroupTitle: title}

	case domain.ActionBookSession:
		return domain.Action{
			Kind:      kind,
			TutorName: stringField(data, "tutorName"),
			Subject:   stringField(data, "subject"),
			Date:      stringField(data, "date"),
			Time:      stringField(data, "time"),
			Duration:  stringField(data, "duration"),
		}

	case domain.ActionAddScheduleItem:
		return domain.Action{
			Kind:     kind,
			Title:    stringField(data, "title"),
			Date:     stringField(data, "date"),
			Time:     stringField(data, "time"),
			ItemType: stringField(data, "type"),
		}

	case domain.ActionAddGoal:
		return domain.Action{
			Kind:   kind,
			Title:  stringField(data, "title"),
			Target: intField(data, "target"),
		}

	case domain.ActionCreatePost:
		title := stringField(data, "title")
		body := stringField(data, "body")
		if title == "" || body == "" {
			return domain.NoAction()
		}
		return domain.Action{
			Kind:  kind,
			Title: title,
			Body:  body,
			Tag:   stringField(data, "tag"),
		}

	case domain.ActionStartQuiz:
		slug := stringField(data, "slug")
		if slug == "" {
			return domain.NoAction()
		}
		return domain.Action{
			Kind:       kind,
			Slug:       slug,
			Difficulty: stringField(data, "difficulty"),
		}

	default:
		return domain.NoAction()
	}
}

func stringField(data map[string]interface{}, key string) string {
	if data == nil {
		return ""
	}
	if v, ok := data[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// intField reads a numeric field. JSON numbers decode as float64; string
// digits from the model are tolerated too.
func intField(data map[string]interface{}, key string) int {
	if data == nil {
		return 0
	}
	switch v := data[key].(type) {
	case float64:
		return int(v)
	case string:
		n := 0
		for _, r := range strings.TrimSpace(v) {
			if r < '0' || r > '9' {
				return 0
			}
			n = n*10 + int(r-'0')
		}
		return n
	default:
		return 0
	}
}
