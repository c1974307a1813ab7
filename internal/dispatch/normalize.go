package dispatch

import (
	"strings"
	"time"
)

// DefaultTime is the canonical session time used when the model supplies no
// time. Explicit times in the user's message are not parsed locally; only the
// model-supplied time field is honored.
const DefaultTime = "3:00 PM"

const dateLayout = "2006-01-02"

var dateLayouts = []string{
	dateLayout,
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// NormalizeDate coerces a loosely-specified date into canonical YYYY-MM-DD
// form. Absent or unparseable input defaults to tomorrow: a scheduling
// request without an explicit date means "the next available day".
func NormalizeDate(input string, now time.Time) string {
	input = strings.TrimSpace(input)

	switch strings.ToLower(input) {
	case "today":
		return now.Format(dateLayout)
	case "", "tomorrow":
		return now.AddDate(0, 0, 1).Format(dateLayout)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, input); err == nil {
			return t.Format(dateLayout)
		}
	}
	return now.AddDate(0, 0, 1).Format(dateLayout)
}

// NormalizeTime passes a model-supplied time through, defaulting to the
// canonical 3:00 PM when absent or blank.
func NormalizeTime(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return DefaultTime
	}
	return input
}

// NormalizeDuration maps free-text duration hints onto one of three canonical
// buckets. This is intentional lossy bucketing, not a duration parser.
func NormalizeDuration(input string) string {
	lower := strings.ToLower(input)
	switch {
	case strings.Contains(lower, "1.5") || strings.Contains(lower, "90"):
		return "1.5 hours"
	case strings.Contains(lower, "2"):
		return "2 hours"
	default:
		return "1 hour"
	}
}
