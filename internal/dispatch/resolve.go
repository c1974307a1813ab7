package dispatch

import (
	"net/url"
	"strings"

	"github.com/mathpeer/mathpeer/internal/catalog"
)

// Resolver resolves under-specified entity references against the static
// catalog.
type Resolver struct {
	cat *catalog.Catalog
}

// NewResolver creates a Resolver over the given catalog.
func NewResolver(cat *catalog.Catalog) *Resolver {
	return &Resolver{cat: cat}
}

// ResolveTutor picks a concrete tutor for a booking. Tie-break order:
// exact case-insensitive name match, then the first tutor whose subject list
// contains the requested subject as a case-insensitive substring, then the
// first tutor in catalog order. The fallback is deterministic and documented;
// book_session always resolves to some tutor, trading precision for
// availability.
func (r *Resolver) ResolveTutor(tutorName, subject string) catalog.Tutor {
	tutors := r.cat.Tutors

	if name := strings.TrimSpace(tutorName); name != "" {
		for _, t := range tutors {
			if strings.EqualFold(t.Name, name) {
				return t
			}
		}
	}

	if want := strings.ToLower(strings.TrimSpace(subject)); want != "" {
		for _, t := range tutors {
			for _, s := range t.Subjects {
				if strings.Contains(strings.ToLower(s), want) {
					return t
				}
			}
		}
	}

	return tutors[0]
}

// ResolveRoute accepts a navigation target only if it is a member of the
// static allow-list, preventing open redirects to arbitrary strings returned
// by the model service.
func (r *Resolver) ResolveRoute(candidate string) (string, bool) {
	route := strings.TrimSpace(candidate)
	if !r.cat.ValidRoute(route) {
		return "", false
	}
	return route, true
}

// ResolveQuizRoute constructs the quiz route for a catalog slug, carrying an
// optional difficulty query. Unknown slugs are rejected.
func (r *Resolver) ResolveQuizRoute(slug, difficulty string) (string, bool) {
	quiz, ok := r.cat.QuizBySlug(strings.TrimSpace(slug))
	if !ok {
		return "", false
	}

	values := url.Values{}
	values.Set("quiz", quiz.Slug)
	if d := strings.TrimSpace(difficulty); d != "" {
		values.Set("difficulty", d)
	}
	return "/resources?" + values.Encode(), true
}
