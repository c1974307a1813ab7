// Package dispatch implements the conversational action dispatcher: it takes
// the raw text the model service returned for a user turn, extracts the
// embedded envelope, validates the candidate action against the closed
// vocabulary, resolves under-specified entity references, gates privileged
// actions on the session, and executes the resulting side effect.
package dispatch

import (
	"encoding/json"
	"strings"
)

// Envelope is the structured payload embedded in the model service response.
type Envelope struct {
	Reply  string         `json:"reply"`
	Action *ActionPayload `json:"action"`
}

// ActionPayload is the candidate action as the model supplied it, before
// validation. Type is an open string; Data carries loosely-typed parameters.
type ActionPayload struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// ExtractEnvelope locates and parses the envelope embedded in raw model
// output, tolerating surrounding prose: it slices from the first "{" to the
// last "}" inclusive and parses that span. Multiple payload-like fragments
// collapse into the widest span, which may over-capture; that is accepted
// behavior. Returns nil when no span exists or the span does not parse —
// a recoverable condition, never an error.
func ExtractEnvelope(raw string) *Envelope {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil
	}

	var env Envelope
	if err := json.Unmarshal([]byte(raw[start:end+1]), &env); err != nil {
		return nil
	}
	return &env
}
