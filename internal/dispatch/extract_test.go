package dispatch

import "testing"

func TestExtractEnvelope(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantNil   bool
		wantReply string
		wantType  string
	}{
		{
			name:      "bare JSON",
			raw:       `{"reply":"Hi!","action":{"type":"none","data":{}}}`,
			wantReply: "Hi!",
			wantType:  "none",
		},
		{
			name:      "JSON wrapped in prose",
			raw:       "Sure, here you go: {\"reply\":\"Done\",\"action\":{\"type\":\"navigate\",\"data\":{\"route\":\"/tutors\"}}} hope that helps!",
			wantReply: "Done",
			wantType:  "navigate",
		},
		{
			name:      "reply only, no action",
			raw:       `{"reply":"Just chatting"}`,
			wantReply: "Just chatting",
		},
		{
			name:    "no braces at all",
			raw:     "I could not produce a structured answer.",
			wantNil: true,
		},
		{
			name:    "closing brace before opening",
			raw:     "} oops {",
			wantNil: true,
		},
		{
			name:    "braces but not JSON",
			raw:     "behold {not json at all}",
			wantNil: true,
		},
		{
			name:    "empty input",
			raw:     "",
			wantNil: true,
		},
		{
			name: "multiple fragments take the widest span",
			// The widest span is not valid JSON here, which is the accepted
			// over-capture behavior, not a bug.
			raw:     `{"reply":"a"} and also {"reply":"b"}`,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := ExtractEnvelope(tt.raw)
			if tt.wantNil {
				if env != nil {
					t.Fatalf("expected nil envelope, got %+v", env)
				}
				return
			}
			if env == nil {
				t.Fatal("expected envelope, got nil")
			}
			if env.Reply != tt.wantReply {
				t.Errorf("reply = %q, want %q", env.Reply, tt.wantReply)
			}
			if tt.wantType != "" {
				if env.Action == nil {
					t.Fatal("expected action payload, got nil")
				}
				if env.Action.Type != tt.wantType {
					t.Errorf("action type = %q, want %q", env.Action.Type, tt.wantType)
				}
			}
		})
	}
}
