package api

import (
	"errors"
	"testing"

	apierrors "github.com/serenelabs/serene/internal/errors"
)

func TestParseChatEnvelopeFields(t *testing.T) {
	body := `{
		"session_id": "sess-1",
		"response": "I hear you.",
		"is_crisis": true,
		"emergency_number": "911",
		"quick_replies": ["Tell me more", "I need help"]
	}`

	env, err := parseChatEnvelope([]byte(body))
	if err != nil {
		t.Fatalf("parseChatEnvelope() error = %v", err)
	}

	if env.SessionID != "sess-1" {
		t.Errorf("SessionID = %q, want %q", env.SessionID, "sess-1")
	}
	if env.Response != "I hear you." {
		t.Errorf("Response = %q", env.Response)
	}
	if !env.IsCrisis {
		t.Error("IsCrisis = false, want true")
	}
	if env.EmergencyNumber != "911" {
		t.Errorf("EmergencyNumber = %q, want %q", env.EmergencyNumber, "911")
	}
	if len(env.QuickReplies) != 2 || env.QuickReplies[0] != "Tell me more" {
		t.Errorf("QuickReplies = %v", env.QuickReplies)
	}
}

func TestParseChatEnvelopeCrisisDefaults(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"is_crisis absent", `{"session_id":"s","response":"ok"}`},
		{"is_crisis null", `{"session_id":"s","response":"ok","is_crisis":null}`},
		{"is_crisis malformed", `{"session_id":"s","response":"ok","is_crisis":"maybe"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := parseChatEnvelope([]byte(tt.body))
			if err != nil {
				t.Fatalf("parseChatEnvelope() error = %v", err)
			}
			if env.IsCrisis {
				t.Error("IsCrisis = true, want false for ambiguous input")
			}
		})
	}
}

func TestParseChatEnvelopeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid JSON", `{not json`},
		{"missing response", `{"session_id":"s"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseChatEnvelope([]byte(tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, apierrors.ErrInvalidResponse) {
				t.Errorf("expected ErrInvalidResponse, got %v", err)
			}
		})
	}
}

func TestParseChatEnvelopeSkipsEmptyQuickReplies(t *testing.T) {
	body := `{"response":"ok","quick_replies":["one","","two"]}`

	env, err := parseChatEnvelope([]byte(body))
	if err != nil {
		t.Fatalf("parseChatEnvelope() error = %v", err)
	}
	if len(env.QuickReplies) != 2 {
		t.Errorf("QuickReplies = %v, want empty entries dropped", env.QuickReplies)
	}
}
