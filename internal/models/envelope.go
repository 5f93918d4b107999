package models

import "time"

// ChatEnvelope is the parsed response to a chat send. Crisis fields are
// relayed exactly as the backend returned them; the client never infers a
// crisis on its own.
type ChatEnvelope struct {
	SessionID       string
	Response        string
	IsCrisis        bool
	EmergencyNumber string
	QuickReplies    []string
}

// Exchange is the result of one send: the two messages appended to the
// transcript plus the envelope they came from.
type Exchange struct {
	UserMessage      Message
	AssistantMessage Message
	Envelope         ChatEnvelope

	// Degraded is true when the assistant message is the local fallback
	// substituted after a transport failure.
	Degraded bool
}

// SessionSummary describes one past conversation as listed by the backend.
type SessionSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SessionDetail is a full conversation as returned by the backend.
type SessionDetail struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
}
