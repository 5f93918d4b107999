package models

// Backend API paths, relative to the configured base URL.
const (
	PathChatSend       = "/api/chat/send"
	PathChatSessions   = "/api/chat/sessions"
	PathCrisisResource = "/api/crisis/resources"
)

// FallbackReply is substituted locally when a send fails. It keeps the
// conversation usable without pretending the backend answered.
const FallbackReply = "I'm having trouble processing that right now. " +
	"Please give me a moment and try again. If you need immediate support, " +
	"help is always available through your local crisis line."

// DefaultHeaders returns the headers sent with every API request.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   "serene-cli/" + Version,
	}
}

// Version is the client version reported to the backend. Overridden at
// build time via -ldflags.
var Version = "0.1.0"
