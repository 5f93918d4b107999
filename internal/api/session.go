package api

import (
	"strings"
	"sync"
	"time"

	apierrors "github.com/serenelabs/serene/internal/errors"
	"github.com/serenelabs/serene/internal/models"
)

// CrisisObserver consumes the crisis fields of each exchange. Implemented by
// crisis.Escalator; a session without an observer simply relays the fields.
type CrisisObserver interface {
	Observe(isCrisis bool, emergencyNumber string)
	Reset()
}

// ChatSession holds one conversation: the session id assigned by the backend
// on the first round-trip, the ordered transcript, and the quick replies from
// the latest assistant turn. The transcript and the crisis observer are only
// ever reset together, so crisis state cannot survive a session swap.
type ChatSession struct {
	client *Client

	mu           sync.RWMutex
	sessionID    string
	transcript   []models.Message
	quickReplies []string
	sending      bool
	location     models.Location
	observer     CrisisObserver
}

// ChatOption configures a ChatSession
type ChatOption func(*ChatSession)

// WithCrisisObserver attaches the escalation handler for this session
func WithCrisisObserver(observer CrisisObserver) ChatOption {
	return func(s *ChatSession) {
		s.observer = observer
	}
}

// WithLocation attaches a previously acquired location to all sends
func WithLocation(loc models.Location) ChatOption {
	return func(s *ChatSession) {
		s.location = loc
	}
}

// SetLocation replaces the location attached to future sends. Location is
// acquired once per run; this exists for the late-arriving acquisition.
func (s *ChatSession) SetLocation(loc models.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.location = loc
}

// Send dispatches one user message and appends the reply to the transcript.
//
// Empty or whitespace-only input returns ErrEmptyMessage without touching
// the transcript or the network. A Send while another is outstanding returns
// ErrSendInFlight. On transport failure the fixed fallback assistant message
// is appended, the exchange is returned with Degraded set, and the transport
// error is returned alongside for diagnostics; crisis state is not altered.
func (s *ChatSession) Send(text string) (*models.Exchange, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, apierrors.ErrEmptyMessage
	}

	userMsg := models.Message{
		Role:      models.RoleUser,
		Content:   trimmed,
		Timestamp: time.Now(),
	}

	s.mu.Lock()
	if s.sending {
		s.mu.Unlock()
		return nil, apierrors.ErrSendInFlight
	}
	s.sending = true
	// Quick replies belong to the previous assistant turn; clear them before
	// the request goes out.
	s.quickReplies = nil
	s.transcript = append(s.transcript, userMsg)
	sessionID := s.sessionID
	loc := s.location
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.sending = false
		s.mu.Unlock()
	}()

	envelope, err := s.client.sendChat(trimmed, sessionID, loc)
	if err != nil {
		fallback := models.Message{
			Role:      models.RoleAssistant,
			Content:   models.FallbackReply,
			Timestamp: time.Now(),
		}
		s.mu.Lock()
		s.transcript = append(s.transcript, fallback)
		s.mu.Unlock()

		return &models.Exchange{
			UserMessage:      userMsg,
			AssistantMessage: fallback,
			Degraded:         true,
		}, err
	}

	assistantMsg := models.Message{
		Role:      models.RoleAssistant,
		Content:   envelope.Response,
		Timestamp: time.Now(),
	}

	s.mu.Lock()
	if envelope.SessionID != "" {
		s.sessionID = envelope.SessionID
	}
	s.transcript = append(s.transcript, assistantMsg)
	s.quickReplies = append([]string(nil), envelope.QuickReplies...)
	observer := s.observer
	s.mu.Unlock()

	if observer != nil {
		observer.Observe(envelope.IsCrisis, envelope.EmergencyNumber)
	}

	return &models.Exchange{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Envelope:         envelope,
	}, nil
}

// LoadSession replaces this conversation wholesale with a stored one and
// resets the crisis observer, permitting a fresh escalation in the loaded
// session.
func (s *ChatSession) LoadSession(id string) error {
	detail, err := s.client.GetSession(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.sessionID = detail.ID
	s.transcript = append([]models.Message(nil), detail.Messages...)
	s.quickReplies = nil
	observer := s.observer
	s.mu.Unlock()

	if observer != nil {
		observer.Reset()
	}
	return nil
}

// Reset starts a fresh, empty session.
func (s *ChatSession) Reset() {
	s.mu.Lock()
	s.sessionID = ""
	s.transcript = nil
	s.quickReplies = nil
	observer := s.observer
	s.mu.Unlock()

	if observer != nil {
		observer.Reset()
	}
}

// SessionID returns the backend-assigned id, empty before the first
// successful round-trip.
func (s *ChatSession) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// Messages returns a copy of the transcript.
func (s *ChatSession) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Message(nil), s.transcript...)
}

// QuickReplies returns a copy of the latest suggestion list.
func (s *ChatSession) QuickReplies() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.quickReplies...)
}

// Sending reports whether a send is currently in flight.
func (s *ChatSession) Sending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sending
}
