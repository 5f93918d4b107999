// Package devserver is an in-memory stand-in for the Serene backend, used
// for local development and integration tests. Its scripted responder is not
// the production crisis classifier; it only flags unmistakable phrasing so
// the escalation path can be exercised end to end.
package devserver

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/serenelabs/serene/internal/crisis"
	"github.com/serenelabs/serene/internal/models"
)

// Envelope is the wire shape of a chat send response.
type Envelope struct {
	SessionID       string   `json:"session_id"`
	Response        string   `json:"response"`
	IsCrisis        bool     `json:"is_crisis"`
	EmergencyNumber string   `json:"emergency_number,omitempty"`
	QuickReplies    []string `json:"quick_replies,omitempty"`
}

// Service holds the in-memory conversation state.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*session
	order    []string
}

type session struct {
	id        string
	title     string
	messages  []models.Message
	updatedAt time.Time
}

// NewService creates an empty Service.
func NewService() *Service {
	return &Service{sessions: make(map[string]*session)}
}

// Exchange runs one chat turn, creating a session when no id is given.
func (s *Service) Exchange(sessionID, message string) (Envelope, error) {
	if strings.TrimSpace(message) == "" {
		return Envelope{}, fmt.Errorf("message is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{id: uuid.NewString()}
		s.sessions[sess.id] = sess
		s.order = append(s.order, sess.id)
	}

	now := time.Now().UTC()
	sess.messages = append(sess.messages, models.Message{
		Role:      models.RoleUser,
		Content:   message,
		Timestamp: now,
	})
	if sess.title == "" {
		sess.title = message
		if len(sess.title) > 50 {
			sess.title = sess.title[:50] + "..."
		}
	}

	envelope := respond(message)
	envelope.SessionID = sess.id

	sess.messages = append(sess.messages, models.Message{
		Role:      models.RoleAssistant,
		Content:   envelope.Response,
		Timestamp: now.Add(time.Millisecond),
	})
	sess.updatedAt = now

	return envelope, nil
}

// List returns session summaries, most recent first.
func (s *Service) List() []models.SessionSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]models.SessionSummary, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		sess := s.sessions[s.order[i]]
		summaries = append(summaries, models.SessionSummary{
			ID:           sess.id,
			Title:        sess.title,
			MessageCount: len(sess.messages),
			UpdatedAt:    sess.updatedAt,
		})
	}
	return summaries
}

// Get returns one session with its transcript.
func (s *Service) Get(id string) (*models.SessionDetail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return &models.SessionDetail{
		ID:       sess.id,
		Title:    sess.title,
		Messages: append([]models.Message(nil), sess.messages...),
	}, true
}

// crisisPhrases trip the scripted crisis flag. Deliberately narrow: the dev
// responder should be predictable, not clever.
var crisisPhrases = []string{
	"kill myself",
	"end my life",
	"hurt myself",
	"want to die",
	"suicide",
}

func respond(message string) Envelope {
	lower := strings.ToLower(message)

	for _, phrase := range crisisPhrases {
		if strings.Contains(lower, phrase) {
			return Envelope{
				Response: "I'm really concerned about what you just shared. " +
					"You don't have to face this alone, and immediate support is available. " +
					"Please reach out to the crisis line now.",
				IsCrisis:        true,
				EmergencyNumber: "911",
			}
		}
	}

	switch {
	case strings.Contains(lower, "anxious"), strings.Contains(lower, "anxiety"):
		return Envelope{
			Response: "It sounds like anxiety is weighing on you today. " +
				"Would you like to try a short grounding exercise together?",
			QuickReplies: []string{
				"Yes, let's try it",
				"Tell me more first",
				"Not right now",
			},
		}
	case strings.Contains(lower, "sad"), strings.Contains(lower, "down"):
		return Envelope{
			Response: "Thank you for telling me. Feeling low is hard, and it " +
				"matters that you said it out loud. What's been on your mind the most?",
			QuickReplies: []string{
				"Work or school",
				"Relationships",
				"I'm not sure",
			},
		}
	default:
		return Envelope{
			Response: "I'm here with you. Tell me a bit more about how " +
				"you're feeling right now.",
			QuickReplies: []string{
				"I feel anxious",
				"I feel okay",
				"I just want to talk",
			},
		}
	}
}

// resourceSets is the devserver's tiny stand-in for the backend's resource
// database.
var resourceSets = map[string]models.CrisisResourceSet{
	"US": crisis.FallbackResources(),
	"GB": {
		Country:         "GB",
		CountryName:     "United Kingdom",
		EmergencyNumber: "999",
		Hotlines: []models.Hotline{
			{Name: "Samaritans", Number: "116 123", Available: "24/7"},
		},
		OnlineResources: []models.OnlineResource{
			{Name: "Samaritans", URL: "https://www.samaritans.org"},
		},
	},
}

// Resources returns the resource set for a country, defaulting to US when
// no country is given.
func (s *Service) Resources(country string) (models.CrisisResourceSet, bool) {
	if country == "" {
		country = "US"
	}
	set, ok := resourceSets[strings.ToUpper(country)]
	return set, ok
}
