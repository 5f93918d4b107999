package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/serenelabs/serene/internal/crisis"
	"github.com/serenelabs/serene/internal/models"
)

// fakeSession implements ChatSessionInterface without a backend
type fakeSession struct {
	id           string
	messages     []models.Message
	quickReplies []string
	sendErr      error
	loadErr      error
	sent         []string
	resets       int
	loaded       []string
}

func (f *fakeSession) Send(text string) (*models.Exchange, error) {
	f.sent = append(f.sent, text)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	user := models.Message{Role: models.RoleUser, Content: text, Timestamp: time.Now()}
	reply := models.Message{Role: models.RoleAssistant, Content: "reply to " + text, Timestamp: time.Now()}
	f.messages = append(f.messages, user, reply)
	return &models.Exchange{
		UserMessage:      user,
		AssistantMessage: reply,
		Envelope:         models.ChatEnvelope{SessionID: f.id, Response: reply.Content},
	}, nil
}

func (f *fakeSession) LoadSession(id string) error {
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loaded = append(f.loaded, id)
	f.id = id
	return nil
}

func (f *fakeSession) Reset() {
	f.resets++
	f.id = ""
	f.messages = nil
	f.quickReplies = nil
}

func (f *fakeSession) SessionID() string          { return f.id }
func (f *fakeSession) Messages() []models.Message { return f.messages }
func (f *fakeSession) QuickReplies() []string     { return f.quickReplies }

type fakeLister struct {
	sessions []models.SessionSummary
	err      error
}

func (f *fakeLister) ListSessions() ([]models.SessionSummary, error) {
	return f.sessions, f.err
}

type fakeEscalation struct {
	state crisis.State
}

func (f *fakeEscalation) State() crisis.State { return f.state }

func newReadyModel(session *fakeSession, lister *fakeLister, esc *fakeEscalation) Model {
	m := NewChatModel(session, lister, esc)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model)
}

func typeAndEnter(m Model, text string) (Model, tea.Cmd) {
	m.textarea.SetValue(text)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func TestWindowSizeMakesReady(t *testing.T) {
	m := NewChatModel(&fakeSession{}, &fakeLister{}, &fakeEscalation{})

	if m.ready {
		t.Error("model should not be ready before the first size message")
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)

	if !m.ready {
		t.Error("model should be ready after a size message")
	}
	if !strings.Contains(m.View(), "Serene") {
		t.Error("view should render the header")
	}
}

func TestEnterStartsSend(t *testing.T) {
	session := &fakeSession{}
	m := newReadyModel(session, &fakeLister{}, &fakeEscalation{})

	m, cmd := typeAndEnter(m, "I feel anxious")

	if !m.loading {
		t.Error("loading should be set while the send runs")
	}
	if cmd == nil {
		t.Fatal("expected a send command")
	}

	// The optimistic echo lands before the round-trip completes
	if len(m.messages) != 1 || m.messages[0].Content != "I feel anxious" {
		t.Errorf("messages = %v, want optimistic user echo", m.messages)
	}
}

func TestEmptyEnterIsIgnored(t *testing.T) {
	session := &fakeSession{}
	m := newReadyModel(session, &fakeLister{}, &fakeEscalation{})

	m, _ = typeAndEnter(m, "   ")

	if m.loading {
		t.Error("whitespace input should not start a send")
	}
	if len(session.sent) != 0 {
		t.Error("nothing should reach the session")
	}
}

func TestExchangeMsgSyncsTranscript(t *testing.T) {
	session := &fakeSession{}
	m := newReadyModel(session, &fakeLister{}, &fakeEscalation{})
	m, cmd := typeAndEnter(m, "hello")

	// Run the send command and feed its result back, as bubbletea would
	result := cmd()
	var exMsg exchangeMsg
	found := collectMsg(result, func(msg tea.Msg) bool {
		if em, ok := msg.(exchangeMsg); ok {
			exMsg = em
			return true
		}
		return false
	})
	if !found {
		t.Fatal("send command produced no exchangeMsg")
	}

	next, _ := m.Update(exMsg)
	m = next.(Model)

	if m.loading {
		t.Error("loading should clear when the exchange lands")
	}
	if len(m.messages) != 2 {
		t.Errorf("messages = %d, want user + assistant from session", len(m.messages))
	}
}

func TestExchangeMsgCrisisSetsNumber(t *testing.T) {
	m := newReadyModel(&fakeSession{}, &fakeLister{}, &fakeEscalation{})

	next, _ := m.Update(exchangeMsg{exchange: &models.Exchange{
		Envelope: models.ChatEnvelope{IsCrisis: true, EmergencyNumber: "911"},
	}})
	m = next.(Model)

	if m.emergencyNumber != "911" {
		t.Errorf("emergencyNumber = %q, want 911", m.emergencyNumber)
	}
}

func TestCrisisBannerRendersFromEscalatorState(t *testing.T) {
	esc := &fakeEscalation{}
	m := newReadyModel(&fakeSession{}, &fakeLister{}, esc)
	m.emergencyNumber = "911"

	if strings.Contains(m.View(), "call 911 now") {
		t.Error("banner must not render while idle")
	}

	esc.state = crisis.StateNotified
	view := m.View()
	if !strings.Contains(view, "call 911 now") {
		t.Error("banner should render once the escalator is notified")
	}
	if !strings.Contains(view, "988") {
		t.Error("banner should mention the 988 lifeline")
	}
}

func TestNewCommandResetsSession(t *testing.T) {
	session := &fakeSession{id: "old", messages: []models.Message{
		{Role: models.RoleUser, Content: "before"},
	}}
	m := newReadyModel(session, &fakeLister{}, &fakeEscalation{})
	m.emergencyNumber = "911"

	m, _ = typeAndEnter(m, "/new")

	if session.resets != 1 {
		t.Errorf("session resets = %d, want 1", session.resets)
	}
	if m.emergencyNumber != "" {
		t.Error("crisis number should clear with the session")
	}
	if len(m.messages) != 0 {
		t.Error("transcript should clear with the session")
	}
}

func TestQuickReplyCommand(t *testing.T) {
	session := &fakeSession{quickReplies: []string{"Yes, let's try it", "Not right now"}}
	m := newReadyModel(session, &fakeLister{}, &fakeEscalation{})
	m.quickReplies = session.QuickReplies()

	m, cmd := typeAndEnter(m, "/2")
	if cmd == nil {
		t.Fatal("expected a send command")
	}

	result := cmd()
	found := collectMsg(result, func(msg tea.Msg) bool {
		_, ok := msg.(exchangeMsg)
		return ok
	})
	if !found {
		t.Fatal("quick reply did not dispatch a send")
	}
	if len(session.sent) != 1 || session.sent[0] != "Not right now" {
		t.Errorf("sent = %v, want the selected suggestion", session.sent)
	}
}

func TestUnknownCommand(t *testing.T) {
	session := &fakeSession{}
	m := newReadyModel(session, &fakeLister{}, &fakeEscalation{})

	m, _ = typeAndEnter(m, "/bogus")

	if m.err == nil {
		t.Error("unknown command should surface an error")
	}
	if len(session.sent) != 0 {
		t.Error("unknown command must not be sent as a message")
	}
}

func TestHistoryCommandOpensSelector(t *testing.T) {
	lister := &fakeLister{sessions: []models.SessionSummary{
		{ID: "s1", Title: "First", MessageCount: 2, UpdatedAt: time.Now()},
	}}
	m := newReadyModel(&fakeSession{}, lister, &fakeEscalation{})

	m, cmd := typeAndEnter(m, "/history")
	if !m.selectingSession {
		t.Fatal("selector should open")
	}
	if cmd == nil {
		t.Fatal("expected a load command")
	}

	next, _ := m.Update(cmd())
	m = next.(Model)

	if m.sessionsLoading {
		t.Error("loading flag should clear")
	}
	if len(m.sessionList) != 1 {
		t.Errorf("sessionList = %v", m.sessionList)
	}
	if !strings.Contains(m.View(), "First") {
		t.Error("selector should list the session title")
	}
}

func TestSelectorOpensSession(t *testing.T) {
	session := &fakeSession{}
	lister := &fakeLister{sessions: []models.SessionSummary{
		{ID: "s1", Title: "First"},
	}}
	m := newReadyModel(session, lister, &fakeEscalation{})

	m, cmd := typeAndEnter(m, "/history")
	next, _ := m.Update(cmd())
	m = next.(Model)

	// Move past "new session" onto the first entry and open it
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	next, openCmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	if m.selectingSession {
		t.Error("selector should close on enter")
	}
	if openCmd == nil {
		t.Fatal("expected an open command")
	}

	result := openCmd()
	found := collectMsg(result, func(msg tea.Msg) bool {
		_, ok := msg.(sessionOpenedMsg)
		return ok
	})
	if !found {
		t.Fatal("open command produced no sessionOpenedMsg")
	}
	if len(session.loaded) != 1 || session.loaded[0] != "s1" {
		t.Errorf("loaded = %v, want s1", session.loaded)
	}
}

func TestSelectorNewSessionEntry(t *testing.T) {
	session := &fakeSession{id: "old"}
	m := newReadyModel(session, &fakeLister{}, &fakeEscalation{})

	m, cmd := typeAndEnter(m, "/history")
	next, _ := m.Update(cmd())
	m = next.(Model)

	// Cursor 0 is the new-session entry
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	if session.resets != 1 {
		t.Errorf("resets = %d, want 1", session.resets)
	}
	if m.selectingSession {
		t.Error("selector should close")
	}
}

func TestSelectorListError(t *testing.T) {
	lister := &fakeLister{err: errors.New("offline")}
	m := newReadyModel(&fakeSession{}, lister, &fakeEscalation{})

	m, cmd := typeAndEnter(m, "/history")
	next, _ := m.Update(cmd())
	m = next.(Model)

	if m.selectingSession {
		t.Error("selector should close on listing failure")
	}
	if m.err == nil {
		t.Error("listing failure should surface")
	}
}

func TestQuickRepliesRendered(t *testing.T) {
	m := newReadyModel(&fakeSession{}, &fakeLister{}, &fakeEscalation{})
	m.quickReplies = []string{"Yes", "No"}

	view := m.View()
	if !strings.Contains(view, "/1 Yes") || !strings.Contains(view, "/2 No") {
		t.Error("quick replies should render with their slash shortcuts")
	}
}

// collectMsg walks a command result, flattening batches, until match hits
func collectMsg(msg tea.Msg, match func(tea.Msg) bool) bool {
	if msg == nil {
		return false
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, cmd := range batch {
			if cmd == nil {
				continue
			}
			if collectMsg(cmd(), match) {
				return true
			}
		}
		return false
	}
	return match(msg)
}
