package api

import (
	"errors"
	"sync"
	"testing"

	fhttp "github.com/bogdanfinn/fhttp"

	apierrors "github.com/serenelabs/serene/internal/errors"
	"github.com/serenelabs/serene/internal/models"
)

// blockingHttpClient parks Do until released so a send can be held in flight
type blockingHttpClient struct {
	MockHttpClient
	entered chan struct{}
	release chan struct{}

	mu    sync.Mutex
	calls int
}

func (b *blockingHttpClient) Do(req *fhttp.Request) (*fhttp.Response, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	b.entered <- struct{}{}
	<-b.release
	return b.Response, b.Err
}

// recordingObserver captures Observe and Reset calls for assertions
type recordingObserver struct {
	mu       sync.Mutex
	observed []bool
	numbers  []string
	resets   int
}

func (r *recordingObserver) Observe(isCrisis bool, emergencyNumber string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observed = append(r.observed, isCrisis)
	r.numbers = append(r.numbers, emergencyNumber)
}

func (r *recordingObserver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets++
}

func TestSendEmptyMessage(t *testing.T) {
	client := newTestClient(NewMockHttpClient([]byte(`{}`), 200))
	session := client.StartChat()

	tests := []string{"", "   ", "\n\t"}
	for _, input := range tests {
		if _, err := session.Send(input); !errors.Is(err, apierrors.ErrEmptyMessage) {
			t.Errorf("Send(%q) error = %v, want ErrEmptyMessage", input, err)
		}
	}

	if len(session.Messages()) != 0 {
		t.Error("rejected sends must not touch the transcript")
	}
}

func TestSendSuccess(t *testing.T) {
	body := `{"session_id":"sess-42","response":"That sounds hard.","quick_replies":["Yes","No"]}`
	client := newTestClient(NewMockHttpClient([]byte(body), 200))
	session := client.StartChat()

	exchange, err := session.Send("  I had a rough day  ")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if exchange.Degraded {
		t.Error("Degraded = true on success")
	}
	if exchange.UserMessage.Content != "I had a rough day" {
		t.Errorf("user message not trimmed: %q", exchange.UserMessage.Content)
	}
	if exchange.AssistantMessage.Content != "That sounds hard." {
		t.Errorf("assistant content = %q", exchange.AssistantMessage.Content)
	}

	if got := session.SessionID(); got != "sess-42" {
		t.Errorf("SessionID() = %q, want adopted id", got)
	}

	msgs := session.Messages()
	if len(msgs) != 2 {
		t.Fatalf("transcript length = %d, want 2", len(msgs))
	}
	if msgs[0].Role != models.RoleUser || msgs[1].Role != models.RoleAssistant {
		t.Error("transcript roles out of order")
	}

	if qr := session.QuickReplies(); len(qr) != 2 {
		t.Errorf("QuickReplies() = %v", qr)
	}
}

func TestSendRejectsSecondWhileInFlight(t *testing.T) {
	body := `{"session_id":"sess-1","response":"I'm here with you."}`
	mock := &blockingHttpClient{
		MockHttpClient: MockHttpClient{
			Response: &fhttp.Response{
				StatusCode: 200,
				Body:       NewMockResponseBody([]byte(body)),
				Header:     make(fhttp.Header),
			},
		},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	client := &Client{httpClient: mock, baseURL: DefaultBaseURL, token: "test-token"}
	session := client.StartChat()

	firstErr := make(chan error, 1)
	go func() {
		_, err := session.Send("first message")
		firstErr <- err
	}()

	<-mock.entered

	if !session.Sending() {
		t.Error("Sending() = false while a send is parked in the transport")
	}
	if _, err := session.Send("second message"); !errors.Is(err, apierrors.ErrSendInFlight) {
		t.Fatalf("second Send() error = %v, want ErrSendInFlight", err)
	}
	if got := len(session.Messages()); got != 1 {
		t.Errorf("transcript length during in-flight send = %d, want 1", got)
	}

	close(mock.release)
	if err := <-firstErr; err != nil {
		t.Fatalf("first Send() error = %v", err)
	}

	mock.mu.Lock()
	calls := mock.calls
	mock.mu.Unlock()
	if calls != 1 {
		t.Errorf("transport calls = %d, want 1", calls)
	}
	if got := len(session.Messages()); got != 2 {
		t.Errorf("transcript length after completion = %d, want 2", got)
	}
}

func TestSendFailureAppendsFallback(t *testing.T) {
	client := newTestClient(NewMockHttpClientWithError(errors.New("network down")))
	session := client.StartChat()

	exchange, err := session.Send("hello")
	if err == nil {
		t.Fatal("expected transport error")
	}
	if exchange == nil {
		t.Fatal("degraded exchange must still be returned")
	}
	if !exchange.Degraded {
		t.Error("Degraded = false, want true")
	}
	if exchange.AssistantMessage.Content != models.FallbackReply {
		t.Errorf("fallback content = %q", exchange.AssistantMessage.Content)
	}

	msgs := session.Messages()
	if len(msgs) != 2 {
		t.Fatalf("transcript length = %d, want user + fallback", len(msgs))
	}
	if msgs[1].Content != models.FallbackReply {
		t.Error("fallback not appended to transcript")
	}

	// The failed send must not leave the session stuck
	if session.Sending() {
		t.Error("Sending() = true after send returned")
	}
}

func TestSendClearsQuickRepliesUpFront(t *testing.T) {
	body := `{"session_id":"s","response":"first","quick_replies":["a","b"]}`
	client := newTestClient(NewMockHttpClient([]byte(body), 200))
	session := client.StartChat()

	if _, err := session.Send("one"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(session.QuickReplies()) != 2 {
		t.Fatal("expected quick replies after first send")
	}

	// Second send fails; stale suggestions must not survive it
	client.httpClient = NewMockHttpClientWithError(errors.New("down"))
	if _, err := session.Send("two"); err == nil {
		t.Fatal("expected error")
	}
	if qr := session.QuickReplies(); len(qr) != 0 {
		t.Errorf("QuickReplies() = %v, want cleared", qr)
	}
}

func TestSendObserverCalled(t *testing.T) {
	body := `{"session_id":"s","response":"ok","is_crisis":true,"emergency_number":"911"}`
	client := newTestClient(NewMockHttpClient([]byte(body), 200))

	observer := &recordingObserver{}
	session := client.StartChat(WithCrisisObserver(observer))

	if _, err := session.Send("msg"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(observer.observed) != 1 || !observer.observed[0] {
		t.Errorf("observer calls = %v, want one crisis observation", observer.observed)
	}
	if observer.numbers[0] != "911" {
		t.Errorf("observed number = %q", observer.numbers[0])
	}
}

func TestSendFailureSkipsObserver(t *testing.T) {
	client := newTestClient(NewMockHttpClientWithError(errors.New("down")))

	observer := &recordingObserver{}
	session := client.StartChat(WithCrisisObserver(observer))

	if _, err := session.Send("msg"); err == nil {
		t.Fatal("expected error")
	}
	if len(observer.observed) != 0 {
		t.Error("failed sends must not feed the crisis observer")
	}
}

func TestResetClearsEverything(t *testing.T) {
	body := `{"session_id":"sess-9","response":"ok","quick_replies":["x"]}`
	client := newTestClient(NewMockHttpClient([]byte(body), 200))

	observer := &recordingObserver{}
	session := client.StartChat(WithCrisisObserver(observer))

	if _, err := session.Send("msg"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	session.Reset()

	if session.SessionID() != "" {
		t.Error("SessionID not cleared")
	}
	if len(session.Messages()) != 0 {
		t.Error("transcript not cleared")
	}
	if len(session.QuickReplies()) != 0 {
		t.Error("quick replies not cleared")
	}
	if observer.resets != 1 {
		t.Errorf("observer resets = %d, want 1", observer.resets)
	}
}

func TestLoadSessionReplacesTranscript(t *testing.T) {
	detail := `{"id":"sess-7","title":"Past chat","messages":[` +
		`{"role":"user","content":"hi","timestamp":"2026-08-01T10:00:00Z"},` +
		`{"role":"assistant","content":"hello","timestamp":"2026-08-01T10:00:01Z"}]}`
	client := newTestClient(NewMockHttpClient([]byte(detail), 200))

	observer := &recordingObserver{}
	session := client.StartChat(WithCrisisObserver(observer))

	if err := session.LoadSession("sess-7"); err != nil {
		t.Fatalf("LoadSession() error = %v", err)
	}

	if got := session.SessionID(); got != "sess-7" {
		t.Errorf("SessionID() = %q, want %q", got, "sess-7")
	}
	if msgs := session.Messages(); len(msgs) != 2 {
		t.Errorf("transcript length = %d, want 2", len(msgs))
	}
	if observer.resets != 1 {
		t.Error("loading a session must reset the crisis observer")
	}
}

func TestLoadSessionNotFound(t *testing.T) {
	client := newTestClient(NewMockHttpClient([]byte(`{"error":"not found"}`), 404))
	session := client.StartChat()

	err := session.LoadSession("missing")
	if !errors.Is(err, apierrors.ErrSessionNotFound) {
		t.Errorf("error = %v, want ErrSessionNotFound", err)
	}
}

func TestMessagesReturnsCopy(t *testing.T) {
	body := `{"session_id":"s","response":"ok"}`
	client := newTestClient(NewMockHttpClient([]byte(body), 200))
	session := client.StartChat()

	if _, err := session.Send("msg"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	msgs := session.Messages()
	msgs[0].Content = "mutated"

	if session.Messages()[0].Content == "mutated" {
		t.Error("Messages() must return a copy")
	}
}
