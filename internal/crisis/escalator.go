// Package crisis coordinates the one-time escalation that follows a
// crisis-flagged assistant response.
package crisis

import (
	"log"
	"strings"
	"sync"
	"time"
)

// State is the per-session escalation state.
type State int

const (
	// StateIdle means no escalation has happened in this session.
	StateIdle State = iota
	// StateNotified means the banner and dial were already triggered.
	// The transition is one-way for the lifetime of the session.
	StateNotified
)

// DefaultDialDelay gives the banner time to render before the dialer opens.
const DefaultDialDelay = 500 * time.Millisecond

// Dialer opens the device's telephone dial capability.
type Dialer interface {
	Dial(number string) error
}

// Escalator consumes crisis signals at most once per session. Repeated
// signals while notified are no-ops, so a multi-turn crisis conversation
// never launches the dialer twice.
type Escalator struct {
	mu       sync.Mutex
	state    State
	stopped  bool
	dialer   Dialer
	delay    time.Duration
	autoDial bool
	onBanner func(emergencyNumber string)
	timer    *time.Timer
	dialDone chan struct{}
}

// Option configures an Escalator
type Option func(*Escalator)

// WithDialDelay overrides the delay before the dialer is invoked
func WithDialDelay(delay time.Duration) Option {
	return func(e *Escalator) {
		e.delay = delay
	}
}

// WithBanner sets the callback that renders the crisis banner
func WithBanner(fn func(emergencyNumber string)) Option {
	return func(e *Escalator) {
		e.onBanner = fn
	}
}

// WithAutoDial controls whether the dialer is invoked automatically.
// The banner always renders; only the dial is optional.
func WithAutoDial(enabled bool) Option {
	return func(e *Escalator) {
		e.autoDial = enabled
	}
}

// NewEscalator creates an Escalator in the idle state.
func NewEscalator(dialer Dialer, opts ...Option) *Escalator {
	e := &Escalator{
		dialer:   dialer,
		delay:    DefaultDialDelay,
		autoDial: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Observe evaluates the crisis fields of one response. The idle-to-notified
// transition fires exactly when the response carries a crisis flag and an
// emergency number while the session is still idle.
func (e *Escalator) Observe(isCrisis bool, emergencyNumber string) {
	if !isCrisis || emergencyNumber == "" {
		return
	}

	e.mu.Lock()
	if e.state != StateIdle || e.stopped {
		e.mu.Unlock()
		return
	}
	e.state = StateNotified
	banner := e.onBanner
	if e.autoDial && e.dialer != nil {
		number := DigitsOnly(emergencyNumber)
		done := make(chan struct{})
		e.dialDone = done
		e.timer = time.AfterFunc(e.delay, func() {
			defer close(done)
			e.dial(number)
		})
	}
	e.mu.Unlock()

	if banner != nil {
		banner(emergencyNumber)
	}
}

// dial runs on the timer goroutine after the delay.
func (e *Escalator) dial(number string) {
	e.mu.Lock()
	stopped := e.stopped
	e.mu.Unlock()
	if stopped {
		return
	}

	// Fire-and-forget: an unsupported platform is not an error the user
	// can act on here.
	if err := e.dialer.Dial(number); err != nil {
		log.Printf("warning: failed to open dialer: %v", err)
	}
}

// Reset returns the escalator to idle. Called only when the session is
// replaced, so escalation state never survives a session swap.
func (e *Escalator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelDialLocked()
	e.state = StateIdle
}

// Stop cancels any pending dial and prevents further escalations. Used on
// teardown; a timer that already fired is a no-op afterwards.
func (e *Escalator) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopped = true
	e.cancelDialLocked()
}

// Wait blocks until a scheduled dial has run or been cancelled. Short-lived
// commands call this before teardown so the process stays alive long enough
// for the dialer to open. Returns immediately when nothing is pending.
func (e *Escalator) Wait() {
	e.mu.Lock()
	done := e.dialDone
	e.mu.Unlock()
	if done != nil {
		<-done
	}
}

// cancelDialLocked stops a pending dial timer. A timer that has already
// fired closes dialDone from its own goroutine instead.
func (e *Escalator) cancelDialLocked() {
	if e.timer == nil {
		return
	}
	if e.timer.Stop() && e.dialDone != nil {
		close(e.dialDone)
		e.dialDone = nil
	}
	e.timer = nil
}

// State returns the current escalation state.
func (e *Escalator) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// DigitsOnly strips everything but digits from a phone number, so
// "1-800-273-8255" dials as "18002738255".
func DigitsOnly(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
