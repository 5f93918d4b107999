package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/serenelabs/serene/internal/crisis"
	"github.com/serenelabs/serene/internal/models"
	"github.com/serenelabs/serene/internal/render"
)

// Message types for the TUI
type (
	exchangeMsg struct {
		exchange *models.Exchange
		err      error
	}
	sessionsLoadedMsg struct {
		sessions []models.SessionSummary
		err      error
	}
	sessionOpenedMsg struct {
		err error
	}
)

// ChatSessionInterface defines the session operations needed by the TUI
type ChatSessionInterface interface {
	Send(text string) (*models.Exchange, error)
	LoadSession(id string) error
	Reset()
	SessionID() string
	Messages() []models.Message
	QuickReplies() []string
}

// SessionLister lists past conversations from the backend
type SessionLister interface {
	ListSessions() ([]models.SessionSummary, error)
}

// EscalationStatus exposes the per-session crisis state to the view
type EscalationStatus interface {
	State() crisis.State
}

// Model represents the TUI state
type Model struct {
	session   ChatSessionInterface
	lister    SessionLister
	escalator EscalationStatus

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	messages        []models.Message
	quickReplies    []string
	loading         bool
	ready           bool
	err             error
	emergencyNumber string

	// Session selector overlay
	selectingSession bool
	sessionsLoading  bool
	sessionList      []models.SessionSummary
	sessionCursor    int

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a new chat TUI model
func NewChatModel(session ChatSessionInterface, lister SessionLister, escalator EscalationStatus) Model {
	ta := textarea.New()
	ta.Placeholder = "Share what's on your mind..."
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		session:   session,
		lister:    lister,
		escalator: escalator,
		textarea:  ta,
		spinner:   s,
		messages:  session.Messages(),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if m.selectingSession {
		return m.updateSessionSelector(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if m.loading {
				// The send keeps running; esc only dismisses the wait.
				m.loading = false
			} else {
				return m, tea.Quit
			}

		case "enter":
			if m.loading {
				break
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				break
			}
			if model, cmd, handled := m.handleCommand(input); handled {
				return model, cmd
			}
			return m.startSend(input)
		}

	case exchangeMsg:
		m.loading = false
		m.syncFromSession()
		if msg.exchange == nil && msg.err != nil {
			// Rejected before dispatch (empty input or send in flight).
			m.err = msg.err
			break
		}
		if msg.exchange != nil && msg.exchange.Envelope.IsCrisis {
			m.emergencyNumber = msg.exchange.Envelope.EmergencyNumber
		}
		m.viewport.GotoBottom()

	case sessionsLoadedMsg:
		m.sessionsLoading = false
		if msg.err != nil {
			m.selectingSession = false
			m.err = msg.err
		} else {
			m.sessionList = msg.sessions
		}

	case sessionOpenedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			break
		}
		m.emergencyNumber = ""
		m.syncFromSession()
		m.viewport.GotoBottom()

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleCommand processes slash commands. Returns handled=false when the
// input is an ordinary message.
func (m Model) handleCommand(input string) (tea.Model, tea.Cmd, bool) {
	switch {
	case input == "exit" || input == "quit" || input == "/exit" || input == "/quit":
		return m, tea.Quit, true

	case input == "/new":
		m.textarea.Reset()
		m.session.Reset()
		m.emergencyNumber = ""
		m.err = nil
		m.syncFromSession()
		return m, nil, true

	case input == "/history":
		m.textarea.Reset()
		m.selectingSession = true
		m.sessionsLoading = true
		m.sessionCursor = 0
		return m, m.loadSessions(), true

	case strings.HasPrefix(input, "/"):
		if n, err := strconv.Atoi(strings.TrimPrefix(input, "/")); err == nil {
			if n >= 1 && n <= len(m.quickReplies) {
				return m.startSendFromModel(m.quickReplies[n-1])
			}
		}
		m.err = fmt.Errorf("unknown command: %s", input)
		m.textarea.Reset()
		return m, nil, true
	}
	return m, nil, false
}

func (m Model) startSend(input string) (tea.Model, tea.Cmd) {
	model, cmd, _ := m.startSendFromModel(input)
	return model, cmd
}

func (m Model) startSendFromModel(input string) (tea.Model, tea.Cmd, bool) {
	m.loading = true
	m.err = nil
	m.textarea.Reset()

	// Optimistic echo; the authoritative transcript arrives with the
	// exchange result.
	m.messages = append(m.messages, models.Message{
		Role:    models.RoleUser,
		Content: input,
	})
	m.quickReplies = nil
	m.updateViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(
		m.sendMessage(input),
		m.spinner.Tick,
	), true
}

// sendMessage dispatches the send off the UI goroutine.
func (m Model) sendMessage(text string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		exchange, err := session.Send(text)
		return exchangeMsg{exchange: exchange, err: err}
	}
}

func (m Model) loadSessions() tea.Cmd {
	lister := m.lister
	return func() tea.Msg {
		sessions, err := lister.ListSessions()
		return sessionsLoadedMsg{sessions: sessions, err: err}
	}
}

func (m Model) openSession(id string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		return sessionOpenedMsg{err: session.LoadSession(id)}
	}
}

// syncFromSession refreshes the rendered transcript from the source of
// truth.
func (m *Model) syncFromSession() {
	m.messages = m.session.Messages()
	m.quickReplies = m.session.QuickReplies()
	m.updateViewport()
}

func (m *Model) resize() {
	headerHeight := 3
	inputHeight := 5
	statusHeight := 1
	bannerHeight := 0
	if m.crisisActive() {
		bannerHeight = 4
	}

	vpHeight := m.height - headerHeight - inputHeight - statusHeight - bannerHeight - 2
	if vpHeight < 5 {
		vpHeight = 5
	}
	contentWidth := m.width - 4

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.textarea.SetWidth(contentWidth - 4)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
		m.textarea.SetWidth(contentWidth - 4)
	}
	m.updateViewport()
}

// crisisActive reports whether the persistent banner should render.
func (m Model) crisisActive() bool {
	return m.escalator != nil && m.escalator.State() == crisis.StateNotified
}

func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var b strings.Builder
	width := m.viewport.Width - 2

	for _, msg := range m.messages {
		switch msg.Role {
		case models.RoleUser:
			b.WriteString(userLabelStyle.Render("You"))
			b.WriteString("\n")
			b.WriteString(msg.Content)
		default:
			b.WriteString(assistantLabelStyle.Render("Serene"))
			b.WriteString("\n")
			if msg.Content == models.FallbackReply {
				b.WriteString(degradedStyle.Render(msg.Content))
				break
			}
			rendered, err := render.MarkdownWithWidth(msg.Content, width)
			if err != nil {
				b.WriteString(msg.Content)
			} else {
				b.WriteString(strings.TrimRight(rendered, "\n"))
			}
		}
		b.WriteString("\n\n")
	}

	m.viewport.SetContent(b.String())
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Starting...")
	}

	if m.selectingSession {
		return m.renderSessionSelector()
	}

	var sections []string
	contentWidth := m.width - 4

	header := headerStyle.Width(contentWidth).Render(
		lipgloss.JoinHorizontal(
			lipgloss.Center,
			titleStyle.Render("Serene"),
			hintStyle.Render("  •  "),
			subtitleStyle.Render(m.sessionLabel()),
		),
	)
	sections = append(sections, header)

	if m.crisisActive() {
		sections = append(sections, m.renderCrisisBanner(contentWidth))
	}

	sections = append(sections, m.viewport.View())

	if len(m.quickReplies) > 0 && !m.loading {
		sections = append(sections, m.renderQuickReplies(contentWidth))
	}

	var inputContent string
	if m.loading {
		inputContent = m.spinner.View() + loadingStyle.Render("  Serene is thinking...")
	} else {
		inputContent = m.textarea.View()
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	status := "enter send • /history sessions • /new fresh start • esc quit"
	sections = append(sections, statusBarStyle.Render("  "+status))

	if m.err != nil {
		sections = append(sections, errorStyle.Render("  "+m.err.Error()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) sessionLabel() string {
	if id := m.session.SessionID(); id != "" {
		if len(id) > 8 {
			return "session " + id[:8]
		}
		return "session " + id
	}
	return "new session"
}

// renderCrisisBanner renders the persistent escalation banner. It has no
// timeout and no dismiss key; only a session swap clears it.
func (m Model) renderCrisisBanner(width int) string {
	number := m.emergencyNumber
	if number == "" {
		number = "your local emergency number"
	}
	content := fmt.Sprintf(
		"You deserve immediate support. If you are in danger, call %s now.\n"+
			"The 988 Suicide & Crisis Lifeline is available 24/7.",
		number,
	)
	return crisisBannerStyle.Width(width).Render(content)
}

func (m Model) renderQuickReplies(width int) string {
	var parts []string
	for i, qr := range m.quickReplies {
		parts = append(parts, quickReplyStyle.Render(fmt.Sprintf("/%d %s", i+1, qr)))
	}
	line := "  " + strings.Join(parts, hintStyle.Render("   "))
	return lipgloss.NewStyle().Width(width).Render(line)
}
