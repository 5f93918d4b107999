package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// RunChat starts the interactive chat over an already-configured session.
// The escalator may be nil when escalation is handled elsewhere.
func RunChat(session ChatSessionInterface, lister SessionLister, escalator EscalationStatus) error {
	m := NewChatModel(session, lister, escalator)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat UI failed: %w", err)
	}
	return nil
}
