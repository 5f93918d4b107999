package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// updateSessionSelector handles input while the history overlay is open.
func (m Model) updateSessionSelector(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case sessionsLoadedMsg:
		m.sessionsLoading = false
		if msg.err != nil {
			m.selectingSession = false
			m.err = msg.err
		} else {
			m.sessionList = msg.sessions
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			m.selectingSession = false

		case "up", "k":
			if m.sessionCursor > 0 {
				m.sessionCursor--
			}

		case "down", "j":
			// Index 0 is "new session"; the list follows.
			if m.sessionCursor < len(m.sessionList) {
				m.sessionCursor++
			}

		case "enter":
			if m.sessionsLoading {
				break
			}
			m.selectingSession = false
			if m.sessionCursor == 0 {
				m.session.Reset()
				m.emergencyNumber = ""
				m.syncFromSession()
				return m, nil
			}
			selected := m.sessionList[m.sessionCursor-1]
			m.loading = true
			return m, tea.Batch(m.openSession(selected.ID), m.spinner.Tick)
		}
	}

	return m, nil
}

// renderSessionSelector renders the history overlay.
func (m Model) renderSessionSelector() string {
	var b strings.Builder

	b.WriteString(selectorTitleStyle.Render("  Your conversations"))
	b.WriteString("\n\n")

	if m.sessionsLoading {
		b.WriteString(loadingStyle.Render("  Loading sessions..."))
		return b.String()
	}

	rows := []string{"+ Start a new conversation"}
	for _, s := range m.sessionList {
		title := s.Title
		if title == "" {
			title = s.ID
		}
		rows = append(rows, fmt.Sprintf("%s  %s", title, hintStyle.Render(
			fmt.Sprintf("(%d messages, %s)", s.MessageCount, s.UpdatedAt.Format("Jan 2 15:04")))))
	}

	for i, row := range rows {
		if i == m.sessionCursor {
			b.WriteString(selectorCursorStyle.Render("  > "))
			b.WriteString(selectorItemStyle.Bold(true).Render(row))
		} else {
			b.WriteString("    ")
			b.WriteString(selectorItemStyle.Render(row))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("  enter open • esc back • ctrl+c quit"))

	return lipgloss.NewStyle().Padding(1, 0).Render(b.String())
}
