// Package tui provides the terminal user interface for serene.
package tui

import "github.com/charmbracelet/lipgloss"

// Tokyonight-ish palette, matching the rest of the CLI output.
var (
	colorPrimary   = lipgloss.Color("#7aa2f7")
	colorSecondary = lipgloss.Color("#bb9af7")
	colorSuccess   = lipgloss.Color("#9ece6a")
	colorWarning   = lipgloss.Color("#e0af68")
	colorError     = lipgloss.Color("#f7768e")
	colorText      = lipgloss.Color("#c0caf5")
	colorTextDim   = lipgloss.Color("#565f89")
)

var (
	headerStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	hintStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	userLabelStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	degradedStyle = lipgloss.NewStyle().
			Foreground(colorWarning).
			Italic(true)

	loadingStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	quickReplyStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	inputPanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorTextDim).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	selectorTitleStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true).
				MarginBottom(1)

	selectorItemStyle = lipgloss.NewStyle().
				Foreground(colorText)

	selectorCursorStyle = lipgloss.NewStyle().
				Foreground(colorSecondary).
				Bold(true)

	// crisisBannerStyle is intentionally loud; it stays on screen for the
	// rest of the session.
	crisisBannerStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.DoubleBorder()).
				BorderForeground(colorError).
				Foreground(colorText).
				Background(lipgloss.Color("#3b1219")).
				Bold(true).
				Padding(0, 1)
)
