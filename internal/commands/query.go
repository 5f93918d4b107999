package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/serenelabs/serene/internal/config"
	apierrors "github.com/serenelabs/serene/internal/errors"
	"github.com/serenelabs/serene/internal/render"
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true).
				MarginBottom(0)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginTop(1).
				MarginBottom(1)

	quickReplyStyle = lipgloss.NewStyle().
			Foreground(colorTextDim).
			Italic(true)
)

// runQuery sends a single message and prints the reply.
// If rawOutput is true, only the raw response text is printed without decoration.
func runQuery(message string, rawOutput bool) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return fmt.Errorf("message cannot be empty")
	}

	cfg, _ := config.LoadConfig()

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	escalator := newEscalator(cfg, printCrisisBanner)
	defer escalator.Stop()
	// A crisis dial is scheduled a beat after the banner renders; hold
	// teardown until it has run.
	defer escalator.Wait()

	session := client.StartChat(withSessionDefaults(cfg, escalator)...)

	var spin *spinner
	if !rawOutput && cfg.LocationEnabled && !noLocationFlag {
		spin = newSpinner("Checking your region")
		spin.start()
	}
	if loc := acquireLocation(cfg); loc.Known {
		session.SetLocation(loc)
	}
	if spin != nil {
		spin.stopOnce()
		<-spin.done
	}

	if !rawOutput {
		spin = newSpinner("Thinking")
		spin.start()
	}

	exchange, err := session.Send(message)
	if err != nil && exchange == nil {
		if !rawOutput {
			spin.stopWithError()
			fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Send failed"))
		}
		return fmt.Errorf("send failed: %w", err)
	}
	if !rawOutput {
		if exchange.Degraded {
			spin.stopWithError()
			fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Reply unavailable"))
		} else {
			spin.stopWithSuccess("Done")
		}
	}

	text := exchange.AssistantMessage.Content

	// Raw output mode: print only the reply text
	if rawOutput {
		fmt.Print(text)
		if !strings.HasSuffix(text, "\n") {
			fmt.Println()
		}
		return nil
	}

	fmt.Fprintln(os.Stderr)

	if cfg.CopyToClipboard && !exchange.Degraded {
		if err := clipboard.WriteAll(text); err != nil {
			warnMsg := lipgloss.NewStyle().Foreground(colorError).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			)
			fmt.Fprintln(os.Stderr, warnMsg)
		} else {
			clipMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard")
			fmt.Fprintln(os.Stderr, clipMsg)
		}
	}

	termWidth := getTerminalWidth()
	bubbleWidth := termWidth - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	label := assistantLabelStyle.Render("✦ Serene")
	fmt.Println(label)

	renderOpts := render.DefaultOptions().WithWidth(contentWidth).WithStyle(cfg.MarkdownStyle)
	rendered, err := render.Markdown(text, renderOpts)
	if err != nil {
		rendered = text
	}
	rendered = strings.TrimRight(rendered, "\n")

	bubble := assistantBubbleStyle.Width(bubbleWidth).Render(rendered)
	fmt.Println(bubble)

	if replies := exchange.Envelope.QuickReplies; len(replies) > 0 {
		var sb strings.Builder
		sb.WriteString("You could reply with:\n")
		for _, reply := range replies {
			sb.WriteString("  · " + reply + "\n")
		}
		fmt.Print(quickReplyStyle.Render(strings.TrimRight(sb.String(), "\n")))
		fmt.Println()
	}

	return nil
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", apiErr.StatusCode)))
		if apiErr.Endpoint != "" {
			sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", apiErr.Endpoint)))
		}
	}

	switch {
	case errors.Is(err, apierrors.ErrNoToken):
		sb.WriteString(dimStyle.Render("\n  Hint: Run 'serene config set-token' to store your access token"))
	case apierrors.IsAuthError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Your token may have expired. Run 'serene config set-token'"))
	case apierrors.IsTimeout(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Request timed out. Try again or check your connection"))
	}

	return sb.String()
}
