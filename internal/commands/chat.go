package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/serenelabs/serene/internal/config"
	"github.com/serenelabs/serene/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start an interactive conversation with Serene.

The session keeps its context across messages and surfaces crisis
support resources when the backend flags a message.
Type 'exit', 'quit', or press Ctrl+C to end the session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func runChat() error {
	cfg, _ := config.LoadConfig()

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	// Banner rendering happens inside the TUI, driven by escalator state.
	escalator := newEscalator(cfg, nil)
	defer escalator.Stop()

	session := client.StartChat(withSessionDefaults(cfg, escalator)...)

	if cfg.LocationEnabled && !noLocationFlag {
		spin := newSpinner("Checking your region")
		spin.start()
		if loc := acquireLocation(cfg); loc.Known {
			session.SetLocation(loc)
		}
		spin.stopOnce()
		<-spin.done
	}

	if err := tui.RunChat(session, client, escalator); err != nil {
		return fmt.Errorf("chat session failed: %w", err)
	}
	return nil
}
