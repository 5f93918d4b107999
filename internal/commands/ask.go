package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send a single message and print the reply",
	Long: `Send a single message without entering the interactive chat.

The message comes from the argument or from stdin:

  serene ask "I had a rough day"
  echo "I had a rough day" | serene ask --raw`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")

		if len(args) > 0 {
			return runQuery(args[0], raw)
		}

		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			if strings.TrimSpace(string(data)) != "" {
				return runQuery(string(data), raw)
			}
		}

		return fmt.Errorf("no message given")
	},
}

func init() {
	askCmd.Flags().Bool("raw", false, "Print the raw reply without markdown rendering")
}
