// Package commands provides CLI commands for serene.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	countryFlag    string
	rawFlag        bool
	noLocationFlag bool
	baseURLFlag    string

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "serene [message]",
	Short: "Terminal companion for the Serene mental-wellness assistant",
	Long: `serene is a command-line client for the Serene companion backend.
It keeps a conversation going across messages, surfaces crisis support
resources when they are needed, and works offline-first for browsing
past sessions.

Examples:
  serene chat                       Start an interactive conversation
  serene "I had a rough day"        Send a single message
  serene history list               List past sessions
  serene resources                  Show crisis support contacts
  serene config set-token           Store your access token`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("serene %s (built %s)\n", Version, BuildTime)
			return nil
		}

		stat, _ := os.Stdin.Stat()
		hasStdin := (stat.Mode() & os.ModeCharDevice) == 0

		if hasStdin {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			return runQuery(string(data), rawFlag)
		}

		if len(args) > 0 {
			return runQuery(args[0], rawFlag)
		}

		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "Backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&countryFlag, "country", "", "Country code for crisis resources (e.g. US)")
	rootCmd.PersistentFlags().BoolVar(&noLocationFlag, "no-location", false, "Skip the coarse location lookup")
	rootCmd.Flags().BoolVar(&rawFlag, "raw", false, "Print the raw reply without markdown rendering")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resourcesCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(devserverCmd)
}
