package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/serenelabs/serene/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage serene settings",
	Long:  `Show and change serene settings and the stored access token.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a setting. Available keys:

  base_url         Backend base URL
  country          Country code for crisis resources (e.g. US)
  location         Coarse location lookup on session start (true/false)
  auto_dial        Open the dialer when a crisis is flagged (true/false)
  verbose          Verbose logging (true/false)
  copy_clipboard   Copy one-shot replies to the clipboard (true/false)
  markdown_style   Glamour style for rendered replies`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configSetTokenCmd = &cobra.Command{
	Use:   "set-token",
	Short: "Store your access token",
	RunE:  runConfigSetToken,
}

var configClearTokenCmd = &cobra.Command{
	Use:   "clear-token",
	Short: "Remove the stored access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ClearToken(); err != nil {
			return fmt.Errorf("failed to clear token: %w", err)
		}
		fmt.Println("Token removed.")
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetTokenCmd)
	configCmd.AddCommand(configClearTokenCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Printf("base_url:        %s\n", cfg.BaseURL)
	fmt.Printf("country:         %s\n", valueOrDefault(cfg.Country, "(auto)"))
	fmt.Printf("location:        %t\n", cfg.LocationEnabled)
	fmt.Printf("auto_dial:       %t\n", cfg.AutoDial)
	fmt.Printf("verbose:         %t\n", cfg.Verbose)
	fmt.Printf("copy_clipboard:  %t\n", cfg.CopyToClipboard)
	fmt.Printf("markdown_style:  %s\n", cfg.MarkdownStyle)

	if _, err := config.LoadToken(); err == nil {
		fmt.Printf("token:           (stored)\n")
	} else {
		fmt.Printf("token:           (not set)\n")
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch key {
	case "base_url":
		cfg.BaseURL = value
	case "country":
		cfg.Country = strings.ToUpper(strings.TrimSpace(value))
	case "location":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("location must be true or false")
		}
		cfg.LocationEnabled = b
	case "auto_dial":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("auto_dial must be true or false")
		}
		cfg.AutoDial = b
	case "verbose":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("verbose must be true or false")
		}
		cfg.Verbose = b
	case "copy_clipboard":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("copy_clipboard must be true or false")
		}
		cfg.CopyToClipboard = b
	case "markdown_style":
		cfg.MarkdownStyle = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}

	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}

func runConfigSetToken(cmd *cobra.Command, args []string) error {
	var token string

	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(os.Stderr, "Access token: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
		token = string(raw)
	} else {
		// Piped input, e.g. serene config set-token < token.txt
		var line string
		if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
			return fmt.Errorf("failed to read token from stdin: %w", err)
		}
		token = line
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	if err := config.SaveToken(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	fmt.Println("Token stored.")
	return nil
}

func valueOrDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
