// Package config handles configuration and token storage for serene.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config represents the user configuration
type Config struct {
	// BaseURL is the backend endpoint. Empty means the hosted default.
	BaseURL string `json:"base_url,omitempty"`
	// Country is the ISO 3166-1 alpha-2 profile country used to localize
	// crisis resources. Empty lets the backend infer one.
	Country string `json:"country,omitempty"`
	// LocationEnabled controls the one-shot coarse location lookup at
	// startup. The lookup is best-effort either way.
	LocationEnabled bool `json:"location_enabled"`
	// AutoDial controls whether a crisis escalation opens the device
	// dialer automatically. The banner always renders.
	AutoDial bool `json:"auto_dial"`
	// Verbose enables diagnostic logging during operations.
	Verbose bool `json:"verbose"`
	// CopyToClipboard copies the last assistant reply after one-shot asks.
	CopyToClipboard bool   `json:"copy_to_clipboard"`
	TUITheme        string `json:"tui_theme,omitempty"`
	// MarkdownStyle is the glamour style for rendering replies.
	MarkdownStyle string `json:"markdown_style,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		LocationEnabled: true,
		AutoDial:        true,
		Verbose:         false,
		CopyToClipboard: false,
		TUITheme:        "tokyonight",
		MarkdownStyle:   "dark",
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".serene"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
// 0o700 because it holds the access token.
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads the configuration from disk, then applies environment
// overrides. A missing file means defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnv(cfg), nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return applyEnv(DefaultConfig()), fmt.Errorf("failed to parse config file: %w", err)
	}

	return applyEnv(cfg), nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	if _, err := EnsureConfigDir(); err != nil {
		return err
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// applyEnv overlays SERENE_* environment variables onto cfg.
func applyEnv(cfg Config) Config {
	if v := strings.TrimSpace(os.Getenv("SERENE_BASE_URL")); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("SERENE_COUNTRY")); v != "" {
		cfg.Country = strings.ToUpper(v)
	}
	if v := strings.TrimSpace(os.Getenv("SERENE_AUTO_DIAL")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AutoDial = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("SERENE_LOCATION")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LocationEnabled = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("SERENE_VERBOSE")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Verbose = b
		}
	}
	return cfg
}
