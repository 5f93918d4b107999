package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GetTokenPath returns the path to the token file
func GetTokenPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "token"), nil
}

// LoadToken reads the access token. SERENE_TOKEN takes precedence over the
// token file so CI and scripts never need to touch the filesystem.
func LoadToken() (string, error) {
	if token := strings.TrimSpace(os.Getenv("SERENE_TOKEN")); token != "" {
		return token, nil
	}

	tokenPath, err := GetTokenPath()
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("no access token found. Run:\n  serene config set-token")
		}
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file is empty. Run:\n  serene config set-token")
	}
	return token, nil
}

// SaveToken writes the access token with owner-only permissions.
func SaveToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	if _, err := EnsureConfigDir(); err != nil {
		return err
	}

	tokenPath, err := GetTokenPath()
	if err != nil {
		return err
	}

	if err := os.WriteFile(tokenPath, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// ClearToken removes the stored token.
func ClearToken() error {
	tokenPath, err := GetTokenPath()
	if err != nil {
		return err
	}
	if err := os.Remove(tokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
