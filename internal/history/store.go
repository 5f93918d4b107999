// Package history provides a local cache of past conversations so listing
// and reopening sessions works offline. The backend remains the source of
// truth; the cache is refreshed from the session list endpoint.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/serenelabs/serene/internal/config"
	"github.com/serenelabs/serene/internal/models"
)

// CachedSession is one conversation as stored on disk.
type CachedSession struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	UpdatedAt time.Time        `json:"updated_at"`
	Messages  []models.Message `json:"messages"`
}

// Store manages the on-disk session cache
type Store struct {
	baseDir string
	mu      sync.RWMutex
}

// DefaultStore opens the store under the user's config directory.
func DefaultStore() (*Store, error) {
	configDir, err := config.EnsureConfigDir()
	if err != nil {
		return nil, err
	}
	return NewStore(configDir)
}

// NewStore creates a store rooted at baseDir/sessions.
func NewStore(baseDir string) (*Store, error) {
	sessionsDir := filepath.Join(baseDir, "sessions")
	if err := os.MkdirAll(sessionsDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &Store{baseDir: sessionsDir}, nil
}

// Put writes or replaces one cached session and its index entry.
func (s *Store) Put(detail *models.SessionDetail) error {
	if detail == nil || detail.ID == "" {
		return fmt.Errorf("session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cached := &CachedSession{
		ID:        detail.ID,
		Title:     detail.Title,
		UpdatedAt: time.Now(),
		Messages:  detail.Messages,
	}
	if cached.Title == "" {
		cached.Title = titleFromMessages(detail.Messages)
	}

	if err := s.saveSession(cached); err != nil {
		return err
	}
	return s.addToMeta(cached.ID, cached.Title)
}

// Get loads one cached session by id.
func (s *Store) Get(id string) (*CachedSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadSession(id)
}

// List returns all cached sessions, most recently updated first.
// Corrupted files are skipped rather than failing the whole listing.
func (s *Store) List() ([]*CachedSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var sessions []*CachedSession
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if entry.Name() == metaFileName {
			continue
		}

		id := entry.Name()[:len(entry.Name())-5]
		cached, err := s.loadSession(id)
		if err != nil {
			continue
		}
		sessions = append(sessions, cached)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

// Delete removes one cached session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.sessionPath(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("session not cached: %s", id)
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return s.removeFromMeta(id)
}

// Refresh replaces the index from a backend session listing. Full
// transcripts are only written by Put; Refresh keeps the listing current.
func (s *Store) Refresh(summaries []models.SessionSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.loadMeta()
	if err != nil {
		return err
	}

	for _, summary := range summaries {
		entry, exists := meta.Meta[summary.ID]
		if !exists {
			meta.Meta[summary.ID] = &SessionMeta{ID: summary.ID, Title: summary.Title}
			meta.Order = append(meta.Order, summary.ID)
			continue
		}
		if summary.Title != "" {
			entry.Title = summary.Title
		}
	}

	return s.saveMeta(meta)
}

// ClearAll deletes every cached session and the index.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to read sessions directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(s.baseDir, entry.Name())); err != nil {
			return fmt.Errorf("failed to delete %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// titleFromMessages derives a listing title from the first user message.
func titleFromMessages(messages []models.Message) string {
	for _, msg := range messages {
		if msg.Role != models.RoleUser {
			continue
		}
		title := msg.Content
		if len(title) > 50 {
			title = title[:50] + "..."
		}
		return title
	}
	return fmt.Sprintf("Session %s", time.Now().Format("2006-01-02 15:04"))
}

// Internal methods

func (s *Store) sessionPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *Store) loadSession(id string) (*CachedSession, error) {
	data, err := os.ReadFile(s.sessionPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("session not cached: %s", id)
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var cached CachedSession
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return &cached, nil
}

func (s *Store) saveSession(cached *CachedSession) error {
	data, err := json.MarshalIndent(cached, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(s.sessionPath(cached.ID), data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}
