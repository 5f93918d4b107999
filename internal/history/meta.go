package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	metaFileName = "meta.json"
	metaVersion  = 1
)

// SessionMeta stores index-level metadata per cached session
type SessionMeta struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	IsFavorite bool   `json:"is_favorite"`
}

// Meta stores the order and favorites for all cached sessions
type Meta struct {
	Version int                     `json:"version"`
	Order   []string                `json:"order"`
	Meta    map[string]*SessionMeta `json:"meta"`
}

func newMeta() *Meta {
	return &Meta{
		Version: metaVersion,
		Order:   []string{},
		Meta:    make(map[string]*SessionMeta),
	}
}

func (s *Store) metaPath() string {
	return filepath.Join(s.baseDir, metaFileName)
}

// loadMeta loads the index; a missing file means an empty index.
func (s *Store) loadMeta() (*Meta, error) {
	data, err := os.ReadFile(s.metaPath())
	if err != nil {
		if os.IsNotExist(err) {
			return newMeta(), nil
		}
		return nil, fmt.Errorf("failed to read meta file: %w", err)
	}

	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse meta file: %w", err)
	}

	if meta.Meta == nil {
		meta.Meta = make(map[string]*SessionMeta)
	}
	if meta.Order == nil {
		meta.Order = []string{}
	}
	return &meta, nil
}

func (s *Store) saveMeta(meta *Meta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal meta: %w", err)
	}
	if err := os.WriteFile(s.metaPath(), data, 0o600); err != nil {
		return fmt.Errorf("failed to write meta file: %w", err)
	}
	return nil
}

// addToMeta inserts or updates one index entry.
func (s *Store) addToMeta(id, title string) error {
	meta, err := s.loadMeta()
	if err != nil {
		return err
	}

	if entry, exists := meta.Meta[id]; exists {
		entry.Title = title
		return s.saveMeta(meta)
	}

	meta.Meta[id] = &SessionMeta{ID: id, Title: title}
	meta.Order = append(meta.Order, id)
	return s.saveMeta(meta)
}

// removeFromMeta removes one index entry.
func (s *Store) removeFromMeta(id string) error {
	meta, err := s.loadMeta()
	if err != nil {
		return err
	}

	newOrder := make([]string, 0, len(meta.Order))
	for _, oid := range meta.Order {
		if oid != id {
			newOrder = append(newOrder, oid)
		}
	}
	meta.Order = newOrder
	delete(meta.Meta, id)

	return s.saveMeta(meta)
}

// IsFavorite returns whether a session is marked as favorite
func (s *Store) IsFavorite(id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, err := s.loadMeta()
	if err != nil {
		return false, err
	}
	if entry, exists := meta.Meta[id]; exists {
		return entry.IsFavorite, nil
	}
	return false, nil
}

// ToggleFavorite toggles the favorite status and returns the new value.
func (s *Store) ToggleFavorite(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.loadMeta()
	if err != nil {
		return false, err
	}

	entry, exists := meta.Meta[id]
	if !exists {
		cached, err := s.loadSession(id)
		if err != nil {
			return false, err
		}
		entry = &SessionMeta{ID: id, Title: cached.Title}
		meta.Meta[id] = entry
		meta.Order = append(meta.Order, id)
	}

	entry.IsFavorite = !entry.IsFavorite
	if err := s.saveMeta(meta); err != nil {
		return false, err
	}
	return entry.IsFavorite, nil
}
