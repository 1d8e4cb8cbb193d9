// ABOUTME: Persisted user preferences consumed by the sync engine
// ABOUTME: Holds the remote's last-modified marker as of the last full catch-up

package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is the persisted-state handle for the engine's cross-call scalar.
// It must survive process restarts.
type Store interface {
	LastUpdate() string
	SetLastUpdate(value string) error
}

// FileStore persists preferences as a small JSON file in the data directory.
type FileStore struct {
	path string

	mu    sync.Mutex
	state fileState
}

type fileState struct {
	LastUpdate string `json:"last_update,omitempty"`
}

// NewFileStore loads (or initializes) the preferences file at path.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read preferences: %w", err)
	}
	if err := json.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("parse preferences: %w", err)
	}
	return s, nil
}

func (s *FileStore) LastUpdate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.LastUpdate
}

func (s *FileStore) SetLastUpdate(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LastUpdate = value
	return s.write()
}

// write persists via temp file + rename so a crash never leaves a torn file.
func (s *FileStore) write() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create preferences directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace preferences: %w", err)
	}
	return nil
}

// Memory is an in-memory Store for tests.
type Memory struct {
	mu    sync.Mutex
	value string

	// FailSet, when non-nil, is returned from SetLastUpdate.
	FailSet error
}

func (m *Memory) LastUpdate() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

func (m *Memory) SetLastUpdate(value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSet != nil {
		return m.FailSet
	}
	m.value = value
	return nil
}
