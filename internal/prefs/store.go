package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danieljhkim/pluginsync/internal/fsops"
)

// FileName is the preference document inside the state directory.
const FileName = "prefs.json"

// Store provides an interface for persisting preferences.
type Store interface {
	// Load loads the preferences.
	// Returns os.ErrNotExist if nothing has been saved yet.
	Load() (*Preferences, error)

	// Save saves the preferences atomically.
	Save(p *Preferences) error

	// Reset deletes the saved preferences.
	Reset() error
}

// FileStore implements Store using a JSON file on disk.
type FileStore struct {
	fs   fsops.FS
	path string
}

// NewFileStore creates a FileStore writing FileName under stateDir.
func NewFileStore(fs fsops.FS, stateDir string) *FileStore {
	return &FileStore{
		fs:   fs,
		path: filepath.Join(stateDir, FileName),
	}
}

// Path returns the preference file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load loads the preferences.
func (s *FileStore) Load() (*Preferences, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}

	var p Preferences
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preferences: %w", err)
	}
	if p.AutoUpdate == nil {
		p.AutoUpdate = make(map[string]bool)
	}

	return &p, nil
}

// Save saves the preferences atomically.
func (s *FileStore) Save(p *Preferences) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	if err := s.fs.AtomicWrite(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}

	return nil
}

// Reset deletes the preference file.
func (s *FileStore) Reset() error {
	if err := s.fs.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete preferences: %w", err)
	}
	return nil
}

// LoadOrNew loads the preferences, returning an empty document when none
// has been saved.
func LoadOrNew(s Store) (*Preferences, error) {
	p, err := s.Load()
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, err
	}
	return p, nil
}
