// Package store persists the chat session identifier between runs.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SessionKey is the fixed key the session identifier is stored under.
const SessionKey = "chatSessionId"

// ErrNotFound is returned by Load when no identifier has been stored.
var ErrNotFound = errors.New("session id not stored")

// Store is the durable key-value slot holding the session identifier.
type Store interface {
	Load() (string, error)
	Save(id string) error
	Clear() error
}

// FileStore keeps the identifier in <dir>/chatSessionId.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the file backing the store.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, SessionKey)
}

func (s *FileStore) Load() (string, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read session id: %w", err)
	}
	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", ErrNotFound
	}
	return id, nil
}

// Save overwrites any previously stored identifier.
func (s *FileStore) Save(id string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("save session id: %w", err)
	}
	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, []byte(id), 0o600); err != nil {
		return fmt.Errorf("save session id: %w", err)
	}
	if err := os.Rename(tmp, s.Path()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("save session id: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.Path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear session id: %w", err)
	}
	return nil
}

// Memory is an in-process Store, used when the profile directory is not
// writable and in tests.
type Memory struct {
	id string
}

func (m *Memory) Load() (string, error) {
	if m.id == "" {
		return "", ErrNotFound
	}
	return m.id, nil
}

func (m *Memory) Save(id string) error {
	m.id = id
	return nil
}

func (m *Memory) Clear() error {
	m.id = ""
	return nil
}
