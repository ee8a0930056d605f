package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SaveOverwritesAndLoads(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profile")
	s := NewFileStore(dir)

	_, err := s.Load()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save("abc123"))
	require.NoError(t, s.Save("def456"))

	id, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "def456", id)

	data, err := os.ReadFile(filepath.Join(dir, SessionKey))
	require.NoError(t, err)
	assert.Equal(t, "def456", string(data))
}

func TestFileStore_Clear(t *testing.T) {
	s := NewFileStore(t.TempDir())
	require.NoError(t, s.Clear(), "clearing an empty store is fine")

	require.NoError(t, s.Save("abc123"))
	require.NoError(t, s.Clear())
	_, err := s.Load()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_BlankFileIsNotFound(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SessionKey), []byte("  \n"), 0o600))

	_, err := NewFileStore(dir).Load()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory(t *testing.T) {
	var m Memory
	_, err := m.Load()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Save("x"))
	id, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, "x", id)

	require.NoError(t, m.Clear())
	_, err = m.Load()
	assert.ErrorIs(t, err, ErrNotFound)
}
