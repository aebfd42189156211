package prefs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingStartsFresh(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "prefs.toml"))
	require.NoError(t, m.Load())
	assert.Equal(t, Prefs{}, m.Prefs())
}

func TestCloseWritesPendingChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "prefs.toml")
	m := NewManager(path)
	require.NoError(t, m.Load())

	m.SetLastMode("tree")
	m.SetLastPath("/data")
	m.AddFreed(1000)
	m.AddFreed(24)
	require.NoError(t, m.Close())

	reloaded := NewManager(path)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, Prefs{LastMode: "tree", LastPath: "/data", FreedLifetime: 1024}, reloaded.Prefs())
	assert.Equal(t, int64(1024), reloaded.FreedLifetime())
}

func TestCloseWithoutChangesWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	m := NewManager(path)
	require.NoError(t, m.Load())
	require.NoError(t, m.Close())

	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDebouncedSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	m := NewManager(path)
	m.saveDuration = 10 * time.Millisecond

	m.SetLastMode("disc")
	require.Eventually(t, func() bool {
		reloaded := NewManager(path)
		return reloaded.Load() == nil && reloaded.Prefs().LastMode == "disc"
	}, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, m.Close())
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, os.WriteFile(path, []byte("last_mode = [\n"), 0o644))
	assert.Error(t, NewManager(path).Load())
}
