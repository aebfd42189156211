// Package prefs persists small bits of state between runs: the last layout
// mode and path, and the lifetime total of space freed while watching.
package prefs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

// Prefs holds persistent preferences
type Prefs struct {
	LastMode      string `toml:"last_mode,omitempty"`
	LastPath      string `toml:"last_path,omitempty"`
	FreedLifetime int64  `toml:"freed_lifetime"`
}

// Manager handles loading and saving prefs
type Manager struct {
	path         string
	prefs        Prefs
	mu           sync.RWMutex
	dirty        bool
	saveTimer    *time.Timer
	saveDuration time.Duration
}

// NewManager creates a manager for the file at path. An empty path means
// DefaultPath().
func NewManager(path string) *Manager {
	if path == "" {
		path = DefaultPath()
	}
	return &Manager{
		path:         path,
		saveDuration: 2 * time.Second, // Debounce saves
	}
}

// DefaultPath returns ~/.fsview/prefs.toml
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fsview-prefs.toml"
	}
	return filepath.Join(home, ".fsview", "prefs.toml")
}

// Load loads prefs from disk
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prefs = Prefs{}
	if _, err := toml.DecodeFile(m.path, &m.prefs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// No prefs file yet, start fresh
			return nil
		}
		return err
	}
	return nil
}

// Save saves prefs to disk immediately
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.saveLocked()
}

// saveLocked saves prefs without acquiring the lock (caller must hold lock)
func (m *Manager) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m.prefs); err != nil {
		return err
	}

	m.dirty = false
	return os.WriteFile(m.path, buf.Bytes(), 0o644)
}

// scheduleLocked arms a debounced save (caller must hold lock)
func (m *Manager) scheduleLocked() {
	m.dirty = true

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	m.saveTimer = time.AfterFunc(m.saveDuration, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.dirty {
			_ = m.saveLocked() // Ignore errors for background save
		}
	})
}

// Prefs returns a copy of the current prefs
func (m *Manager) Prefs() Prefs {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prefs
}

// FreedLifetime returns the lifetime freed bytes
func (m *Manager) FreedLifetime() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prefs.FreedLifetime
}

// SetLastMode records the layout mode in use
func (m *Manager) SetLastMode(mode string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.prefs.LastMode == mode {
		return
	}
	m.prefs.LastMode = mode
	m.scheduleLocked()
}

// SetLastPath records the scanned path
func (m *Manager) SetLastPath(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.prefs.LastPath == path {
		return
	}
	m.prefs.LastPath = path
	m.scheduleLocked()
}

// AddFreed adds to the lifetime freed counter and schedules a debounced save
func (m *Manager) AddFreed(bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prefs.FreedLifetime += bytes
	m.scheduleLocked()
}

// Close ensures any pending saves are written
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveTimer != nil {
		m.saveTimer.Stop()
		m.saveTimer = nil
	}

	if m.dirty {
		return m.saveLocked()
	}
	return nil
}
