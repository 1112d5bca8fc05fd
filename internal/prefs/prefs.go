package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrAuthModeLocked is returned when a caller tries to clear the auth-mode
// flag after it has been set. Mode migration is one-directional.
var ErrAuthModeLocked = errors.New("auth_mode_locked")

type settings struct {
	AuthModeEnabled bool `json:"auth_mode_enabled"`
}

// Preferences is the file-backed key-value preference store. The settings
// file lives next to the store files in the application data directory.
type Preferences struct {
	path string

	mu     sync.Mutex
	values settings
}

// Open loads the settings file at path, creating defaults if it is missing.
func Open(path string) (*Preferences, error) {
	p := &Preferences{path: path}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if err := json.Unmarshal(raw, &p.values); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	return p, nil
}

func (p *Preferences) IsAuthModeEnabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.values.AuthModeEnabled
}

// SetAuthModeEnabled persists the mode flag. Once enabled it can never be
// cleared again within the same installation.
func (p *Preferences) SetAuthModeEnabled(enabled bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.values.AuthModeEnabled && !enabled {
		return ErrAuthModeLocked
	}
	prev := p.values.AuthModeEnabled
	p.values.AuthModeEnabled = enabled
	if err := p.flushLocked(); err != nil {
		p.values.AuthModeEnabled = prev
		return err
	}
	return nil
}

// flushLocked writes the settings atomically: temp file then rename.
func (p *Preferences) flushLocked() error {
	raw, err := json.MarshalIndent(p.values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}
