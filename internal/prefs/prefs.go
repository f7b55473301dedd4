// Package prefs stores terminal UI settings that do not belong in the backend
// profile: the colour theme, the view the UI opens on, and board density.
//
// The file lives at ~/.config/sidequest/prefs.toml. A missing file means
// defaults. A file that cannot be read or decoded also yields defaults, and
// Load reports why so the caller can log it; the UI keeps working either way.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Tab names a view the UI can open on.
type Tab string

const (
	TabBoard   Tab = "board"
	TabProfile Tab = "profile"
	TabHistory Tab = "history"
)

// ParseTab returns the tab named s, ignoring case, or TabBoard.
func ParseTab(s string) Tab {
	switch t := Tab(strings.ToLower(strings.TrimSpace(s))); t {
	case TabProfile, TabHistory:
		return t
	default:
		return TabBoard
	}
}

// Prefs holds terminal UI settings.
type Prefs struct {
	Theme      string `toml:"theme"`
	DefaultTab Tab    `toml:"default_tab"`
	// Compact shows one line per quest, hiding category, time and expiry.
	Compact bool `toml:"compact"`
}

const (
	defaultPrefsPath = "~/.config/sidequest/prefs.toml"
	defaultTheme     = "Dracula"
)

// Default returns the settings used when no file exists.
func Default() Prefs {
	return Prefs{Theme: defaultTheme, DefaultTab: TabBoard}
}

func (p Prefs) normalize() Prefs {
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = defaultTheme
	}
	p.DefaultTab = ParseTab(string(p.DefaultTab))
	return p
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads the preferences at path (empty means DefaultPath). The returned
// Prefs are always usable: on error they are the defaults.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Default(), err
	}

	raw, err := os.ReadFile(resolved)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("read prefs: %w", err)
	}

	p := Default()
	if err := toml.Unmarshal(raw, &p); err != nil {
		return Default(), fmt.Errorf("decode prefs %s: %w", resolved, err)
	}
	return p.normalize(), nil
}

// Save writes p to path, creating directories as needed. The file is replaced
// atomically so a crash never leaves a half-written file behind.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return err
	}

	data, err := toml.Marshal(p.normalize())
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".prefs-*.toml")
	if err != nil {
		return fmt.Errorf("create temp prefs: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp.Name(), resolved); err != nil {
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}

// Update loads the preferences at path, applies fn and saves the result.
// An unreadable file is replaced by defaults with fn applied.
func Update(path string, fn func(*Prefs)) (Prefs, error) {
	p, _ := Load(path)
	fn(&p)
	if err := Save(path, p); err != nil {
		return p, err
	}
	return p.normalize(), nil
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = defaultPrefsPath
	}
	if rest, ok := strings.CutPrefix(path, "~"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, rest)
	}
	return filepath.Abs(path)
}
