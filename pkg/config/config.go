// Package config handles loading and saving kb configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/kb/config.yaml
//   - Data:    ~/.local/share/kb/ (default board file)
//   - State:   ~/.local/state/kb/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/kanboard/pkg/model"
)

const appName = "kb"

// Board names an additional board file, used by `kb --stats-all`.
type Board struct {
	Name    string `yaml:"name"`
	Path    string `yaml:"path"`
	Backend string `yaml:"backend,omitempty"`
}

// StorageConfig selects where the main board lives.
type StorageConfig struct {
	Backend       string        `yaml:"backend,omitempty"` // json, sqlite; empty infers from path
	Path          string        `yaml:"path,omitempty"`
	AutosaveDelay time.Duration `yaml:"autosave_delay,omitempty"`
}

// ColumnConfig seeds a column into a board that has never been saved.
type ColumnConfig struct {
	ID    string `yaml:"id,omitempty"`
	Title string `yaml:"title"`
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	ColumnWidth int    `yaml:"column_width,omitempty"`
	Filter      string `yaml:"filter,omitempty"` // all, completed, incomplete
}

// WatchConfig controls reloading when the board file changes on disk.
type WatchConfig struct {
	Enabled   *bool `yaml:"enabled,omitempty"`
	ForcePoll bool  `yaml:"force_poll,omitempty"`
}

// Config is the top-level configuration for kb.
type Config struct {
	Storage        StorageConfig  `yaml:"storage,omitempty"`
	DefaultColumns []ColumnConfig `yaml:"default_columns,omitempty"`
	UI             UIConfig       `yaml:"ui,omitempty"`
	Watch          WatchConfig    `yaml:"watch,omitempty"`
	Boards         []Board        `yaml:"boards,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			AutosaveDelay: 300 * time.Millisecond,
		},
		DefaultColumns: []ColumnConfig{
			{ID: "todo", Title: "To Do"},
			{ID: "in-progress", Title: "In Progress"},
			{ID: "done", Title: "Done"},
		},
		UI: UIConfig{
			ColumnWidth: 32,
			Filter:      "all",
		},
	}
}

// ConfigDir returns the XDG config directory for kb.
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns the XDG data directory for kb.
func DataDir() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// StateDir returns the XDG state directory for kb.
func StateDir() string {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, fallback, appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	for i := range cfg.Boards {
		cfg.Boards[i].Path = expandHome(cfg.Boards[i].Path)
	}
	return cfg, nil
}

// Validate rejects values the rest of kb cannot act on.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case "", "json", "sqlite":
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}
	if _, err := model.ParseFilterMode(c.UI.Filter); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Storage.AutosaveDelay < 0 {
		return fmt.Errorf("config: negative autosave_delay")
	}
	for _, b := range c.Boards {
		if b.Path == "" {
			return fmt.Errorf("config: board %q has no path", b.Name)
		}
	}
	return nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// BoardPath returns the main board file: storage.path, or board.json (or
// board.db for sqlite) in the data directory.
func (c Config) BoardPath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	name := "board.json"
	if c.Storage.Backend == "sqlite" {
		name = "board.db"
	}
	return filepath.Join(DataDir(), name)
}

// WatchEnabled reports whether external edits should be reloaded. It is on
// unless explicitly disabled.
func (c Config) WatchEnabled() bool {
	return c.Watch.Enabled == nil || *c.Watch.Enabled
}

// FilterMode returns the initial filter. Invalid values fall back to all.
func (c Config) FilterMode() model.FilterMode {
	mode, err := model.ParseFilterMode(c.UI.Filter)
	if err != nil {
		return model.FilterAll
	}
	return mode
}

// Columns converts default_columns into model columns with contiguous
// orders. Entries without an id get one derived from the title; blank
// titles and repeated ids are skipped.
func (c Config) Columns() []model.Column {
	cols := make([]model.Column, 0, len(c.DefaultColumns))
	seen := make(map[string]bool)
	for _, cc := range c.DefaultColumns {
		title, err := model.NormalizeTitle(cc.Title)
		if err != nil {
			continue
		}
		id := cc.ID
		if id == "" {
			id = slug(title)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		cols = append(cols, model.Column{ID: id, Title: title, Order: len(cols)})
	}
	return cols
}

// FindBoard returns the board with the given name, or nil.
func (c Config) FindBoard(name string) *Board {
	for i := range c.Boards {
		if strings.EqualFold(c.Boards[i].Name, name) {
			return &c.Boards[i]
		}
	}
	return nil
}

// ResolvedPath returns the board path with ~ expanded.
func (b Board) ResolvedPath() string {
	return expandHome(b.Path)
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
		} else if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
