// Package config loads the notes configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Themes.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// ColorConfig holds 256-colour palette indices for the UI chrome.
type ColorConfig struct {
	TitleBg       int `yaml:"title_bg"`
	TitleFg       int `yaml:"title_fg"`
	StatusBg      int `yaml:"status_bg"`
	StatusFg      int `yaml:"status_fg"`
	BorderColor   int `yaml:"border_color"`
	SelectedFg    int `yaml:"selected_fg"`
	PinnedColor   int `yaml:"pinned_color"`
	CheckboxColor int `yaml:"checkbox_color"`
	SelectionBg   int `yaml:"selection_bg"`
}

// Validate checks every index is a valid 256-colour value.
func (c ColorConfig) Validate() error {
	inRange := []validation.Rule{validation.Min(0), validation.Max(255)}
	return validation.ValidateStruct(&c,
		validation.Field(&c.TitleBg, inRange...),
		validation.Field(&c.TitleFg, inRange...),
		validation.Field(&c.StatusBg, inRange...),
		validation.Field(&c.StatusFg, inRange...),
		validation.Field(&c.BorderColor, inRange...),
		validation.Field(&c.SelectedFg, inRange...),
		validation.Field(&c.PinnedColor, inRange...),
		validation.Field(&c.CheckboxColor, inRange...),
		validation.Field(&c.SelectionBg, inRange...),
	)
}

// EditorConfig tunes the editor pane.
type EditorConfig struct {
	// FastModeThreshold is the content length, in characters, above which a
	// freshly opened note is first shown as a read-only preview.
	FastModeThreshold int `yaml:"fast_mode_threshold"`
	// FastModeDelay is how long the preview is shown before the full editor
	// takes over.
	FastModeDelay  time.Duration `yaml:"fast_mode_delay"`
	InsertTaskKeys []string      `yaml:"insert_task_keys"`
	CopyKeys       []string      `yaml:"copy_keys"`
}

// Validate checks thresholds and key lists.
func (c EditorConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.FastModeThreshold, validation.Required, validation.Min(1)),
		validation.Field(&c.FastModeDelay, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.InsertTaskKeys, validation.Required, validation.Each(validation.Required)),
		validation.Field(&c.CopyKeys, validation.Required, validation.Each(validation.Required)),
	)
}

// Config is the full application configuration.
type Config struct {
	NotesPath         string        `yaml:"notes_path"`
	DataDir           string        `yaml:"data_dir"`
	ExternalEditor    string        `yaml:"external_editor"`
	KeyboardShortcuts bool          `yaml:"keyboard_shortcuts"`
	Theme             string        `yaml:"theme"`
	Ignore            []string      `yaml:"ignore"`
	LogLevel          string        `yaml:"log_level"`
	FlushInterval     time.Duration `yaml:"flush_interval"`
	Editor            EditorConfig  `yaml:"editor"`
	Colors            ColorConfig   `yaml:"colors"`
}

// DefaultConfig returns a Config with sensible defaults. dataDir is left to
// the caller.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		NotesPath:         filepath.Join(home, "Documents", "notes"),
		ExternalEditor:    "nano",
		KeyboardShortcuts: true,
		Theme:             ThemeDark,
		Ignore:            []string{".git/**", "**/.*"},
		LogLevel:          "info",
		FlushInterval:     500 * time.Millisecond,
		Editor: EditorConfig{
			FastModeThreshold: 5000,
			FastModeDelay:     120 * time.Millisecond,
			InsertTaskKeys:    []string{"alt+C"},
			CopyKeys:          []string{"alt+w"},
		},
		Colors: ColorConfig{
			TitleBg:       4,   // Blue
			TitleFg:       15,  // Bright White
			StatusBg:      8,   // Dark Gray
			StatusFg:      7,   // Light Gray
			BorderColor:   12,  // Bright Blue
			SelectedFg:    11,  // Bright Yellow
			PinnedColor:   9,   // Bright Red
			CheckboxColor: 14,  // Bright Cyan
			SelectionBg:   69,
		},
	}
}

// DefaultPath returns ~/.config/notes/config.yaml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "notes", "config.yaml")
}

// DefaultDataDir returns ~/.local/share/notes.
func DefaultDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "notes")
}

// Load reads configPath over the defaults. A missing file yields the defaults.
// A .env file beside the config is loaded into the environment first, and
// ${VAR} references in the YAML are expanded. A non-empty dataDir overrides
// the file.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		envFile := filepath.Join(filepath.Dir(configPath), ".env")
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}

		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", configPath, err)
			}
		}
	}

	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// applyDefaults fills zero values and expands a leading ~ in paths.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir()
	}
	if c.Theme == "" {
		c.Theme = defaults.Theme
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.FlushInterval == 0 {
		c.FlushInterval = defaults.FlushInterval
	}
	if c.Editor.FastModeThreshold == 0 {
		c.Editor.FastModeThreshold = defaults.Editor.FastModeThreshold
	}
	if c.Editor.FastModeDelay == 0 {
		c.Editor.FastModeDelay = defaults.Editor.FastModeDelay
	}
	if len(c.Editor.InsertTaskKeys) == 0 {
		c.Editor.InsertTaskKeys = defaults.Editor.InsertTaskKeys
	}
	if len(c.Editor.CopyKeys) == 0 {
		c.Editor.CopyKeys = defaults.Editor.CopyKeys
	}
	c.NotesPath = expandHome(c.NotesPath)
	c.DataDir = expandHome(c.DataDir)
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.NotesPath, validation.Required),
		validation.Field(&c.DataDir, validation.Required),
		validation.Field(&c.Theme, validation.In(ThemeDark, ThemeLight)),
		validation.Field(&c.LogLevel, validation.In("trace", "debug", "info", "warn", "error")),
		validation.Field(&c.Ignore, validation.Each(validation.By(validGlob))),
		validation.Field(&c.FlushInterval, validation.Min(10*time.Millisecond)),
		validation.Field(&c.Editor),
		validation.Field(&c.Colors),
	)
}

// SelectionsDB is the SQLite file holding persisted selections.
func (c *Config) SelectionsDB() string {
	return filepath.Join(c.DataDir, "selections.db")
}

// LogFile is the default log destination.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "notes.log")
}

func validGlob(v any) error {
	if p, _ := v.(string); !doublestar.ValidatePattern(p) {
		return fmt.Errorf("bad glob %q", p)
	}
	return nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}
