package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CurrentVersion is the config schema version written by Save.
const CurrentVersion = 3

// Font size bounds in pixels per terminal row.
const (
	FontSizeMin     = 12
	FontSizeMax     = 64
	FontSizeStep    = 2
	FontSizeDefault = 16
)

// Text width bounds in columns.
const (
	TextWidthMin     = 40
	TextWidthMax     = 160
	TextWidthStep    = 4
	TextWidthDefault = 72
)

// EscAction decides what Esc does after stopping a session.
type EscAction string

const (
	EscAsk      EscAction = "ask"
	EscClose    EscAction = "close"
	EscKeepOpen EscAction = "keep-open"
)

// Valid reports whether a is a known action.
func (a EscAction) Valid() bool {
	switch a {
	case EscAsk, EscClose, EscKeepOpen:
		return true
	}
	return false
}

// KeyMapConfig holds user overrides for keybindings.
type KeyMapConfig struct {
	Bindings map[string][]string `json:"bindings,omitempty"`
}

// BindingFor returns the configured keys for an action, if present.
func (k KeyMapConfig) BindingFor(action string) ([]string, bool) {
	if len(k.Bindings) == 0 {
		return nil, false
	}
	if keys, ok := k.Bindings[action]; ok {
		return keys, true
	}
	if keys, ok := k.Bindings[strings.ToLower(action)]; ok {
		return keys, true
	}
	return nil, false
}

// Preferences are the reading settings the overlay adjusts at runtime.
type Preferences struct {
	Speed          string    `json:"speed"`
	FontSize       int       `json:"font_size"`
	TextWidth      int       `json:"text_width"`
	EscAction      EscAction `json:"esc_action"`
	ShowHints      bool      `json:"show_hints"`
	RewindFraction float64   `json:"rewind_fraction"`
	StepPx         float64   `json:"step_px"`
	FPS            int       `json:"fps"`
}

// Geometry is the last overlay size in cells.
type Geometry struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Config holds the application configuration
type Config struct {
	Paths       *Paths       `json:"-"`
	Version     int          `json:"version"`
	Preferences Preferences  `json:"preferences"`
	Geometry    Geometry     `json:"geometry"`
	KeyMap      KeyMapConfig `json:"keymap"`
	LogLevel    string       `json:"log_level"`

	// Migrated is set by Load when an older file was upgraded in memory.
	Migrated bool `json:"-"`
}

// DefaultPreferences returns the out-of-the-box reading settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Speed:          "medium",
		FontSize:       FontSizeDefault,
		TextWidth:      TextWidthDefault,
		EscAction:      EscAsk,
		ShowHints:      true,
		RewindFraction: 1.0 / 3.0,
		StepPx:         80,
		FPS:            30,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() (*Config, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return nil, err
	}
	return defaultConfigAt(paths), nil
}

func defaultConfigAt(paths *Paths) *Config {
	return &Config{
		Paths:       paths,
		Version:     CurrentVersion,
		Preferences: DefaultPreferences(),
		KeyMap:      KeyMapConfig{},
		LogLevel:    "info",
	}
}

// Load loads config overrides from ~/.tprompt/config.json if present.
func Load() (*Config, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return nil, err
	}
	return LoadFrom(paths)
}

// LoadFrom reads the config file under paths over the defaults.
func LoadFrom(paths *Paths) (*Config, error) {
	cfg := defaultConfigAt(paths)

	data, err := os.ReadFile(paths.ConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	// Files written before versioning carry no version field.
	cfg.Version = 1
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", paths.ConfigPath, err)
	}
	cfg.Migrated = migratePreferences(cfg)
	cfg.Preferences = cfg.Preferences.Normalize()
	return cfg, nil
}

// Save writes the whole config atomically.
func (c *Config) Save() error {
	if c == nil || c.Paths == nil {
		return nil
	}
	c.Version = CurrentVersion
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(c.Paths.ConfigPath, data)
}

// Normalize fills missing values and clamps the rest into range.
func (p Preferences) Normalize() Preferences {
	def := DefaultPreferences()
	switch strings.ToLower(strings.TrimSpace(p.Speed)) {
	case "slow", "medium", "fast":
		p.Speed = strings.ToLower(strings.TrimSpace(p.Speed))
	default:
		p.Speed = def.Speed
	}
	if p.FontSize == 0 {
		p.FontSize = def.FontSize
	}
	p.FontSize = ClampFontSize(p.FontSize)
	if p.TextWidth == 0 {
		p.TextWidth = def.TextWidth
	}
	p.TextWidth = ClampTextWidth(p.TextWidth)
	if !p.EscAction.Valid() {
		p.EscAction = def.EscAction
	}
	if p.RewindFraction <= 0 || p.RewindFraction > 1 {
		p.RewindFraction = def.RewindFraction
	}
	if p.StepPx <= 0 {
		p.StepPx = def.StepPx
	}
	if p.FPS <= 0 || p.FPS > 120 {
		p.FPS = def.FPS
	}
	return p
}

// ClampFontSize snaps size to the supported range.
func ClampFontSize(size int) int {
	return clampInt(size, FontSizeMin, FontSizeMax)
}

// ClampTextWidth snaps width to the supported range.
func ClampTextWidth(width int) int {
	return clampInt(width, TextWidthMin, TextWidthMax)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
