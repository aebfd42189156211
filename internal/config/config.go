// Package config loads fsview settings from a TOML file over built-in
// defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/lumipallolabs/fsview/internal/anim"
	"github.com/lumipallolabs/fsview/internal/layout"
)

// ErrInvalidMode is returned when the configured layout mode is unknown
var ErrInvalidMode = errors.New("invalid layout mode")

// Duration is a time.Duration written as a string ("400ms") in TOML
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config holds every user-tunable setting
type Config struct {
	// Mode is the layout mode used when none is given on the command line
	Mode string `toml:"mode"`

	Scan      ScanConfig      `toml:"scan"`
	Cache     CacheConfig     `toml:"cache"`
	Animation AnimationConfig `toml:"animation"`
}

type ScanConfig struct {
	Workers int `toml:"workers"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
	Keep    int    `toml:"keep"` // snapshots kept per root
}

type AnimationConfig struct {
	Duration Duration `toml:"duration"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Mode: layout.ModeTreeV.String(),
		Scan: ScanConfig{Workers: 8},
		Cache: CacheConfig{
			Enabled: true,
			Keep:    3,
		},
		Animation: AnimationConfig{
			Duration: Duration{anim.DefaultDuration},
		},
	}
}

// DefaultPath returns ~/.config/fsview/config.toml, honoring XDG_CONFIG_HOME
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "fsview", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "fsview.toml"
	}
	return filepath.Join(home, ".config", "fsview", "config.toml")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that cannot be clamped
func (c *Config) Validate() error {
	if _, err := layout.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}
	if c.Scan.Workers < 1 {
		c.Scan.Workers = 1
	}
	if c.Cache.Keep < 1 {
		c.Cache.Keep = 1
	}
	if c.Animation.Duration.Duration < 0 {
		c.Animation.Duration.Duration = 0
	}
	return nil
}

// LayoutMode returns the configured mode. Validate has already rejected
// unknown names.
func (c *Config) LayoutMode() layout.Mode {
	mode, _ := layout.ParseMode(c.Mode)
	return mode
}
