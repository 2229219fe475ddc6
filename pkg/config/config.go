// Package config loads Karmyc settings from TOML or YAML files.
//
// Files are decoded over [Default], so a file only needs the keys it changes:
//
//	[engine]
//	min_content_px = 60
//	insert_policy = "fixed"
//
//	[store]
//	backend = "sqlite"
//	path = "~/.local/share/karmyc/layouts.db"
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/karmyc/pkg/errors"
	"github.com/matzehuels/karmyc/pkg/geom"
	"github.com/matzehuels/karmyc/pkg/gesture"
	"github.com/matzehuels/karmyc/pkg/layout"
	"github.com/matzehuels/karmyc/pkg/store"
)

// Config is the complete configuration.
type Config struct {
	Engine   EngineConfig   `toml:"engine" yaml:"engine"`
	Store    store.Config   `toml:"store" yaml:"store"`
	Server   ServerConfig   `toml:"server" yaml:"server"`
	Viewport ViewportConfig `toml:"viewport" yaml:"viewport"`
}

// EngineConfig holds the layout engine and gesture tunables.
type EngineConfig struct {
	MinContentPx         float64 `toml:"min_content_px" yaml:"min_content_px"`
	ReplaceThreshold     float64 `toml:"replace_threshold" yaml:"replace_threshold"`
	DirectionThresholdPx float64 `toml:"direction_threshold_px" yaml:"direction_threshold_px"`
	DebounceMS           int     `toml:"debounce_ms" yaml:"debounce_ms"`
	InsertPolicy         string  `toml:"insert_policy" yaml:"insert_policy"`
	FixedInsertShare     float64 `toml:"fixed_insert_share" yaml:"fixed_insert_share"`
	DefaultAreaType      string  `toml:"default_area_type" yaml:"default_area_type"`
}

// ServerConfig configures `karmyc serve`.
type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
	// Screen is opened (or created) at startup.
	Screen string `toml:"screen" yaml:"screen"`
	// SaveOnExit saves every screen when the server stops.
	SaveOnExit bool `toml:"save_on_exit" yaml:"save_on_exit"`
}

// ViewportConfig is the root rectangle new screens are projected into.
type ViewportConfig struct {
	Width  float64 `toml:"width" yaml:"width"`
	Height float64 `toml:"height" yaml:"height"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			MinContentPx:         40,
			ReplaceThreshold:     layout.DefaultReplaceThreshold,
			DirectionThresholdPx: 10,
			DebounceMS:           75,
			InsertPolicy:         string(layout.InsertEqual),
			FixedInsertShare:     0.3,
			DefaultAreaType:      layout.DefaultAreaType,
		},
		Store: store.Config{
			Backend: store.BackendFile,
			Path:    filepath.Join(DataDir(), "layouts"),
		},
		Server: ServerConfig{
			Addr:   "127.0.0.1:7070",
			Screen: "main",
		},
		Viewport: ViewportConfig{Width: 1280, Height: 800},
	}
}

// Dir returns the configuration directory: $XDG_CONFIG_HOME/karmyc or
// ~/.config/karmyc.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "karmyc")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "karmyc")
	}
	return ".karmyc"
}

// DataDir returns the data directory: $XDG_DATA_HOME/karmyc or
// ~/.local/share/karmyc.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "karmyc")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "karmyc")
	}
	return ".karmyc"
}

// DefaultPath returns the default configuration file.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the file at path over the defaults. The decoder is chosen by
// extension: .yaml and .yml use YAML, everything else TOML. A missing file
// yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		_, err = toml.Decode(string(data), &cfg)
	}
	if err != nil {
		return Default(), errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}

	cfg.expand()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// expand resolves environment variables in secrets and a leading ~ in paths.
func (c *Config) expand() {
	c.Store.Password = os.ExpandEnv(c.Store.Password)
	c.Store.URI = os.ExpandEnv(c.Store.URI)
	c.Store.Path = expandHome(os.ExpandEnv(c.Store.Path))
}

func expandHome(p string) string {
	rest, ok := strings.CutPrefix(p, "~/")
	if !ok {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, rest)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	e := c.Engine
	switch {
	case e.MinContentPx < 0:
		return errors.New(errors.ErrCodeInvalidInput, "engine.min_content_px must not be negative")
	case e.ReplaceThreshold <= 0 || e.ReplaceThreshold >= 0.5:
		return errors.New(errors.ErrCodeInvalidInput, "engine.replace_threshold must be in (0, 0.5), got %v", e.ReplaceThreshold)
	case e.DirectionThresholdPx <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "engine.direction_threshold_px must be positive")
	case e.DebounceMS < 0:
		return errors.New(errors.ErrCodeInvalidInput, "engine.debounce_ms must not be negative")
	case !layout.InsertPolicy(e.InsertPolicy).Valid():
		return errors.New(errors.ErrCodeInvalidInput, "engine.insert_policy must be %q or %q, got %q", layout.InsertEqual, layout.InsertFixed, e.InsertPolicy)
	case e.FixedInsertShare <= 0 || e.FixedInsertShare >= 1:
		return errors.New(errors.ErrCodeInvalidInput, "engine.fixed_insert_share must be in (0, 1), got %v", e.FixedInsertShare)
	}
	if e.DefaultAreaType != "" {
		if err := errors.ValidateAreaType(e.DefaultAreaType); err != nil {
			return err
		}
	}
	if !slices.Contains(store.Backends, c.Store.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "store.backend must be one of %v, got %q", store.Backends, c.Store.Backend)
	}
	if c.Store.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "store.ttl must not be negative")
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "viewport must have positive width and height")
	}
	if c.Server.Screen != "" {
		if err := errors.ValidateScreenName(c.Server.Screen); err != nil {
			return err
		}
	}
	return nil
}

// EngineOptions converts the engine section into layout options.
func (c Config) EngineOptions() layout.Options {
	return layout.Options{
		MinContentPx:     c.Engine.MinContentPx,
		ReplaceThreshold: c.Engine.ReplaceThreshold,
		InsertPolicy:     layout.InsertPolicy(c.Engine.InsertPolicy),
		FixedInsertShare: c.Engine.FixedInsertShare,
		DefaultAreaType:  c.Engine.DefaultAreaType,
	}
}

// GestureOptions converts the engine section into gesture options.
func (c Config) GestureOptions() gesture.Options {
	return gesture.Options{
		DirectionThreshold: c.Engine.DirectionThresholdPx,
		Debounce:           time.Duration(c.Engine.DebounceMS) * time.Millisecond,
	}
}

// Bounds returns the viewport as a rectangle at the origin.
func (c Config) Bounds() geom.Rect {
	return geom.Rect{Width: c.Viewport.Width, Height: c.Viewport.Height}
}
