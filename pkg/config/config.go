// Package config loads cladeview settings from a TOML file.
//
// A missing file is not an error: [Load] falls back to [Default], and any
// keys present in the file override the defaults field by field.
//
//	[layout]
//	width = 500.0
//	height = 500.0
//	rotations = 60
//	margin = 0.95
//
//	[sector]
//	default_color = "ff0000"
//
//	[cache]
//	backend = "file"   # file, redis or none
//	dir = ""           # defaults to $XDG_CACHE_HOME/cladeview
//	ttl = "24h"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	cverrors "github.com/matzehuels/cladeview/pkg/errors"
	"github.com/matzehuels/cladeview/pkg/geom"
	"github.com/matzehuels/cladeview/pkg/layout"
)

const appName = "cladeview"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the full configuration file.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Sector SectorConfig `toml:"sector"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig holds the viewport and rotation search settings.
type LayoutConfig struct {
	Width     float64 `toml:"width"`
	Height    float64 `toml:"height"`
	Rotations int     `toml:"rotations"`
	Margin    float64 `toml:"margin"`
}

// SectorConfig holds sector defaults.
type SectorConfig struct {
	DefaultColor string `toml:"default_color"`
}

// CacheConfig selects and tunes the cache backend.
type CacheConfig struct {
	Backend   string        `toml:"backend"`
	Dir       string        `toml:"dir"`
	TTL       time.Duration `toml:"ttl"`
	RedisAddr string        `toml:"redis_addr"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: LayoutConfig{
			Width:     500,
			Height:    500,
			Rotations: layout.DefaultRotations,
			Margin:    layout.DefaultMargin,
		},
		Sector: SectorConfig{DefaultColor: "ff0000"},
		Cache: CacheConfig{
			Backend:   BackendFile,
			TTL:       24 * time.Hour,
			RedisAddr: "localhost:6379",
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// LayoutOptions converts the layout section to layout options.
func (c Config) LayoutOptions() layout.Options {
	return layout.Options{Rotations: c.Layout.Rotations, Margin: c.Layout.Margin}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Layout.Width <= 0 || c.Layout.Height <= 0 {
		return cverrors.New(cverrors.ErrCodeInvalidInput,
			"layout size %vx%v must be positive", c.Layout.Width, c.Layout.Height)
	}
	if c.Layout.Rotations < 1 {
		return cverrors.New(cverrors.ErrCodeInvalidInput, "layout.rotations must be at least 1")
	}
	if c.Layout.Margin <= 0 || c.Layout.Margin > 1 {
		return cverrors.New(cverrors.ErrCodeInvalidInput, "layout.margin %v must be in (0, 1]", c.Layout.Margin)
	}
	if _, err := geom.DecodeColor(c.Sector.DefaultColor); err != nil {
		return fmt.Errorf("sector.default_color: %w", err)
	}
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return cverrors.New(cverrors.ErrCodeInvalidInput,
			"cache.backend %q must be file, redis or none", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return cverrors.New(cverrors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	return nil
}

// Load reads path on top of [Default]. An empty path means [DefaultPath]; a
// missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses TOML data into cfg and validates the result. Keys that are
// not part of the schema are rejected.
func Decode(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return cverrors.Wrap(cverrors.ErrCodeInvalidInput, err, "parse config")
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return cverrors.New(cverrors.ErrCodeInvalidInput, "unknown config key %q", undec[0].String())
	}
	return cfg.Validate()
}

// DefaultPath returns $XDG_CONFIG_HOME/cladeview/config.toml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns the configured cache directory, or
// $XDG_CACHE_HOME/cladeview (~/.cache/cladeview) when none is set.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
