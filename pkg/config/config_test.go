package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	cverrors "github.com/matzehuels/cladeview/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Layout.Rotations != 60 {
		t.Errorf("Rotations = %d, want 60", cfg.Layout.Rotations)
	}
	if cfg.Layout.Margin != 0.95 {
		t.Errorf("Margin = %v, want 0.95", cfg.Layout.Margin)
	}
	opts := cfg.LayoutOptions()
	if opts.Rotations != 60 || opts.Margin != 0.95 {
		t.Errorf("LayoutOptions() = %+v", opts)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[layout]
width = 1024.0
rotations = 12

[sector]
default_color = "00FF00"

[cache]
backend = "redis"
ttl = "90m"
redis_addr = "cache:6379"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Layout.Width != 1024 {
		t.Errorf("Width = %v, want 1024", cfg.Layout.Width)
	}
	if cfg.Layout.Height != 500 {
		t.Errorf("Height = %v, want default 500", cfg.Layout.Height)
	}
	if cfg.Layout.Rotations != 12 {
		t.Errorf("Rotations = %d, want 12", cfg.Layout.Rotations)
	}
	if cfg.Sector.DefaultColor != "00FF00" {
		t.Errorf("DefaultColor = %q, want 00FF00", cfg.Sector.DefaultColor)
	}
	if cfg.Cache.Backend != BackendRedis {
		t.Errorf("Backend = %q, want redis", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL != 90*time.Minute {
		t.Errorf("TTL = %v, want 1h30m", cfg.Cache.TTL)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q, want default :8080", cfg.Server.Addr)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(missing) = %+v, want defaults", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "[layout\nwidth = 1"},
		{"unknown key", "[layout]\nzoom = 2"},
		{"negative width", "[layout]\nwidth = -1.0"},
		{"zero rotations", "[layout]\nrotations = 0"},
		{"margin above one", "[layout]\nmargin = 1.5"},
		{"bad color", "[sector]\ndefault_color = \"#ff0000\""},
		{"bad backend", "[cache]\nbackend = \"memcached\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !cverrors.IsClientError(err) {
				t.Errorf("Load error %v is not a client error", err)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg", "cladeview", "config.toml"); path != want {
		t.Errorf("DefaultPath() = %q, want %q", path, want)
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	dir, err := Default().CacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/custom-cache", "cladeview"); dir != want {
		t.Errorf("CacheDir() = %q, want %q", dir, want)
	}

	cfg := Default()
	cfg.Cache.Dir = "/srv/cache"
	if dir, _ := cfg.CacheDir(); dir != "/srv/cache" {
		t.Errorf("CacheDir() = %q, want /srv/cache", dir)
	}
}
