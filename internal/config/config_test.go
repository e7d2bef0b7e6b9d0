package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tessro/cadence/internal/core"
	cerrors "github.com/tessro/cadence/internal/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestLoadFrom(t *testing.T) {
	path := writeConfig(t, `
[api]
base_url = "https://music.example.com"
rate_limit = 0

[favorites]
timeout = 2500

[defaults]
volume = 0
repeat = "context"

[storage]
backend = "file"
path = "/tmp/cadence-state"
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.API.BaseURL != "https://music.example.com" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.RateLimit != 0 {
		t.Errorf("RateLimit = %v, want explicit 0 kept", cfg.API.RateLimit)
	}
	if cfg.API.Timeout != 30 || cfg.API.MaxRetries != 3 {
		t.Errorf("missing api keys should keep defaults: %+v", cfg.API)
	}
	if got := cfg.Favorites.TimeoutDuration(); got != 2500*time.Millisecond {
		t.Errorf("Favorites.TimeoutDuration() = %v", got)
	}
	if cfg.Defaults.Volume != 0 || cfg.Defaults.VolumeFraction() != 0 {
		t.Errorf("Volume = %d, want explicit 0 kept", cfg.Defaults.Volume)
	}
	if cfg.Defaults.RepeatMode() != core.RepeatAll {
		t.Errorf("RepeatMode() = %v, want all", cfg.Defaults.RepeatMode())
	}
	if cfg.Storage.Backend != "file" || cfg.Storage.Path != "/tmp/cadence-state" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.History.Max != 50 || cfg.Log.Level != "info" {
		t.Errorf("untouched sections should keep defaults: %+v %+v", cfg.History, cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadFromErrors(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, cerrors.ErrConfigNotFound) {
		t.Errorf("missing file error = %v, want ErrConfigNotFound", err)
	}

	_, err = LoadFrom(writeConfig(t, "[api\nbase_url ="))
	if !errors.Is(err, cerrors.ErrInvalidConfig) {
		t.Errorf("malformed file error = %v, want ErrInvalidConfig", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CADENCE_API_BASE_URL", "http://env.example")
	t.Setenv("CADENCE_FAVORITES_TIMEOUT", "750")
	t.Setenv("CADENCE_HISTORY_MAX", "5")
	t.Setenv("CADENCE_STORAGE_BACKEND", "memory")
	t.Setenv("CADENCE_LOG_LEVEL", "debug")
	t.Setenv("CADENCE_API_OFFLINE", "true")
	t.Setenv("CADENCE_TUI_REFRESH_INTERVAL", "not-a-number")

	cfg, err := LoadFrom(writeConfig(t, "[api]\nbase_url = \"http://file.example\"\n"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.API.BaseURL != "http://env.example" {
		t.Errorf("BaseURL = %q, want env override", cfg.API.BaseURL)
	}
	if cfg.Favorites.Timeout != 750 || cfg.History.Max != 5 {
		t.Errorf("numeric overrides not applied: %+v %+v", cfg.Favorites, cfg.History)
	}
	if cfg.Storage.Backend != "memory" || cfg.Log.Level != "debug" || !cfg.API.Offline {
		t.Errorf("overrides not applied: %+v %+v %+v", cfg.Storage, cfg.Log, cfg.API)
	}
	if cfg.TUI.RefreshInterval != 1000 {
		t.Errorf("RefreshInterval = %d, want default when env is not a number", cfg.TUI.RefreshInterval)
	}
}

func TestReadFileIgnoresEnv(t *testing.T) {
	t.Setenv("CADENCE_API_BASE_URL", "http://env.example")

	cfg, err := ReadFile(writeConfig(t, "[api]\nbase_url = \"http://file.example\"\n"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if cfg.API.BaseURL != "http://file.example" {
		t.Errorf("BaseURL = %q, want the file value", cfg.API.BaseURL)
	}
}

func TestLoadSearchesXDG(t *testing.T) {
	home := t.TempDir()
	xdg := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", xdg)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() without a file error = %v", err)
	}
	if cfg.History.Max != 50 {
		t.Errorf("Load() without a file should return defaults")
	}
	if want := filepath.Join(xdg, "cadence", "config.toml"); Path() != want {
		t.Errorf("Path() = %q, want %q", Path(), want)
	}

	if err := os.WriteFile(filepath.Join(home, ".cadencerc"), []byte("[history]\nmax = 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.History.Max != 7 {
		t.Errorf("History.Max = %d, want 7 from ~/.cadencerc", cfg.History.Max)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad base url", func(c *Config) { c.API.BaseURL = "ftp://x" }, "api: invalid base_url"},
		{"retries", func(c *Config) { c.API.MaxRetries = 11 }, "max_retries"},
		{"volume", func(c *Config) { c.Defaults.Volume = 101 }, "volume must be between 0 and 100"},
		{"repeat", func(c *Config) { c.Defaults.Repeat = "twice" }, "invalid repeat mode"},
		{"backend", func(c *Config) { c.Storage.Backend = "redis" }, "invalid backend"},
		{"theme", func(c *Config) { c.TUI.Theme = "neon" }, "invalid theme"},
		{"log level", func(c *Config) { c.Log.Level = "trace" }, "invalid log level"},
		{"history", func(c *Config) { c.History.Max = -1 }, "history: max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !errors.Is(err, cerrors.ErrInvalidConfig) {
				t.Errorf("error = %v, want ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.TUI.Theme = "neon"
	cfg.Log.Level = "trace"

	msg := cfg.Validate().Error()
	if !strings.Contains(msg, "tui:") || !strings.Contains(msg, "log:") {
		t.Errorf("Validate() = %q, want both sections reported", msg)
	}
}

func TestSet(t *testing.T) {
	cfg := Default()

	for key, value := range map[string]string{
		"api.base_url":     "https://api.example.com",
		"defaults.volume":  "35",
		"defaults.shuffle": "true",
		"defaults.repeat":  "one",
		"api.rate_limit":   "2.5",
	} {
		if err := cfg.Set(key, value); err != nil {
			t.Fatalf("Set(%s, %s) error = %v", key, value, err)
		}
	}

	if cfg.API.BaseURL != "https://api.example.com" || cfg.API.RateLimit != 2.5 {
		t.Errorf("API = %+v", cfg.API)
	}
	if cfg.Defaults.Volume != 35 || !cfg.Defaults.Shuffle || cfg.Defaults.Repeat != "one" {
		t.Errorf("Defaults = %+v", cfg.Defaults)
	}
}

func TestSetRejects(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"volume", "10"},
		{"defaults.loudness", "10"},
		{"nosuch.key", "1"},
		{"defaults.volume", "loud"},
		{"defaults.volume", "500"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := Default()
			if err := cfg.Set(tt.key, tt.value); !errors.Is(err, cerrors.ErrInvalidConfig) {
				t.Errorf("Set() error = %v, want ErrInvalidConfig", err)
			}
			if cfg.Defaults.Volume != 50 {
				t.Error("rejected Set() modified the config")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.API.BaseURL = "https://saved.example"
	cfg.Defaults.Volume = 0

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip = %+v, want %+v", loaded, cfg)
	}
}
