package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	cerrors "github.com/tessro/cadence/internal/errors"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.cadencerc, $XDG_CONFIG_HOME/cadence/config.toml, ~/.config/cadence/config.toml
func Load() (*Config, error) {
	path := findConfigFile()
	if path == "" {
		cfg := Default()
		applyEnvOverrides(cfg)
		return cfg, nil
	}
	return LoadFrom(path)
}

// LoadFrom reads configuration from a specific file path. Keys missing
// from the file keep their defaults.
func LoadFrom(path string) (*Config, error) {
	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// ReadFile is LoadFrom without environment overrides, for editing the
// file itself.
func ReadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", cerrors.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", cerrors.ErrInvalidConfig, path, err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// Path returns the config file in use, or where a new one would be written.
func Path() string {
	if p := findConfigFile(); p != "" {
		return p
	}
	return defaultPath()
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Set assigns a single "section.key" value, parsing it with TOML rules.
// Values that are not valid TOML literals are taken as strings.
func (c *Config) Set(key, value string) error {
	section, field, ok := strings.Cut(key, ".")
	if !ok || section == "" || field == "" {
		return fmt.Errorf("%w: key must look like section.key: %q", cerrors.ErrInvalidConfig, key)
	}

	next := *c
	md, err := toml.Decode(fmt.Sprintf("[%s]\n%s = %s\n", section, field, value), &next)
	if err != nil {
		next = *c
		md, err = toml.Decode(fmt.Sprintf("[%s]\n%s = %s\n", section, field, strconv.Quote(value)), &next)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", cerrors.ErrInvalidConfig, key, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%w: unknown key %s", cerrors.ErrInvalidConfig, undecoded[0])
	}
	if !md.IsDefined(section, field) {
		return fmt.Errorf("%w: unknown key %s", cerrors.ErrInvalidConfig, key)
	}
	if err := next.Validate(); err != nil {
		return err
	}

	*c = next
	return nil
}

func defaultPath() string {
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", "cadence.toml")
		}
		xdgConfig = filepath.Join(home, ".config")
	}
	return filepath.Join(xdgConfig, "cadence", "config.toml")
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".cadencerc"))
	}
	paths = append(paths, defaultPath())

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// API
	if v := os.Getenv("CADENCE_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("CADENCE_API_TIMEOUT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.API.Timeout = i
		}
	}
	if v := os.Getenv("CADENCE_API_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.API.RateLimit = f
		}
	}
	if v := os.Getenv("CADENCE_API_OFFLINE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.API.Offline = b
		}
	}

	// Favorites
	if v := os.Getenv("CADENCE_FAVORITES_TIMEOUT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Favorites.Timeout = i
		}
	}

	// History
	if v := os.Getenv("CADENCE_HISTORY_MAX"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.History.Max = i
		}
	}

	// Storage
	if v := os.Getenv("CADENCE_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("CADENCE_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}

	// TUI
	if v := os.Getenv("CADENCE_TUI_THEME"); v != "" {
		cfg.TUI.Theme = v
	}
	if v := os.Getenv("CADENCE_TUI_REFRESH_INTERVAL"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.TUI.RefreshInterval = i
		}
	}

	// Log
	if v := os.Getenv("CADENCE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CADENCE_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
