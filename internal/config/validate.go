package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/tessro/cadence/internal/core"
	cerrors "github.com/tessro/cadence/internal/errors"
	"github.com/tessro/cadence/internal/store"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.API.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("api: %w", err))
	}
	if err := c.Favorites.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("favorites: %w", err))
	}
	if err := c.History.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("history: %w", err))
	}
	if err := c.Defaults.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("defaults: %w", err))
	}
	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("storage: %w", err))
	}
	if err := c.Tail.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tail: %w", err))
	}
	if err := c.TUI.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tui: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", cerrors.ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks APIConfig for errors.
func (c *APIConfig) Validate() error {
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil {
			return fmt.Errorf("invalid base_url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("invalid base_url: %s (must be http or https)", c.BaseURL)
		}
	}
	if c.Timeout < 0 {
		return errors.New("timeout must be non-negative")
	}
	if c.RateLimit < 0 {
		return errors.New("rate_limit must be non-negative")
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return errors.New("max_retries must be between 0 and 10")
	}
	return nil
}

// Validate checks FavoritesConfig for errors.
func (c *FavoritesConfig) Validate() error {
	if c.Timeout < 0 {
		return errors.New("timeout must be non-negative")
	}
	return nil
}

// Validate checks HistoryConfig for errors.
func (c *HistoryConfig) Validate() error {
	if c.Max < 0 {
		return errors.New("max must be non-negative")
	}
	return nil
}

// Validate checks DefaultsConfig for errors.
func (c *DefaultsConfig) Validate() error {
	if c.Volume < 0 || c.Volume > 100 {
		return errors.New("volume must be between 0 and 100")
	}
	if c.Repeat != "" {
		if _, err := core.ParseRepeatMode(c.Repeat); err != nil {
			return fmt.Errorf("invalid repeat mode: %s (must be none, one, or all)", c.Repeat)
		}
	}
	return nil
}

// Validate checks StorageConfig for errors.
func (c *StorageConfig) Validate() error {
	switch c.Backend {
	case "", store.BackendSQLite, store.BackendFile, store.BackendMemory:
		// valid
	default:
		return fmt.Errorf("invalid backend: %s (must be sqlite, file, or memory)", c.Backend)
	}
	return nil
}

// Validate checks TailConfig for errors.
func (c *TailConfig) Validate() error {
	if c.Interval < 0 {
		return errors.New("interval must be non-negative")
	}
	return nil
}

// Validate checks TUIConfig for errors.
func (c *TUIConfig) Validate() error {
	switch c.Theme {
	case "", "auto", "dark", "light":
		// valid
	default:
		return fmt.Errorf("invalid theme: %s (must be auto, dark, or light)", c.Theme)
	}
	if c.RefreshInterval < 0 {
		return errors.New("refresh_interval must be non-negative")
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	return nil
}
