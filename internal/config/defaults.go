package config

import (
	"time"

	"github.com/tessro/cadence/internal/core"
	"github.com/tessro/cadence/internal/remote"
	"github.com/tessro/cadence/internal/store"
)

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:    remote.DefaultBaseURL,
			Timeout:    30,
			RateLimit:  5,
			MaxRetries: 3,
		},
		Favorites: FavoritesConfig{
			Timeout:        10000,
			RefreshOnStart: true,
		},
		History: HistoryConfig{
			Max: 50,
		},
		Defaults: DefaultsConfig{
			Volume:  50,
			Shuffle: false,
			Repeat:  "none",
		},
		Storage: StorageConfig{
			Backend: store.BackendSQLite,
		},
		Tail: TailConfig{
			Interval: 1000,
		},
		TUI: TUIConfig{
			Theme:           "auto",
			RefreshInterval: 1000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults. Zero is a
// meaningful volume, rate limit and retry count, so those are left alone.
func (c *Config) ApplyDefaults() {
	d := Default()

	// API
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = d.API.Timeout
	}

	// Favorites
	if c.Favorites.Timeout == 0 {
		c.Favorites.Timeout = d.Favorites.Timeout
	}

	// History
	if c.History.Max == 0 {
		c.History.Max = d.History.Max
	}

	// Defaults
	if c.Defaults.Repeat == "" {
		c.Defaults.Repeat = d.Defaults.Repeat
	}

	// Storage
	if c.Storage.Backend == "" {
		c.Storage.Backend = d.Storage.Backend
	}

	// Tail
	if c.Tail.Interval == 0 {
		c.Tail.Interval = d.Tail.Interval
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// TimeoutDuration returns the HTTP timeout.
func (c APIConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// TimeoutDuration returns the per-toggle timeout.
func (c FavoritesConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// VolumeFraction returns the default volume in [0,1].
func (c DefaultsConfig) VolumeFraction() float64 {
	return float64(c.Volume) / 100
}

// RepeatMode returns the parsed default repeat mode, or none when invalid.
func (c DefaultsConfig) RepeatMode() core.RepeatMode {
	mode, err := core.ParseRepeatMode(c.Repeat)
	if err != nil {
		return core.RepeatNone
	}
	return mode
}

// IntervalDuration returns the tail polling interval.
func (c TailConfig) IntervalDuration() time.Duration {
	return time.Duration(c.Interval) * time.Millisecond
}

// RefreshDuration returns the TUI refresh interval.
func (c TUIConfig) RefreshDuration() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Millisecond
}
