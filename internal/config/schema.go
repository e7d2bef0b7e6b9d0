package config

// Config is the root configuration structure.
type Config struct {
	API       APIConfig       `toml:"api"`
	Favorites FavoritesConfig `toml:"favorites"`
	History   HistoryConfig   `toml:"history"`
	Defaults  DefaultsConfig  `toml:"defaults"`
	Storage   StorageConfig   `toml:"storage"`
	Tail      TailConfig      `toml:"tail"`
	TUI       TUIConfig       `toml:"tui"`
	Log       LogConfig       `toml:"log"`
}

// APIConfig holds music API settings.
type APIConfig struct {
	BaseURL    string  `toml:"base_url"`
	Timeout    int     `toml:"timeout"`    // seconds
	RateLimit  float64 `toml:"rate_limit"` // requests per second, 0 for none
	MaxRetries int     `toml:"max_retries"`
	Offline    bool    `toml:"offline"`
}

// FavoritesConfig holds like synchronization settings.
type FavoritesConfig struct {
	Timeout        int  `toml:"timeout"` // milliseconds
	RefreshOnStart bool `toml:"refresh_on_start"`
}

// HistoryConfig holds play history settings.
type HistoryConfig struct {
	Max int `toml:"max"`
}

// DefaultsConfig holds default playback settings.
type DefaultsConfig struct {
	Volume  int    `toml:"volume"`
	Shuffle bool   `toml:"shuffle"`
	Repeat  string `toml:"repeat"`
}

// StorageConfig selects where session state is kept.
type StorageConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// TailConfig holds settings for tail/follow mode.
type TailConfig struct {
	Interval int `toml:"interval"` // milliseconds
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme"`
	RefreshInterval int    `toml:"refresh_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}
