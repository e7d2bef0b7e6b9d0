// Package store provides the local key-value backends used for best-effort
// session persistence and an asynchronous write-through Writer on top.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tessro/cadence/internal/core"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Keys written by the session components.
const (
	KeyPlayback = "playback"
	KeyLiked    = "liked"
	KeyHistory  = "history"
)

// DefaultDir returns the default data directory (~/.config/cadence).
func DefaultDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(configDir, "cadence"), nil
}

// Open returns the backend named by backend rooted at path. An empty path
// uses the default data directory.
func Open(backend, path string) (core.KV, error) {
	if backend == BackendMemory {
		return NewMemory(), nil
	}

	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		switch backend {
		case BackendFile:
			path = filepath.Join(dir, "state")
		default:
			path = filepath.Join(dir, "cadence.db")
		}
	}

	switch backend {
	case BackendFile:
		return NewFile(path)
	case BackendSQLite, "":
		return NewSQLite(path)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}
