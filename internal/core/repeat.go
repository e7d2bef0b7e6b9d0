package core

import (
	"fmt"
	"strings"

	cerrors "github.com/tessro/cadence/internal/errors"
)

// RepeatMode is the playback-continuation policy.
type RepeatMode int

const (
	RepeatNone RepeatMode = iota
	RepeatOne
	RepeatAll
)

// String returns the canonical name of the mode.
func (m RepeatMode) String() string {
	switch m {
	case RepeatNone:
		return "none"
	case RepeatOne:
		return "one"
	case RepeatAll:
		return "all"
	default:
		return fmt.Sprintf("RepeatMode(%d)", int(m))
	}
}

// Valid returns true for the three defined modes.
func (m RepeatMode) Valid() bool {
	return m >= RepeatNone && m <= RepeatAll
}

// Next cycles none -> all -> one -> none, the order a repeat button uses.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatNone:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatNone
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m RepeatMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", cerrors.ErrInvalidRepeatMode, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *RepeatMode) UnmarshalText(text []byte) error {
	parsed, err := ParseRepeatMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseRepeatMode converts a string to a RepeatMode.
// Besides none/one/all it accepts the off/track/context spellings.
func ParseRepeatMode(s string) (RepeatMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "off":
		return RepeatNone, nil
	case "one", "track":
		return RepeatOne, nil
	case "all", "context", "queue":
		return RepeatAll, nil
	default:
		return RepeatNone, fmt.Errorf("%w: %q (must be none, one, or all)", cerrors.ErrInvalidRepeatMode, s)
	}
}
