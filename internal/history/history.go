// Package history keeps a bounded, de-duplicated, most-recent-first list of
// played tracks.
package history

import (
	"sync"
	"time"

	"github.com/tessro/cadence/internal/core"
)

// DefaultMax is the history length used when none is configured.
const DefaultMax = 50

// Entry is a track and the time it was last recorded.
type Entry struct {
	Track    core.Track `json:"track"`
	PlayedAt time.Time  `json:"played_at"`
}

// Recorder maintains the play history.
type Recorder struct {
	mu       sync.RWMutex
	notifyMu sync.Mutex // held from before mu is released until onChange returns
	entries  []Entry
	max      int
	now      func() time.Time
	onChange func([]Entry)
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock overrides the time source used for PlayedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

// OnChange registers a callback invoked with a copy of the entries after
// every mutation, in mutation order. It runs outside the recorder's lock.
func OnChange(fn func([]Entry)) Option {
	return func(r *Recorder) {
		r.onChange = fn
	}
}

// New creates a recorder holding at most limit entries.
func New(limit int, opts ...Option) *Recorder {
	if limit <= 0 {
		limit = DefaultMax
	}
	r := &Recorder{
		max: limit,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record moves track to the front, dropping any older entry with the same
// id and anything beyond the maximum length.
func (r *Recorder) Record(track core.Track) {
	r.mu.Lock()
	r.entries = prepend(r.entries, Entry{Track: track, PlayedAt: r.now()}, r.max)
	r.notifyUnlock(r.copyLocked())
}

// Load replaces the history with entries, which must be most-recent-first.
// Duplicates after the first occurrence and overflow are dropped.
func (r *Recorder) Load(entries []Entry) {
	cleaned := make([]Entry, 0, min(len(entries), r.max))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Track.ID]; dup {
			continue
		}
		if len(cleaned) == r.max {
			break
		}
		seen[e.Track.ID] = struct{}{}
		cleaned = append(cleaned, e)
	}

	r.mu.Lock()
	r.entries = cleaned
	r.mu.Unlock()
}

// Clear removes every entry.
func (r *Recorder) Clear() {
	r.mu.Lock()
	r.entries = nil
	r.notifyUnlock(nil)
}

// Entries returns a copy of the history, most recent first.
func (r *Recorder) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.copyLocked()
}

// Tracks returns the tracks in history order.
func (r *Recorder) Tracks() []core.Track {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tracks := make([]core.Track, len(r.entries))
	for i, e := range r.entries {
		tracks[i] = e.Track
	}
	return tracks
}

// Len returns the number of entries.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Max returns the configured maximum length.
func (r *Recorder) Max() int {
	return r.max
}

func (r *Recorder) copyLocked() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// notifyUnlock releases mu and hands entries to onChange. Callbacks run
// one at a time in mutation order.
func (r *Recorder) notifyUnlock(entries []Entry) {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()
	r.mu.Unlock()

	if r.onChange != nil {
		r.onChange(entries)
	}
}

// prepend builds a new slice so copies handed out earlier stay valid.
func prepend(entries []Entry, e Entry, limit int) []Entry {
	out := make([]Entry, 0, min(len(entries)+1, limit))
	out = append(out, e)
	for _, old := range entries {
		if len(out) == limit {
			break
		}
		if old.Track.ID == e.Track.ID {
			continue
		}
		out = append(out, old)
	}
	return out
}
