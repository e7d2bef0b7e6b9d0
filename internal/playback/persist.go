package playback

import (
	"context"
	"slices"

	"github.com/tessro/cadence/internal/core"
	"github.com/tessro/cadence/internal/store"
)

// Snapshot is the persisted form of the engine.
type Snapshot struct {
	State core.PlaybackState `json:"state"`
	Queue core.QueueSnapshot `json:"queue"`
	Order []int              `json:"order,omitempty"`
}

// Snapshot returns the engine's current persisted form.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		State: e.stateLocked(),
		Queue: e.queueLocked(),
		Order: slices.Clone(e.order),
	}
}

// LoadSnapshot reads the last persisted snapshot from kv.
func LoadSnapshot(ctx context.Context, kv core.KV) (Snapshot, bool, error) {
	var s Snapshot
	ok, err := store.LoadJSON(ctx, kv, store.KeyPlayback, &s)
	return s, ok, err
}

// restore applies s, repairing anything that breaks the engine invariants.
func (e *Engine) restore(s Snapshot) {
	e.tracks = slices.Clone(s.Queue.Tracks)
	e.cursor = s.Queue.Cursor
	switch {
	case len(e.tracks) == 0:
		e.cursor = -1
	case e.cursor < 0 || e.cursor >= len(e.tracks):
		e.cursor = 0
	}

	e.shuffle = s.State.Shuffle
	if s.State.Repeat.Valid() {
		e.repeat = s.State.Repeat
	}
	if s.State.Volume >= 0 && s.State.Volume <= 1 {
		e.volume = s.State.Volume
	}

	e.current = nil
	e.playing = false
	if s.State.Track != nil {
		t := *s.State.Track
		e.current = &t
		e.playing = s.State.IsPlaying
	}

	if e.shuffle && isPermutation(s.Order, len(e.tracks)) {
		e.order = slices.Clone(s.Order)
	} else {
		e.order = identity(len(e.tracks))
		// New reshuffles when shuffle is on and the order does not fit.
		if e.shuffle {
			e.order = nil
		}
	}
}

func isPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, i := range order {
		if i < 0 || i >= n || seen[i] {
			return false
		}
		seen[i] = true
	}
	return true
}
