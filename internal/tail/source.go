package tail

import (
	"context"

	"github.com/tessro/cadence/internal/core"
	"github.com/tessro/cadence/internal/playback"
)

// Snapshot is what a watcher compares between polls.
type Snapshot struct {
	State core.PlaybackState
	Queue core.QueueSnapshot
}

// Source reports the current playback snapshot.
type Source interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Notifier is implemented by sources that can announce changes, so the
// watcher does not have to wait for the next tick.
type Notifier interface {
	Subscribe() (<-chan core.PlaybackState, func())
}

// EngineSource watches an engine in this process.
type EngineSource struct {
	Engine *playback.Engine
}

// Snapshot implements Source.
func (s EngineSource) Snapshot(context.Context) (Snapshot, error) {
	snap := s.Engine.Snapshot()
	return Snapshot{State: snap.State, Queue: snap.Queue}, nil
}

// Subscribe implements Notifier.
func (s EngineSource) Subscribe() (<-chan core.PlaybackState, func()) {
	return s.Engine.Subscribe()
}

// StoreSource reads the state another process persisted to kv.
type StoreSource struct {
	KV core.KV
}

// Snapshot implements Source. A store with nothing persisted yet reports
// an empty snapshot.
func (s StoreSource) Snapshot(ctx context.Context) (Snapshot, error) {
	snap, ok, err := playback.LoadSnapshot(ctx, s.KV)
	if err != nil {
		return Snapshot{}, err
	}
	if !ok {
		return Snapshot{Queue: core.QueueSnapshot{Cursor: -1}}, nil
	}
	return Snapshot{State: snap.State, Queue: snap.Queue}, nil
}
