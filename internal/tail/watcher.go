package tail

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/hashstructure/v2"
	"github.com/tessro/cadence/internal/core"
	"github.com/tessro/cadence/internal/logging"
)

// EventType represents the type of playback event.
type EventType int

const (
	EventTrackChange EventType = iota
	EventStop
	EventPause
	EventResume
	EventVolumeChange
	EventShuffleChange
	EventRepeatChange
	EventQueueChange
)

// Event represents a playback state change.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Previous  *core.PlaybackState
	Current   *core.PlaybackState
	Queue     *core.QueueSnapshot
}

// Watcher polls a source for state changes and emits events.
type Watcher struct {
	source   Source
	interval time.Duration
	log      *log.Logger
	events   chan Event
	done     chan struct{}
}

// NewWatcher creates a new state watcher.
func NewWatcher(source Source, interval time.Duration, logger *log.Logger) *Watcher {
	if interval == 0 {
		interval = time.Second
	}
	return &Watcher{
		source:   source,
		interval: interval,
		log:      logging.With(logger, "component", "tail"),
		events:   make(chan Event, 16),
		done:     make(chan struct{}),
	}
}

// Events returns the channel of playback events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start polls until ctx is done or Stop is called. Sources that implement
// Notifier are also checked whenever they announce a change.
func (w *Watcher) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.events)

	var wake <-chan core.PlaybackState
	if n, ok := w.source.(Notifier); ok {
		ch, cancel := n.Subscribe()
		defer cancel()
		wake = ch
	}

	var prev *Snapshot
	var prevHash uint64

	poll := func() {
		curr, err := w.source.Snapshot(ctx)
		if err != nil {
			w.log.Debug("poll failed", "err", err)
			return
		}
		hash := queueHash(curr.Queue)
		for _, e := range diff(prev, &curr, prevHash != hash) {
			select {
			case w.events <- e:
			default:
				w.log.Debug("event dropped", "type", eventTypeName(e.Type))
			}
		}
		prev, prevHash = &curr, hash
	}

	poll()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case <-ticker.C:
			poll()
		case <-wake:
			poll()
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.done)
}

// queueHash fingerprints the queue contents and cursor.
func queueHash(q core.QueueSnapshot) uint64 {
	h, err := hashstructure.Hash(q, hashstructure.FormatV2, nil)
	if err != nil {
		return 0
	}
	return h
}

// diff compares two snapshots and returns detected events. The first
// snapshot only reports the track already playing.
func diff(prev, curr *Snapshot, queueChanged bool) []Event {
	if curr == nil {
		return nil
	}

	now := time.Now()
	var events []Event
	add := func(t EventType) {
		e := Event{Type: t, Timestamp: now, Current: &curr.State}
		if prev != nil {
			e.Previous = &prev.State
		}
		if t == EventQueueChange {
			e.Queue = &curr.Queue
		}
		events = append(events, e)
	}

	if prev == nil {
		if curr.State.HasTrack() {
			add(EventTrackChange)
		}
		return events
	}

	p, c := &prev.State, &curr.State
	switch {
	case trackChanged(p, c) && c.Track == nil:
		add(EventStop)
	case trackChanged(p, c):
		add(EventTrackChange)
	}

	if c.HasTrack() {
		if p.IsPlaying && !c.IsPlaying {
			add(EventPause)
		} else if !p.IsPlaying && c.IsPlaying && !trackChanged(p, c) {
			add(EventResume)
		}
	}

	if p.VolumePercent() != c.VolumePercent() {
		add(EventVolumeChange)
	}
	if p.Shuffle != c.Shuffle {
		add(EventShuffleChange)
	}
	if p.Repeat != c.Repeat {
		add(EventRepeatChange)
	}
	if queueChanged {
		add(EventQueueChange)
	}

	return events
}

// trackChanged returns true if the track changed.
func trackChanged(prev, curr *core.PlaybackState) bool {
	if prev.Track == nil && curr.Track == nil {
		return false
	}
	if prev.Track == nil || curr.Track == nil {
		return true
	}
	return prev.Track.ID != curr.Track.ID
}
