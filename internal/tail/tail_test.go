package tail

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tessro/cadence/internal/core"
	"github.com/tessro/cadence/internal/playback"
	"github.com/tessro/cadence/internal/store"
)

func snap(id string, playing bool, queue ...string) *Snapshot {
	s := &Snapshot{State: core.PlaybackState{IsPlaying: playing, Volume: 0.5}, Queue: core.QueueSnapshot{Cursor: -1}}
	if id != "" {
		s.State.Track = &core.Track{ID: id, Title: "Song " + id, Artist: "Band"}
	}
	for _, q := range queue {
		s.Queue.Tracks = append(s.Queue.Tracks, core.Track{ID: q})
	}
	if len(queue) > 0 {
		s.Queue.Cursor = 0
	}
	return s
}

func types(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name   string
		prev   *Snapshot
		curr   *Snapshot
		queue  bool
		want   []EventType
		mutate func(*Snapshot)
	}{
		{"first poll with track", nil, snap("a", true), false, []EventType{EventTrackChange}, nil},
		{"first poll idle", nil, snap("", false), true, nil, nil},
		{"no change", snap("a", true), snap("a", true), false, nil, nil},
		{"track change", snap("a", true), snap("b", true), false, []EventType{EventTrackChange}, nil},
		{"start from idle", snap("", false), snap("a", true), false, []EventType{EventTrackChange}, nil},
		{"stop", snap("a", true), snap("", false), false, []EventType{EventStop}, nil},
		{"pause", snap("a", true), snap("a", false), false, []EventType{EventPause}, nil},
		{"resume", snap("a", false), snap("a", true), false, []EventType{EventResume}, nil},
		{"queue", snap("a", true, "x"), snap("a", true, "x", "y"), true, []EventType{EventQueueChange}, nil},
		{
			"settings", snap("a", true), snap("a", true), false,
			[]EventType{EventVolumeChange, EventShuffleChange, EventRepeatChange},
			func(s *Snapshot) {
				s.State.Volume = 0.8
				s.State.Shuffle = true
				s.State.Repeat = core.RepeatAll
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.mutate != nil {
				tt.mutate(tt.curr)
			}
			got := types(diff(tt.prev, tt.curr, tt.queue))
			if len(got) != len(tt.want) {
				t.Fatalf("diff() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("diff()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestQueueHash(t *testing.T) {
	a := snap("", false, "x", "y").Queue
	b := snap("", false, "x", "y").Queue
	if queueHash(a) != queueHash(b) {
		t.Error("equal queues should hash equally")
	}
	b.Cursor = 1
	if queueHash(a) == queueHash(b) {
		t.Error("cursor move should change the hash")
	}
	c := snap("", false, "y", "x").Queue
	if queueHash(a) == queueHash(c) {
		t.Error("reorder should change the hash")
	}
}

// scriptedSource returns its snapshots in order, then repeats the last.
type scriptedSource struct {
	mu    sync.Mutex
	snaps []*Snapshot
	err   error
}

func (s *scriptedSource) Snapshot(context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return Snapshot{}, s.err
	}
	next := s.snaps[0]
	if len(s.snaps) > 1 {
		s.snaps = s.snaps[1:]
	}
	return *next, nil
}

func collect(t *testing.T, w *Watcher, n int) []Event {
	t.Helper()
	var out []Event
	timeout := time.After(2 * time.Second)
	for len(out) < n {
		select {
		case e, ok := <-w.Events():
			if !ok {
				return out
			}
			out = append(out, e)
		case <-timeout:
			t.Fatalf("got %d events, want %d", len(out), n)
		}
	}
	return out
}

func TestWatcherPolls(t *testing.T) {
	src := &scriptedSource{snaps: []*Snapshot{snap("a", true), snap("a", false), snap("b", true)}}
	w := NewWatcher(src, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	got := types(collect(t, w, 3))
	want := []EventType{EventTrackChange, EventPause, EventTrackChange}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestWatcherStop(t *testing.T) {
	src := &scriptedSource{err: errors.New("store locked")}
	w := NewWatcher(src, time.Millisecond, nil)

	errc := make(chan error, 1)
	go func() { errc <- w.Start(context.Background()) }()
	time.Sleep(10 * time.Millisecond)
	w.Stop()

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Start() after Stop = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
	if _, ok := <-w.Events(); ok {
		t.Error("Events() should be closed after Start returns")
	}
}

func TestWatcherWakesOnEngineChange(t *testing.T) {
	e := playback.New()
	w := NewWatcher(EngineSource{Engine: e}, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	// Give the watcher its first poll before changing anything.
	time.Sleep(20 * time.Millisecond)
	e.PlayTrack(ctx, core.Track{ID: "live"})

	ev := collect(t, w, 1)[0]
	if ev.Type != EventTrackChange || ev.Current.Track.ID != "live" {
		t.Errorf("event = %v %+v, want track change to live", ev.Type, ev.Current)
	}
}

func TestStoreSource(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	src := StoreSource{KV: kv}

	empty, err := src.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if empty.State.HasTrack() || empty.Queue.Cursor != -1 {
		t.Errorf("empty store snapshot = %+v", empty)
	}

	w := store.NewWriter(kv, nil)
	e := playback.New(playback.WithPersistence(w))
	e.SetQueue([]core.Track{{ID: "q1"}, {ID: "q2"}})
	e.JumpTo(ctx, 1)
	if err := w.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	w.Close()

	got, err := src.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if got.State.Track == nil || got.State.Track.ID != "q2" || got.Queue.Cursor != 1 {
		t.Errorf("Snapshot() = %+v", got)
	}
}

func TestFormatter(t *testing.T) {
	curr := core.PlaybackState{
		Track:  &core.Track{ID: "1", Title: "Song", Artist: "Band"},
		Volume: 0.42,
		Repeat: core.RepeatAll,
	}
	ts := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		name  string
		opts  []FormatterOption
		event Event
		want  string
	}{
		{"track", []FormatterOption{WithEmoji(false)}, Event{Type: EventTrackChange, Current: &curr}, "Now playing: Band — Song"},
		{"emoji", nil, Event{Type: EventPause, Current: &curr}, "⏸️ Paused"},
		{"timestamp", []FormatterOption{WithEmoji(false), WithTimestamp(true)}, Event{Type: EventVolumeChange, Timestamp: ts, Current: &curr}, "15:04:05 Volume: 42%"},
		{"repeat", []FormatterOption{WithEmoji(false)}, Event{Type: EventRepeatChange, Current: &curr}, "Repeat: all"},
		{"stop", []FormatterOption{WithEmoji(false)}, Event{Type: EventStop, Previous: &curr}, "Stopped: Band — Song"},
		{
			"queue", []FormatterOption{WithEmoji(false)},
			Event{Type: EventQueueChange, Queue: &core.QueueSnapshot{Tracks: make([]core.Track, 3), Cursor: 1}},
			"Queue: 3 tracks, at 2",
		},
		{
			"template", []FormatterOption{WithTemplate("{{.Type}} {{.Artist}}/{{.Title}} {{.Volume}} {{.Repeat}}")},
			Event{Type: EventTrackChange, Current: &curr}, "track_change Band/Song 42 all",
		},
		{
			"bad template falls back", []FormatterOption{WithEmoji(false), WithTemplate("{{.Nope")},
			Event{Type: EventResume, Current: &curr}, "Resumed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewFormatter(tt.opts...).Format(tt.event); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}

	if !strings.Contains(EventShuffleChange.String(), "shuffle") {
		t.Error("EventType.String() missing name")
	}
}
