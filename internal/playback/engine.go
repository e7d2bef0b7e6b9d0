// Package playback owns what is playing and what plays next: the queue and
// its cursor, shuffle order, repeat mode, volume and play/pause intent.
package playback

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tessro/cadence/internal/core"
	cerrors "github.com/tessro/cadence/internal/errors"
	"github.com/tessro/cadence/internal/history"
	"github.com/tessro/cadence/internal/logging"
	"github.com/tessro/cadence/internal/store"
)

// Phase describes the queue's shape.
type Phase int

const (
	PhaseNoQueue Phase = iota
	PhaseSingleTrack
	PhaseMultiTrack
)

func (p Phase) String() string {
	switch p {
	case PhaseSingleTrack:
		return "single-track"
	case PhaseMultiTrack:
		return "multi-track"
	default:
		return "no-queue"
	}
}

// DefaultVolume is the starting volume when none is configured.
const DefaultVolume = 0.5

// Engine is the single in-memory owner of playback state for a session.
// Operations are synchronous and safe for concurrent use. Driver calls are
// made after the state change is applied and never roll it back.
type Engine struct {
	mu sync.Mutex
	// pubMu is taken before mu is released so subscribers and the writer
	// see transitions in the order they were applied.
	pubMu sync.Mutex

	tracks []core.Track
	cursor int   // -1 when the queue is empty
	order  []int // traversal order over queue indices

	current *core.Track
	playing bool
	shuffle bool
	repeat  core.RepeatMode
	volume  float64

	driver  core.AudioDriver
	history *history.Recorder
	writer  *store.Writer
	log     *log.Logger
	rng     *rand.Rand

	errs    chan error
	subs    map[int]chan core.PlaybackState
	nextSub int
}

// Option configures an Engine.
type Option func(*Engine)

// WithDriver sets the audio driver. Without one, playback is intent only.
func WithDriver(d core.AudioDriver) Option {
	return func(e *Engine) {
		e.driver = d
	}
}

// WithHistory records every started track in r.
func WithHistory(r *history.Recorder) Option {
	return func(e *Engine) {
		e.history = r
	}
}

// WithPersistence writes the engine state through w after each transition.
func WithPersistence(w *store.Writer) Option {
	return func(e *Engine) {
		e.writer = w
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithRand sets the source used to build shuffle orders.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = r
	}
}

// WithDefaults sets the initial volume (0-1), shuffle and repeat mode.
// Invalid values are ignored.
func WithDefaults(volume float64, shuffle bool, repeat core.RepeatMode) Option {
	return func(e *Engine) {
		if volume >= 0 && volume <= 1 {
			e.volume = volume
		}
		e.shuffle = shuffle
		if repeat.Valid() {
			e.repeat = repeat
		}
	}
}

// WithSnapshot restores a previously persisted snapshot.
func WithSnapshot(s Snapshot) Option {
	return func(e *Engine) {
		e.restore(s)
	}
}

// New creates an engine with an empty queue.
func New(opts ...Option) *Engine {
	e := &Engine{
		cursor: -1,
		volume: DefaultVolume,
		errs:   make(chan error, 16),
		subs:   make(map[int]chan core.PlaybackState),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = logging.With(e.log, "component", "playback")
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if e.shuffle && len(e.order) != len(e.tracks) {
		e.reshuffleLocked()
	}
	return e
}

// State returns a copy of the playback state.
func (e *Engine) State() core.PlaybackState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// Queue returns a copy of the queue.
func (e *Engine) Queue() core.QueueSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queueLocked()
}

// Phase reports whether the queue is empty, single-track or multi-track.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch len(e.tracks) {
	case 0:
		return PhaseNoQueue
	case 1:
		return PhaseSingleTrack
	default:
		return PhaseMultiTrack
	}
}

// Errors delivers driver failures. Playback state keeps the recorded
// intent; the channel is how the UI hears the audio did not follow.
// Errors are dropped when nobody drains the channel.
func (e *Engine) Errors() <-chan error {
	return e.errs
}

// Subscribe returns a channel that receives the state after every
// transition, and a function that ends the subscription. A slow reader
// only sees the most recent state.
func (e *Engine) Subscribe() (<-chan core.PlaybackState, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextSub
	e.nextSub++
	ch := make(chan core.PlaybackState, 1)
	e.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs, id)
			e.mu.Unlock()
		})
	}
}

// SetShuffle turns shuffled traversal on or off. Turning it on keeps the
// current position and randomizes everything after it.
func (e *Engine) SetShuffle(enabled bool) {
	e.mu.Lock()
	if e.shuffle == enabled {
		e.mu.Unlock()
		return
	}
	e.shuffle = enabled
	if enabled {
		e.reshuffleLocked()
	} else {
		e.order = identity(len(e.tracks))
	}
	e.log.Debug("shuffle", "enabled", enabled)
	e.commitLocked()
}

// SetRepeatMode sets the repeat mode. Values outside none/one/all are
// rejected and the previous mode is kept.
func (e *Engine) SetRepeatMode(mode core.RepeatMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %d", cerrors.ErrInvalidRepeatMode, int(mode))
	}

	e.mu.Lock()
	e.repeat = mode
	e.log.Debug("repeat", "mode", mode)
	e.commitLocked()
	return nil
}

// SetRepeatModeString parses and sets the repeat mode.
func (e *Engine) SetRepeatModeString(s string) error {
	mode, err := core.ParseRepeatMode(s)
	if err != nil {
		return err
	}
	return e.SetRepeatMode(mode)
}

// CycleRepeatMode advances none -> all -> one -> none and returns the new mode.
func (e *Engine) CycleRepeatMode() core.RepeatMode {
	e.mu.Lock()
	e.repeat = e.repeat.Next()
	mode := e.repeat
	e.commitLocked()
	return mode
}

// SetVolume sets the volume in [0,1]. Out-of-range values are rejected.
func (e *Engine) SetVolume(ctx context.Context, volume float64) error {
	if math.IsNaN(volume) || volume < 0 || volume > 1 {
		return fmt.Errorf("%w: %v", cerrors.ErrInvalidVolume, volume)
	}

	e.mu.Lock()
	e.volume = volume
	e.commitLocked()

	e.drive("volume", func(d core.AudioDriver) error { return d.SetVolume(ctx, volume) })
	return nil
}

func (e *Engine) stateLocked() core.PlaybackState {
	s := core.PlaybackState{
		IsPlaying: e.playing,
		Shuffle:   e.shuffle,
		Repeat:    e.repeat,
		Volume:    e.volume,
	}
	if e.current != nil {
		t := *e.current
		s.Track = &t
	}
	return s
}

func (e *Engine) queueLocked() core.QueueSnapshot {
	tracks := make([]core.Track, len(e.tracks))
	copy(tracks, e.tracks)
	return core.QueueSnapshot{Tracks: tracks, Cursor: e.cursor}
}

// commitLocked publishes and persists the state, then releases the lock.
func (e *Engine) commitLocked() {
	state := e.stateLocked()
	snap := e.snapshotLocked()
	subs := make([]chan core.PlaybackState, 0, len(e.subs))
	for _, ch := range e.subs {
		subs = append(subs, ch)
	}
	e.pubMu.Lock()
	defer e.pubMu.Unlock()
	e.mu.Unlock()

	for _, ch := range subs {
		publish(ch, state)
	}
	if e.writer != nil {
		e.writer.PutJSON(store.KeyPlayback, snap)
	}
}

// publish replaces any unread state with the latest one.
func publish(ch chan core.PlaybackState, state core.PlaybackState) {
	for {
		select {
		case ch <- state.Clone():
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// drive calls the driver, reporting failures on the error channel.
func (e *Engine) drive(action string, call func(core.AudioDriver) error) {
	if e.driver == nil {
		return
	}
	if err := call(e.driver); err != nil {
		err = fmt.Errorf("driver %s: %w", action, err)
		e.log.Warn("audio driver error", "action", action, "err", err)
		select {
		case e.errs <- err:
		default:
		}
	}
}
