// Package favorites keeps the local liked-track set in step with the remote
// store. Toggles apply locally at once and are confirmed in the background;
// a response that has been overtaken by a later toggle of the same track,
// or by a full refresh, is ignored.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tessro/cadence/internal/core"
	cerrors "github.com/tessro/cadence/internal/errors"
	"github.com/tessro/cadence/internal/logging"
	"github.com/tessro/cadence/internal/store"
)

// DefaultTimeout bounds a single remote call.
const DefaultTimeout = 10 * time.Second

// Notice operations.
const (
	OpToggle  = "toggle"
	OpRefresh = "refresh"
)

// Notice reports a remote failure the user should hear about. The local
// state has already been repaired when it is delivered.
type Notice struct {
	TrackID string
	Op      string
	Err     error
	// Stale is set when a newer toggle or refresh had already replaced
	// the state this call would have reverted.
	Stale bool
	At    time.Time
}

func (n Notice) String() string {
	if n.Op == OpRefresh {
		return fmt.Sprintf("could not refresh likes: %v", n.Err)
	}
	return fmt.Sprintf("could not update like for %s: %v", n.TrackID, n.Err)
}

// Synchronizer owns the liked set for a session.
type Synchronizer struct {
	repo    core.LikeRepository
	timeout time.Duration
	writer  *store.Writer
	log     *log.Logger
	now     func() time.Time

	mu      sync.Mutex
	liked   map[string]struct{}
	gen     map[string]uint64        // latest toggle per track
	turn    map[string]chan struct{} // closed when the last toggle's call returns
	epoch   uint64                   // bumped by every applied refresh
	refresh uint64                   // last refresh started
	applied uint64                   // last refresh applied
	closed  bool
	drained bool // notices closed

	notices  chan Notice
	inflight sync.WaitGroup
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithTimeout sets the per-call timeout. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Synchronizer) {
		s.log = l
	}
}

// WithPersistence caches the liked set through w.
func WithPersistence(w *store.Writer) Option {
	return func(s *Synchronizer) {
		s.writer = w
	}
}

// WithInitial seeds the set, typically from the local cache.
func WithInitial(ids []string) Option {
	return func(s *Synchronizer) {
		for _, id := range ids {
			if id != "" {
				s.liked[id] = struct{}{}
			}
		}
	}
}

// WithClock overrides the time source for notices.
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) {
		s.now = now
	}
}

// New creates a synchronizer backed by repo.
func New(repo core.LikeRepository, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		repo:    repo,
		timeout: DefaultTimeout,
		now:     time.Now,
		liked:   make(map[string]struct{}),
		gen:     make(map[string]uint64),
		turn:    make(map[string]chan struct{}),
		notices: make(chan Notice, 32),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logging.With(s.log, "component", "favorites")
	return s
}

// IsLiked reports whether id is in the local set.
func (s *Synchronizer) IsLiked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.liked[id]
	return ok
}

// IDs returns the liked ids, sorted.
func (s *Synchronizer) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idsLocked()
}

// Len returns the number of liked tracks.
func (s *Synchronizer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.liked)
}

// Notices delivers remote failures. It is closed by Close. Notices are
// dropped when the buffer is full.
func (s *Synchronizer) Notices() <-chan Notice {
	return s.notices
}

// Toggle flips the local membership of id and returns the new state. The
// remote call runs in the background; done receives its outcome once (nil
// on success) and is then closed. On failure the local change is reverted
// unless it has already been overtaken.
func (s *Synchronizer) Toggle(ctx context.Context, id string) (bool, <-chan error) {
	done := make(chan error, 1)
	if id == "" {
		done <- fmt.Errorf("%w: missing id", cerrors.ErrInvalidTrack)
		close(done)
		return false, done
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		done <- errors.New("favorites: synchronizer closed")
		close(done)
		return s.IsLiked(id), done
	}
	_, before := s.liked[id]
	s.setLocked(id, !before)
	s.gen[id]++
	gen, epoch := s.gen[id], s.epoch
	prev, mine := s.turn[id], make(chan struct{})
	s.turn[id] = mine
	s.persistLocked()
	s.inflight.Add(1)
	s.mu.Unlock()

	s.log.Debug("toggle", "track", id, "liked", !before, "gen", gen)

	go func() {
		defer s.inflight.Done()
		defer close(done)
		if prev != nil {
			<-prev
		}
		done <- s.settle(ctx, id, before, gen, epoch, mine)
	}()
	return !before, done
}

// settle performs the remote toggle and applies its outcome. Calls for the
// same track are issued one at a time, in toggle order, so the remote sees
// the same sequence of flips the user made.
func (s *Synchronizer) settle(ctx context.Context, id string, before bool, gen, epoch uint64, mine chan struct{}) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	liked, err := s.repo.Toggle(ctx, id)
	if err != nil {
		err = classify(err)
	}

	s.mu.Lock()
	close(mine)
	if s.turn[id] == mine {
		delete(s.turn, id)
	}
	stale := s.gen[id] != gen || s.epoch != epoch
	switch {
	case stale:
		s.log.Debug("discarding stale toggle response", "track", id, "gen", gen, "err", err)
	case err != nil:
		s.setLocked(id, before)
		s.log.Warn("toggle failed, reverted", "track", id, "err", err)
	default:
		s.setLocked(id, liked)
	}
	if err != nil {
		s.noticeLocked(Notice{TrackID: id, Op: OpToggle, Err: err, Stale: stale})
	}
	if !stale {
		s.persistLocked()
	}
	s.mu.Unlock()
	return err
}

// Refresh replaces the local set with the remote one. Toggles still in
// flight when it applies are superseded. If an overlapping refresh started
// later has already applied, this result is dropped. On failure the local
// set is kept, a notice is emitted and the error returned.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.refresh++
	seq := s.refresh
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	remote, err := s.repo.FetchAll(ctx)
	if err != nil {
		err = classify(err)
		s.mu.Lock()
		s.noticeLocked(Notice{Op: OpRefresh, Err: err})
		s.mu.Unlock()
		s.log.Warn("refresh failed, keeping cached likes", "err", err)
		return fmt.Errorf("refresh likes: %w", err)
	}

	s.mu.Lock()
	if seq <= s.applied {
		s.mu.Unlock()
		s.log.Debug("discarding superseded refresh", "seq", seq)
		return nil
	}
	s.applied = seq
	s.epoch++
	s.liked = make(map[string]struct{}, len(remote))
	for id := range remote {
		if id != "" {
			s.liked[id] = struct{}{}
		}
	}
	s.persistLocked()
	count := len(s.liked)
	s.mu.Unlock()

	s.log.Debug("refreshed likes", "count", count)
	return nil
}

// Wait blocks until every in-flight toggle has settled.
func (s *Synchronizer) Wait() {
	s.inflight.Wait()
}

// Close waits for in-flight toggles and closes the notice channel.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.inflight.Wait()

	s.mu.Lock()
	s.drained = true
	close(s.notices)
	s.mu.Unlock()
}

func (s *Synchronizer) setLocked(id string, liked bool) {
	if liked {
		s.liked[id] = struct{}{}
	} else {
		delete(s.liked, id)
	}
}

func (s *Synchronizer) idsLocked() []string {
	ids := make([]string, 0, len(s.liked))
	for id := range s.liked {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// noticeLocked queues n. Notices raised after Close has drained the
// in-flight toggles are logged only.
func (s *Synchronizer) noticeLocked(n Notice) {
	n.At = s.now()
	if s.drained {
		s.log.Warn("notice after close", "notice", n.String())
		return
	}
	select {
	case s.notices <- n:
	default:
		s.log.Warn("notice dropped", "notice", n.String())
	}
}

// persistLocked schedules the current set for writing. Writer.Put does
// not block, so it runs under mu and writes land in mutation order.
func (s *Synchronizer) persistLocked() {
	if s.writer != nil {
		s.writer.PutJSON(store.KeyLiked, s.idsLocked())
	}
}

// LoadCached reads the liked ids cached in kv.
func LoadCached(ctx context.Context, kv core.KV) ([]string, error) {
	var ids []string
	if _, err := store.LoadJSON(ctx, kv, store.KeyLiked, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// classify keeps auth and rate-limit failures as they are and files
// everything else under network errors.
func classify(err error) error {
	if errors.Is(err, cerrors.ErrNotAuthenticated) || errors.Is(err, cerrors.ErrRateLimited) {
		return err
	}
	return cerrors.Network(err)
}
