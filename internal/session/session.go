// Package session wires the playback engine, favorites synchronizer and
// history recorder for one user session, restores what the previous
// session persisted, and tears everything down again.
package session

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/tessro/cadence/internal/config"
	"github.com/tessro/cadence/internal/core"
	"github.com/tessro/cadence/internal/driver"
	"github.com/tessro/cadence/internal/favorites"
	"github.com/tessro/cadence/internal/history"
	"github.com/tessro/cadence/internal/logging"
	"github.com/tessro/cadence/internal/playback"
	"github.com/tessro/cadence/internal/remote"
	"github.com/tessro/cadence/internal/remote/auth"
	"github.com/tessro/cadence/internal/store"
)

// Deps overrides the collaborators a session would otherwise build from
// its config. Zero values mean "build the default".
type Deps struct {
	Driver  core.AudioDriver
	Likes   core.LikeRepository
	Catalog remote.Catalog
	KV      core.KV
	Tokens  *auth.TokenStorage
	Logger  *log.Logger
	Rand    *rand.Rand
}

// Session is one user's playback session.
type Session struct {
	ID     string
	Config *config.Config

	Engine    *playback.Engine
	Favorites *favorites.Synchronizer
	History   *history.Recorder
	Catalog   remote.Catalog
	// Client is set when the session talks to the API.
	Client *remote.Client

	driver core.AudioDriver
	kv     core.KV
	ownsKV bool
	writer *store.Writer
	log    *log.Logger

	disposeOnce sync.Once
	disposeErr  error
}

// Open builds a session from cfg and restores the persisted state. When
// favorites.refresh_on_start is set the liked set is refreshed; a failed
// refresh is reported as a notice and does not fail Open.
func Open(ctx context.Context, cfg *config.Config, deps Deps) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	s := &Session{
		ID:     uuid.New().String(),
		Config: cfg,
		kv:     deps.KV,
	}
	s.log = logging.With(deps.Logger, "session", s.ID[:8])

	if s.kv == nil {
		kv, err := store.Open(cfg.Storage.Backend, cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open state store: %w", err)
		}
		s.kv = kv
		s.ownsKV = true
	}
	s.writer = store.NewWriter(s.kv, s.log)

	if err := s.init(ctx, cfg, deps); err != nil {
		s.writer.Close()
		if s.ownsKV {
			_ = s.kv.Close()
		}
		return nil, err
	}

	q := s.Engine.Queue()
	s.log.Debug("session opened", "backend", cfg.Storage.Backend, "queue", q.Len(),
		"liked", s.Favorites.Len(), "history", s.History.Len())
	return s, nil
}

func (s *Session) init(ctx context.Context, cfg *config.Config, deps Deps) error {
	likes, catalog, err := s.remotes(cfg, deps)
	if err != nil {
		return err
	}
	s.Catalog = catalog

	var entries []history.Entry
	if _, err := store.LoadJSON(ctx, s.kv, store.KeyHistory, &entries); err != nil {
		s.log.Warn("discarding unreadable history", "err", err)
		entries = nil
	}
	s.History = history.New(cfg.History.Max, history.OnChange(func(e []history.Entry) {
		s.writer.PutJSON(store.KeyHistory, e)
	}))
	s.History.Load(entries)

	liked, err := favorites.LoadCached(ctx, s.kv)
	if err != nil {
		s.log.Warn("discarding unreadable like cache", "err", err)
		liked = nil
	}
	s.Favorites = favorites.New(likes,
		favorites.WithTimeout(cfg.Favorites.TimeoutDuration()),
		favorites.WithInitial(liked),
		favorites.WithPersistence(s.writer),
		favorites.WithLogger(s.log),
	)

	s.driver = deps.Driver
	if s.driver == nil {
		s.driver = driver.NewNull(s.log)
	}
	opts := []playback.Option{
		playback.WithDriver(s.driver),
		playback.WithHistory(s.History),
		playback.WithPersistence(s.writer),
		playback.WithLogger(s.log),
		playback.WithDefaults(cfg.Defaults.VolumeFraction(), cfg.Defaults.Shuffle, cfg.Defaults.RepeatMode()),
	}
	if deps.Rand != nil {
		opts = append(opts, playback.WithRand(deps.Rand))
	}
	snap, ok, err := playback.LoadSnapshot(ctx, s.kv)
	switch {
	case err != nil:
		s.log.Warn("discarding unreadable playback state", "err", err)
	case ok:
		opts = append(opts, playback.WithSnapshot(snap))
	}
	s.Engine = playback.New(opts...)

	if cfg.Favorites.RefreshOnStart {
		if err := s.Favorites.Refresh(ctx); err != nil {
			s.log.Info("using cached likes", "err", err)
		}
	}
	return nil
}

// remotes picks the like repository and catalog: explicit deps first, then
// the in-memory stand-in when offline, otherwise the API client.
func (s *Session) remotes(cfg *config.Config, deps Deps) (core.LikeRepository, remote.Catalog, error) {
	likes, catalog := deps.Likes, deps.Catalog
	if likes != nil && catalog != nil {
		return likes, catalog, nil
	}

	if cfg.API.Offline {
		mem := remote.NewMemory()
		return cmp.Or[core.LikeRepository](likes, mem), cmp.Or[remote.Catalog](catalog, mem), nil
	}

	tokens := deps.Tokens
	if tokens == nil {
		var err error
		if tokens, err = auth.NewTokenStorage(""); err != nil {
			return nil, nil, err
		}
	}
	client := remote.New(cfg.API.BaseURL,
		remote.WithTimeout(cfg.API.TimeoutDuration()),
		remote.WithRateLimit(cfg.API.RateLimit),
		remote.WithRetries(cfg.API.MaxRetries),
		remote.WithTokenStorage(tokens),
		remote.WithLogger(s.log),
	)
	if err := client.LoadToken(); err != nil {
		s.log.Warn("ignoring unreadable token", "err", err)
	}
	s.Client = client
	return cmp.Or[core.LikeRepository](likes, client), cmp.Or[remote.Catalog](catalog, client), nil
}

// Flush waits until everything persisted so far has been written.
func (s *Session) Flush(ctx context.Context) error {
	return s.writer.Flush(ctx)
}

// Dispose waits for in-flight like toggles, writes pending state and
// releases the store and driver. It is safe to call more than once.
func (s *Session) Dispose(ctx context.Context) error {
	s.disposeOnce.Do(func() {
		var errs []error

		done := make(chan struct{})
		go func() {
			s.Favorites.Close()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("waiting for like toggles: %w", ctx.Err()))
		}

		if err := s.writer.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flushing state: %w", err))
		}
		s.writer.Close()

		if c, ok := s.driver.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing driver: %w", err))
			}
		}
		if s.ownsKV {
			if err := s.kv.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing state store: %w", err))
			}
		}

		s.disposeErr = errors.Join(errs...)
		s.log.Debug("session disposed", "err", s.disposeErr)
	})
	return s.disposeErr
}
