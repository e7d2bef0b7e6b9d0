package remote

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tessro/cadence/internal/core"
	cerrors "github.com/tessro/cadence/internal/errors"
)

// Memory is an in-process stand-in for the API. It backs offline sessions
// and lets tests inject latency and failures.
type Memory struct {
	mu      sync.Mutex
	liked   map[string]bool
	tracks  []core.Track
	latency time.Duration
	err     error
	calls   int
}

// NewMemory creates a repository with ids already liked.
func NewMemory(ids ...string) *Memory {
	m := &Memory{liked: make(map[string]bool)}
	for _, id := range ids {
		m.liked[id] = true
	}
	return m
}

// AddTracks makes tracks available to the catalog methods.
func (m *Memory) AddTracks(tracks ...core.Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks = append(m.tracks, tracks...)
}

// SetLatency delays every call by d.
func (m *Memory) SetLatency(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latency = d
}

// SetOffline makes every call fail with a network error.
func (m *Memory) SetOffline(offline bool) {
	if offline {
		m.FailWith(cerrors.Network(fmt.Errorf("offline")))
		return
	}
	m.FailWith(nil)
}

// FailWith makes every call return err; nil clears it.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many calls reached the repository.
func (m *Memory) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// enter applies latency and injected failures.
func (m *Memory) enter(ctx context.Context) error {
	m.mu.Lock()
	m.calls++
	latency, err := m.latency, m.err
	m.mu.Unlock()

	if latency > 0 {
		timer := time.NewTimer(latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// Toggle flips the like for trackID.
func (m *Memory) Toggle(ctx context.Context, trackID string) (bool, error) {
	if err := m.enter(ctx); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.liked[trackID] = !m.liked[trackID]
	return m.liked[trackID], nil
}

// FetchAll returns the liked ids.
func (m *Memory) FetchAll(ctx context.Context) (map[string]struct{}, error) {
	if err := m.enter(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]struct{}, len(m.liked))
	for id, ok := range m.liked {
		if ok {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

// Search matches query against title, artist and album, case-insensitively.
func (m *Memory) Search(ctx context.Context, query string, limit int) ([]core.Track, error) {
	if err := m.enter(ctx); err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))

	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Track
	for _, t := range m.tracks {
		hay := strings.ToLower(t.Title + " " + t.Artist + " " + t.Album)
		if q == "" || strings.Contains(hay, q) {
			out = append(out, t)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// Album returns tracks whose album matches id.
func (m *Memory) Album(ctx context.Context, id string) ([]core.Track, error) {
	if err := m.enter(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Track
	for _, t := range m.tracks {
		if strings.EqualFold(t.Album, id) {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: album %s", cerrors.ErrTrackNotFound, id)
	}
	return out, nil
}

// Song returns the track with id.
func (m *Memory) Song(ctx context.Context, id string) (core.Track, error) {
	if err := m.enter(ctx); err != nil {
		return core.Track{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.tracks, func(t core.Track) bool { return t.ID == id })
	if i < 0 {
		return core.Track{}, fmt.Errorf("%w: %s", cerrors.ErrTrackNotFound, id)
	}
	return m.tracks[i], nil
}

var (
	_ core.LikeRepository = (*Memory)(nil)
	_ Catalog             = (*Memory)(nil)
)
