package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tessro/cadence/internal/config"
	"github.com/tessro/cadence/internal/core"
	"github.com/tessro/cadence/internal/driver"
	"github.com/tessro/cadence/internal/favorites"
	"github.com/tessro/cadence/internal/remote"
	"github.com/tessro/cadence/internal/session"
	"github.com/tessro/cadence/internal/store"
)

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keySpace = tea.KeyMsg{Type: tea.KeySpace}
	keyCtrlT = tea.KeyMsg{Type: tea.KeyCtrlT}
	keyCtrlQ = tea.KeyMsg{Type: tea.KeyCtrlQ}
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var album = []core.Track{
	{ID: "1", Title: "One", Artist: "Band", Album: "LP", AudioURL: "https://cdn/1.mp3", DurationSeconds: 3},
	{ID: "2", Title: "Two", Artist: "Band", Album: "LP", AudioURL: "https://cdn/2.mp3", DurationSeconds: 3},
	{ID: "3", Title: "Three", Artist: "Band", Album: "LP", AudioURL: "https://cdn/3.mp3", DurationSeconds: 3},
}

func newSession(t *testing.T) *session.Session {
	t.Helper()
	ctx := context.Background()

	cfg := config.Default()
	cfg.Storage.Backend = store.BackendMemory
	cfg.Favorites.RefreshOnStart = false

	repo := remote.NewMemory()
	repo.AddTracks(album...)

	s, err := session.Open(ctx, cfg, session.Deps{
		KV:      store.NewMemory(),
		Likes:   repo,
		Catalog: repo,
		Driver:  driver.NewNull(nil),
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Dispose(context.Background()) })
	return s
}

func newModel(t *testing.T, s *session.Session) Model {
	t.Helper()
	m := NewModel(context.Background(), s, Options{})
	t.Cleanup(m.Close)
	return m
}

func update(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func playAlbum(t *testing.T, s *session.Session) {
	t.Helper()
	s.Engine.SetQueue(album)
	if !s.Engine.JumpTo(context.Background(), 0) {
		t.Fatal("JumpTo(0) = false")
	}
}

func TestPlaybackKeys(t *testing.T) {
	s := newSession(t)
	playAlbum(t, s)
	m := newModel(t, s)

	m = update(t, m, key("n"))
	if got := trackID(m.state.Track); got != "2" {
		t.Errorf("after next, track = %q, want 2", got)
	}

	m = update(t, m, key("p"))
	if got := trackID(m.state.Track); got != "1" {
		t.Errorf("after prev, track = %q, want 1", got)
	}

	m = update(t, m, keySpace)
	if m.state.IsPlaying {
		t.Error("space should pause")
	}

	m = update(t, m, key("s"), key("r"))
	if !m.state.Shuffle {
		t.Error("s should turn shuffle on")
	}
	if m.state.Repeat != core.RepeatAll {
		t.Errorf("repeat = %v, want all", m.state.Repeat)
	}
	if m.status != "Repeat all" {
		t.Errorf("status = %q", m.status)
	}
}

func TestVolumeKeysClamp(t *testing.T) {
	s := newSession(t)
	if err := s.Engine.SetVolume(context.Background(), 0.98); err != nil {
		t.Fatal(err)
	}
	m := newModel(t, s)

	m = update(t, m, key("+"))
	if m.state.Volume != 1 {
		t.Errorf("volume = %v, want 1", m.state.Volume)
	}
	m = update(t, m, key("-"))
	if got := m.state.VolumePercent(); got != 95 {
		t.Errorf("volume = %d%%, want 95%%", got)
	}
}

func TestClockEndsTrack(t *testing.T) {
	s := newSession(t)
	playAlbum(t, s)
	m := newModel(t, s)

	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m = update(t, m, tickMsg(t0), tickMsg(t0.Add(2*time.Second)))
	if m.elapsed != 2*time.Second {
		t.Errorf("elapsed = %v, want 2s", m.elapsed)
	}
	if got := trackID(m.state.Track); got != "1" {
		t.Fatalf("track = %q before the end, want 1", got)
	}

	m = update(t, m, tickMsg(t0.Add(4*time.Second)))
	if got := trackID(m.state.Track); got != "2" {
		t.Errorf("track = %q after the end, want 2", got)
	}
	if m.elapsed != 0 {
		t.Errorf("elapsed = %v after the end, want 0", m.elapsed)
	}
}

func TestClockRepeatOneRestarts(t *testing.T) {
	s := newSession(t)
	playAlbum(t, s)
	if err := s.Engine.SetRepeatMode(core.RepeatOne); err != nil {
		t.Fatal(err)
	}
	m := newModel(t, s)

	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m = update(t, m, tickMsg(t0), tickMsg(t0.Add(5*time.Second)))
	if got := trackID(m.state.Track); got != "1" {
		t.Errorf("track = %q, want 1 replayed", got)
	}
	if m.elapsed != 0 || !m.state.IsPlaying {
		t.Errorf("elapsed = %v playing = %v, want a restarted track", m.elapsed, m.state.IsPlaying)
	}
}

func TestClockStopsWhilePaused(t *testing.T) {
	s := newSession(t)
	playAlbum(t, s)
	s.Engine.Pause(context.Background())
	m := newModel(t, s)

	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m = update(t, m, tickMsg(t0), tickMsg(t0.Add(10*time.Second)))
	if m.elapsed != 0 {
		t.Errorf("elapsed = %v while paused, want 0", m.elapsed)
	}
	if got := trackID(m.state.Track); got != "1" {
		t.Errorf("track = %q, want 1", got)
	}
}

func TestLikeCurrentTrack(t *testing.T) {
	s := newSession(t)
	playAlbum(t, s)
	m := newModel(t, s)

	m = update(t, m, key("l"))
	s.Favorites.Wait()
	if !s.Favorites.IsLiked("1") {
		t.Error("l should like the current track")
	}
	if !strings.Contains(m.status, "Band — One") {
		t.Errorf("status = %q, want the track name", m.status)
	}

	// Unlike it again from the likes panel.
	m = update(t, m, keyTab, keyTab, key("d"))
	s.Favorites.Wait()
	if s.Favorites.IsLiked("1") {
		t.Error("d in the likes panel should remove the like")
	}
}

func TestLikeWithoutTrack(t *testing.T) {
	m := newModel(t, newSession(t))
	m = update(t, m, key("l"))
	if m.status != "No track to like" {
		t.Errorf("status = %q", m.status)
	}
}

func TestQueuePanel(t *testing.T) {
	s := newSession(t)
	playAlbum(t, s)
	m := newModel(t, s)

	m = update(t, m, keyTab)
	if m.focusedPanel != PanelQueue {
		t.Fatalf("focused = %v, want queue", m.focusedPanel)
	}

	m = update(t, m, key("j"), key("j"), key("j"), keyEnter)
	if m.queue.Cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.queue.Cursor)
	}

	m = update(t, m, key("k"), key("x"))
	if m.queue.Len() != 2 {
		t.Errorf("queue length = %d, want 2", m.queue.Len())
	}
	if m.queue.Tracks[1].ID != "3" {
		t.Errorf("queue = %v, want 2 removed", m.queue.Tracks)
	}
}

func TestSearchPlaysTrack(t *testing.T) {
	s := newSession(t)
	m := newModel(t, s)

	m = update(t, m, key("/"), key("two"))
	if !m.showSearch {
		t.Fatal("/ should open search")
	}

	next, cmd := m.Update(searchDebounceMsg{query: "two"})
	m = next.(Model)
	if cmd == nil || !m.searching {
		t.Fatal("debounce should start a search")
	}
	m = update(t, m, cmd())
	if len(m.searchResults) != 1 {
		t.Fatalf("results = %v, want one match", m.searchResults)
	}

	m = update(t, m, keyEnter)
	if m.showSearch {
		t.Error("enter should close search")
	}
	if got := trackID(m.state.Track); got != "2" {
		t.Errorf("track = %q, want 2", got)
	}
}

func TestSearchAlbumQueues(t *testing.T) {
	s := newSession(t)
	m := newModel(t, s)

	m = update(t, m, key("/"), key("lp"))
	next, cmd := m.Update(keyCtrlT)
	m = next.(Model)
	if m.searchKind != SearchAlbum || cmd == nil {
		t.Fatal("ctrl+t should switch to album search")
	}
	m = update(t, m, cmd(), tea.KeyMsg{Type: tea.KeyDown}, keyEnter)

	if m.queue.Len() != 3 || m.queue.Cursor != 1 {
		t.Errorf("queue = %d tracks at %d, want 3 at 1", m.queue.Len(), m.queue.Cursor)
	}
}

func TestSearchEnqueue(t *testing.T) {
	s := newSession(t)
	m := newModel(t, s)

	m = update(t, m, key("/"), key("three"))
	next, cmd := m.Update(searchDebounceMsg{query: "three"})
	m = update(t, next.(Model), cmd(), keyCtrlQ)

	if m.queue.Len() != 1 || m.queue.Tracks[0].ID != "3" {
		t.Errorf("queue = %v, want [3]", m.queue.Tracks)
	}
	if m.state.Track != nil {
		t.Error("queueing should not start playback")
	}
}

func TestSearchDropsOutdatedResults(t *testing.T) {
	m := newModel(t, newSession(t))
	m = update(t, m, key("/"), key("on"), searchDebounceMsg{query: "on"})

	m = update(t, m, searchResultsMsg{query: "o", results: album})
	if m.searchResults != nil {
		t.Errorf("results for an old query were applied: %v", m.searchResults)
	}
	m = update(t, m, searchResultsMsg{query: "on", results: album[:1]})
	if len(m.searchResults) != 1 {
		t.Errorf("results = %v, want the current query's", m.searchResults)
	}
}

func TestErrorsAndNotices(t *testing.T) {
	m := newModel(t, newSession(t))
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	m = update(t, m, errMsg{errors.New("driver play: no device")})
	if !m.statusIsErr || m.status != "driver play: no device" {
		t.Errorf("status = %q (err %v)", m.status, m.statusIsErr)
	}

	m = update(t, m, noticeMsg(favorites.Notice{TrackID: "x", Op: favorites.OpToggle, Err: errors.New("offline")}))
	if !strings.Contains(m.status, "could not update like for x") {
		t.Errorf("status = %q", m.status)
	}

	m = update(t, m, tickMsg(now.Add(statusTTL+time.Second)))
	if m.status != "" {
		t.Errorf("status = %q, want it expired", m.status)
	}
}

func TestHelpOverlay(t *testing.T) {
	s := newSession(t)
	playAlbum(t, s)
	m := newModel(t, s)

	m = update(t, m, key("?"), key("n"))
	if got := trackID(m.state.Track); got != "1" {
		t.Errorf("keys should not reach playback while help is open, track = %q", got)
	}
	m = update(t, m, key("?"))
	if m.showHelp {
		t.Error("? should close help")
	}
}

func TestView(t *testing.T) {
	s := newSession(t)
	playAlbum(t, s)
	m := newModel(t, s)

	if got := m.View(); got != "Loading..." {
		t.Errorf("View() before size = %q", got)
	}

	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()
	for _, want := range []string{"Now Playing", "Queue (3)", "Likes (0)", "History", "One"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestQuit(t *testing.T) {
	m := newModel(t, newSession(t))
	next, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
	if next.(Model).View() != "" {
		t.Error("View() after quit should be empty")
	}
}
