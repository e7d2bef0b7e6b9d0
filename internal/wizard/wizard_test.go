package wizard

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tessro/cadence/internal/core"
)

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func tracks(ids ...string) []core.Track {
	out := make([]core.Track, len(ids))
	for i, id := range ids {
		out[i] = core.Track{ID: id, Title: "Song " + id}
	}
	return out
}

func update[M tea.Model](t *testing.T, m M, msgs ...tea.Msg) M {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(M)
	}
	return m
}

func TestPickerSelects(t *testing.T) {
	m := NewPickerModel("Jump", tracks("a", "b", "c"), 1)
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want to start at current", m.cursor)
	}

	m = update(t, m, keyDown, keyDown, keyUp, keyEnter)
	if got := m.Selected(); got != 2 {
		t.Errorf("Selected() = %d, want 2", got)
	}
}

func TestPickerCancel(t *testing.T) {
	m := update(t, NewPickerModel("Jump", tracks("a"), -1), keyEsc)
	if got := m.Selected(); got != -1 {
		t.Errorf("Selected() after esc = %d, want -1", got)
	}
}

func TestSearchSelectsTrack(t *testing.T) {
	var gotKind SearchKind
	m := NewSearchModel(func(q string, kind SearchKind) ([]core.Track, error) {
		gotKind = kind
		return tracks("x", "y"), nil
	})
	m.input.SetValue("song")

	msg := m.doSearch("song")()
	m = update(t, m, msg, keyDown, keyEnter)

	sel := m.Selected()
	if sel == nil || len(sel.Tracks) != 1 || sel.Tracks[0].ID != "y" {
		t.Fatalf("Selected() = %+v, want track y", sel)
	}
	if gotKind != SearchTracks {
		t.Errorf("kind = %v, want tracks", gotKind)
	}
}

func TestSearchSelectsAlbum(t *testing.T) {
	m := NewSearchModel(func(q string, kind SearchKind) ([]core.Track, error) {
		if kind != SearchAlbum {
			return nil, nil
		}
		return tracks("1", "2", "3"), nil
	})
	m = update(t, m, keyTab)
	m.input.SetValue("lp")

	m = update(t, m, m.doSearch("lp")(), keyDown, keyEnter)
	sel := m.Selected()
	if sel == nil || sel.Kind != SearchAlbum || len(sel.Tracks) != 3 || sel.Start != 1 {
		t.Fatalf("Selected() = %+v, want album starting at 1", sel)
	}
}

func TestSearchDropsOutdatedResults(t *testing.T) {
	m := NewSearchModel(func(string, SearchKind) ([]core.Track, error) { return tracks("old"), nil })
	m.input.SetValue("new query")

	m = update(t, m, searchResultsMsg{query: "old query", results: tracks("old")})
	if len(m.results) != 0 {
		t.Errorf("results = %v, want outdated results dropped", m.results)
	}

	m = update(t, m, searchResultsMsg{query: "new query", err: errors.New("offline")})
	if m.err == nil {
		t.Error("error from current query not shown")
	}
	if m = update(t, m, keyEnter); m.Selected() != nil {
		t.Error("enter with no results should not select")
	}
}
