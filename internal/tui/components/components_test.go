package components

import (
	"strings"
	"testing"
	"time"

	"github.com/tessro/cadence/internal/core"
	"github.com/tessro/cadence/internal/history"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 2, "he"},
		{"hello", 0, ""},
		{"Café del Mar", 7, "Café..."},
		{"東京フラワー", 5, "東京..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestFitPair(t *testing.T) {
	title, artist := fitPair("Song", "Band", 20, 8)
	if title != "Song" || artist != "Band" {
		t.Errorf("fitPair() = %q, %q, want unchanged", title, artist)
	}

	title, artist = fitPair("A Very Long Song Title Indeed", "Some Artist Name", 30, 10)
	if n := len([]rune(title)) + len([]rune(artist)); n > 30 {
		t.Errorf("fitPair() = %q, %q (%d runes), want at most 30", title, artist, n)
	}
	if len([]rune(artist)) < 10 {
		t.Errorf("artist = %q, want at least 10 runes", artist)
	}
}

func TestListWindow(t *testing.T) {
	var l list
	for range 7 {
		l.next(10)
	}
	start, end := l.window(10, 5)
	if l.selected != 7 || start != 3 || end != 8 {
		t.Errorf("window = [%d,%d) selected %d, want [3,8) selected 7", start, end, l.selected)
	}

	for range 6 {
		l.prev()
	}
	start, end = l.window(10, 5)
	if start != 1 || end != 6 {
		t.Errorf("window = [%d,%d), want [1,6)", start, end)
	}

	// The list shrank under the selection.
	l.selected = 9
	start, end = l.window(2, 5)
	if l.selected != 1 || start != 0 || end != 2 {
		t.Errorf("window = [%d,%d) selected %d, want [0,2) selected 1", start, end, l.selected)
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(215 * time.Second); got != "3:35" {
		t.Errorf("formatDuration() = %q", got)
	}
}

func TestNowPlayingRender(t *testing.T) {
	n := NewNowPlaying()
	state := core.PlaybackState{
		Track:     &core.Track{ID: "1", Title: "Song", Artist: "Band", DurationSeconds: 200},
		IsPlaying: true,
		Repeat:    core.RepeatAll,
		Volume:    0.4,
	}
	out := n.Render(state, 50*time.Second, true, 60, 12, false)
	for _, want := range []string{"Song", "Band", "0:50", "3:20", "40%", "all", "♥"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q", want)
		}
	}

	if out := n.Render(core.PlaybackState{}, 0, false, 60, 12, false); !strings.Contains(out, "No track playing") {
		t.Error("empty state should say nothing is playing")
	}
}

func TestQueueRenderMarksCursor(t *testing.T) {
	q := NewQueue()
	snap := core.QueueSnapshot{
		Tracks: []core.Track{{ID: "a", Title: "First"}, {ID: "b", Title: "Second"}},
		Cursor: 1,
	}
	out := q.Render(snap, func(id string) bool { return id == "a" }, 60, 10, true)

	lines := strings.Split(out, "\n")
	var first, second string
	for _, l := range lines {
		switch {
		case strings.Contains(l, "First"):
			first = l
		case strings.Contains(l, "Second"):
			second = l
		}
	}
	if !strings.Contains(second, "▶") || strings.Contains(first, "▶") {
		t.Errorf("cursor marker on the wrong row:\n%s", out)
	}
	if !strings.Contains(first, "♥") {
		t.Errorf("liked row missing heart: %q", first)
	}
	if !strings.Contains(out, "Queue (2)") {
		t.Error("title should show the queue length")
	}
}

func TestLikesRender(t *testing.T) {
	l := NewLikes()
	lookup := func(id string) (core.Track, bool) {
		if id == "a" {
			return core.Track{ID: "a", Title: "Song", Artist: "Band"}, true
		}
		return core.Track{}, false
	}
	out := l.Render([]string{"a", "zz"}, lookup, 50, 10, true)
	if !strings.Contains(out, "Band — Song") || !strings.Contains(out, "zz") {
		t.Errorf("Render() =\n%s", out)
	}
	if out := l.Render(nil, nil, 50, 10, false); !strings.Contains(out, "No liked tracks") {
		t.Error("empty likes should say so")
	}
}

func TestHistoryRender(t *testing.T) {
	h := NewHistory()
	entries := []history.Entry{
		{Track: core.Track{ID: "a", Title: "Song", Artist: "Band"}, PlayedAt: time.Now().Add(-3 * time.Minute)},
	}
	out := h.Render(entries, 60, 10, false)
	if !strings.Contains(out, "Song — Band") || !strings.Contains(out, "3 minutes ago") {
		t.Errorf("Render() =\n%s", out)
	}
}
