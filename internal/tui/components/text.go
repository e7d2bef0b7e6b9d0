package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/cadence/internal/tui/styles"
)

// list tracks a selection and a scroll window over n rows.
type list struct {
	offset   int
	selected int
}

func (l *list) next(n int) {
	if l.selected < n-1 {
		l.selected++
	}
}

func (l *list) prev() {
	if l.selected > 0 {
		l.selected--
	}
}

// window clamps the selection to n rows and returns the visible range for
// a panel that fits rows lines.
func (l *list) window(n, rows int) (start, end int) {
	rows = max(rows, 1)
	l.selected = min(max(l.selected, 0), max(n-1, 0))
	if l.selected < l.offset {
		l.offset = l.selected
	}
	if l.selected >= l.offset+rows {
		l.offset = l.selected - rows + 1
	}
	l.offset = min(l.offset, max(n-rows, 0))
	return l.offset, min(l.offset+rows, n)
}

// panel wraps content in a titled, bordered box.
func panel(title, content string, width, height int, focused bool) string {
	return styles.Panel(focused).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			styles.PanelTitle(title, focused),
			"",
			content,
		))
}

// fitPair shortens title and artist so both fit in available columns,
// keeping at least a third of the room for the artist.
func fitPair(title, artist string, available, minArtist int) (string, string) {
	titleLen := len([]rune(title))
	artistLen := len([]rune(artist))
	if titleLen+artistLen <= available {
		return title, artist
	}

	artistSpace := max(available/3, minArtist)
	artistSpace = min(artistSpace, available-minArtist, artistLen)
	return truncate(title, available-artistSpace), truncate(artist, artistSpace)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d", m, s)
}
