package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/cadence/internal/core"
	"github.com/tessro/cadence/internal/tui/styles"
)

// Likes lists the liked tracks.
type Likes struct {
	list
}

// NewLikes creates a new Likes component
func NewLikes() *Likes {
	return &Likes{}
}

// SelectNext moves the selection down within n likes.
func (l *Likes) SelectNext(n int) {
	l.next(n)
}

// SelectPrev moves the selection up.
func (l *Likes) SelectPrev() {
	l.prev()
}

// Selected returns the selected index
func (l *Likes) Selected() int {
	return l.selected
}

// Render renders the likes panel. lookup resolves an id to a known track
// and may be nil; unknown ids are shown as-is.
func (l *Likes) Render(ids []string, lookup func(string) (core.Track, bool), width, height int, focused bool) string {
	var content string
	if len(ids) == 0 {
		content = styles.Muted.Render("No liked tracks")
	} else {
		content = l.renderLikes(ids, lookup, width-4, height-4, focused)
	}
	return panel(fmt.Sprintf("Likes (%d)", len(ids)), content, width, height, focused)
}

func (l *Likes) renderLikes(ids []string, lookup func(string) (core.Track, bool), width, maxLines int, focused bool) string {
	start, end := l.window(len(ids), maxLines)
	lines := make([]string, 0, end-start)

	for i := start; i < end; i++ {
		label := ids[i]
		if lookup != nil {
			if t, ok := lookup(ids[i]); ok {
				label = t.String()
			}
		}
		label = truncate(label, width-4)

		selector := "  "
		if focused && i == l.selected {
			selector = "▸ "
			label = styles.Highlight.Render(label)
		}
		lines = append(lines, selector+styles.Heart(true)+" "+label)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
