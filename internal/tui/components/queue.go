package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/cadence/internal/core"
	"github.com/tessro/cadence/internal/tui/styles"
)

// Queue displays the playback queue
type Queue struct {
	list
}

// NewQueue creates a new Queue component
func NewQueue() *Queue {
	return &Queue{}
}

// SelectNext moves the selection down within a queue of n tracks.
func (q *Queue) SelectNext(n int) {
	q.next(n)
}

// SelectPrev moves the selection up.
func (q *Queue) SelectPrev() {
	q.prev()
}

// Select moves the selection to index i.
func (q *Queue) Select(i int) {
	q.selected = i
}

// Selected returns the selected index
func (q *Queue) Selected() int {
	return q.selected
}

// Render renders the queue panel. liked reports whether a track id is a
// favorite and may be nil.
func (q *Queue) Render(queue core.QueueSnapshot, liked func(string) bool, width, height int, focused bool) string {
	var content string
	if queue.IsEmpty() {
		content = styles.Muted.Render("Queue is empty")
	} else {
		content = q.renderQueue(queue, liked, width-4, height-4, focused)
	}
	return panel(fmt.Sprintf("Queue (%d)", queue.Len()), content, width, height, focused)
}

func (q *Queue) renderQueue(queue core.QueueSnapshot, liked func(string) bool, width, maxLines int, focused bool) string {
	tracks := queue.Tracks
	start, end := q.window(len(tracks), maxLines-1) // room for the "more" line

	lines := make([]string, 0, end-start+1)

	// "▸ " (2) + "XX. " (4) + "▶ " (2) + " — " (3) + " ♥" (2)
	const overhead = 13

	for i := start; i < end; i++ {
		track := tracks[i]
		num := fmt.Sprintf("%2d.", i+1)
		name := track.Title
		if name == "" {
			name = track.ID
		}
		title, artist := fitPair(name, track.Artist, width-overhead, 10)

		heart := ""
		if liked != nil && liked(track.ID) {
			heart = " " + styles.Heart(true)
		}

		var line string
		switch {
		case i == queue.Cursor:
			line = styles.Playing.Render(fmt.Sprintf("%s ▶ %s — %s", num, title, artist))
		default:
			line = fmt.Sprintf("%s   %s — %s",
				styles.Dim.Render(num),
				title,
				styles.Muted.Render(artist))
		}
		selector := "  "
		if focused && i == q.selected {
			selector = styles.Highlight.Render("▸ ")
		}
		lines = append(lines, selector+line+heart)
	}

	if end < len(tracks) {
		lines = append(lines, styles.Dim.Render(fmt.Sprintf("    ... and %d more", len(tracks)-end)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
