package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/tessro/cadence/internal/history"
	"github.com/tessro/cadence/internal/tui/styles"
)

// History displays recently played tracks
type History struct{}

// NewHistory creates a new History component
func NewHistory() *History {
	return &History{}
}

// Render renders the history panel
func (h *History) Render(entries []history.Entry, width, height int, focused bool) string {
	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("No history yet")
	} else {
		content = h.renderHistory(entries, width-4, height-4)
	}
	return panel("History", content, width, height, focused)
}

func (h *History) renderHistory(entries []history.Entry, width, maxLines int) string {
	lines := make([]string, 0, min(maxLines, len(entries)))

	// icon (1) + " " (1) + " — " (3) + gap (1)
	const overhead = 6

	for i, entry := range entries {
		if i >= maxLines {
			break
		}

		track := entry.Track
		ago := humanize.Time(entry.PlayedAt)
		agoWidth := len([]rune(ago))

		name := track.Title
		if name == "" {
			name = track.ID
		}
		title, artist := fitPair(name, track.Artist, width-overhead-agoWidth, 8)
		info := fmt.Sprintf("%s — %s", title, artist)
		infoWidth := len([]rune(title)) + 3 + len([]rune(artist))

		padding := max(width-2-infoWidth-agoWidth, 1)

		lines = append(lines, fmt.Sprintf("%s %s%s%s",
			styles.Dim.Render("✓"),
			info,
			lipgloss.NewStyle().Width(padding).Render(""),
			styles.Dim.Render(ago)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
