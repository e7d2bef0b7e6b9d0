package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/cadence/internal/core"
	"github.com/tessro/cadence/internal/tui/styles"
)

// NowPlaying displays the currently playing track
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the now playing panel. elapsed is how far into the track
// playback has got; liked marks the track as a favorite.
func (n *NowPlaying) Render(state core.PlaybackState, elapsed time.Duration, liked bool, width, height int, focused bool) string {
	var content string
	if state.Track == nil {
		content = lipgloss.JoinVertical(lipgloss.Left,
			styles.Muted.Render("No track playing"),
			"",
			n.renderSettings(state),
		)
	} else {
		content = n.renderTrack(state, elapsed, liked, width-4)
	}
	return panel("Now Playing", content, width, height, focused)
}

func (n *NowPlaying) renderTrack(state core.PlaybackState, elapsed time.Duration, liked bool, width int) string {
	track := state.Track

	icon := styles.StatusIcon(state.IsPlaying)
	name := track.Title
	if name == "" {
		name = track.ID
	}
	title := styles.Title.Width(max(width-4, 1)).Render(truncate(name, width-4))

	artist := styles.Subtitle.Render(track.Artist)
	album := styles.Dim.Render(track.Album)

	lines := []string{
		icon + " " + title,
		"  " + artist,
		"  " + album,
		"",
	}

	if total := track.Duration(); total > 0 {
		progressWidth := max(width-14, 10)
		elapsed = min(elapsed, total)
		percent := float64(elapsed) / float64(total) * 100
		lines = append(lines, fmt.Sprintf("%s %s %s",
			formatDuration(elapsed),
			styles.ProgressBar(percent, progressWidth),
			formatDuration(total)))
	} else {
		lines = append(lines, styles.Dim.Render(formatDuration(elapsed)))
	}

	lines = append(lines, "", styles.Heart(liked)+"  "+n.renderSettings(state))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (n *NowPlaying) renderSettings(state core.PlaybackState) string {
	shuffle := styles.Dim.Render("🔀 off")
	if state.Shuffle {
		shuffle = styles.Playing.Render("🔀 on")
	}

	repeat := styles.Dim.Render("🔁 " + state.Repeat.String())
	if state.Repeat != core.RepeatNone {
		repeat = styles.Playing.Render("🔁 " + state.Repeat.String())
	}

	volume := styles.Muted.Render(fmt.Sprintf("🔊 %d%%", state.VolumePercent()))
	return volume + "  " + shuffle + "  " + repeat
}
