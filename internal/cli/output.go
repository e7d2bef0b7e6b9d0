package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/tessro/cadence/internal/core"
)

// Table provides a simple table formatter.
type Table struct {
	w       *tabwriter.Writer
	headers []string
}

// NewTable creates a table writing to out.
func NewTable(out io.Writer, headers ...string) *Table {
	t := &Table{
		w:       tabwriter.NewWriter(out, 0, 0, 2, ' ', 0),
		headers: headers,
	}
	if len(headers) > 0 {
		_, _ = t.w.Write([]byte(strings.Join(headers, "\t") + "\n"))
	}
	return t
}

// Row adds a row to the table.
func (t *Table) Row(values ...string) {
	_, _ = t.w.Write([]byte(strings.Join(values, "\t") + "\n"))
}

// Flush writes the table output.
func (t *Table) Flush() {
	_ = t.w.Flush()
}

// printJSON writes v as one JSON document.
func printJSON(out io.Writer, v any) error {
	return json.NewEncoder(out).Encode(v)
}

// StatusIcon returns an icon for the given boolean status.
func StatusIcon(active bool) string {
	if active {
		return "●"
	}
	return "○"
}

// TruncateString truncates a string to maxLen runes, adding "..." if truncated.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// FormatDuration formats a duration in seconds as mm:ss or hh:mm:ss.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// trackJSON is the JSON shape of a track in command output.
func trackJSON(t *core.Track) map[string]any {
	if t == nil {
		return nil
	}
	out := map[string]any{
		"id":     t.ID,
		"title":  t.Title,
		"artist": t.Artist,
		"album":  t.Album,
	}
	if t.DurationSeconds > 0 {
		out["duration"] = FormatDuration(t.DurationSeconds)
	}
	return out
}

// stateJSON is the JSON shape of the playback state in command output.
func stateJSON(st core.PlaybackState) map[string]any {
	return map[string]any{
		"track":      trackJSON(st.Track),
		"is_playing": st.IsPlaying,
		"volume":     st.VolumePercent(),
		"shuffle":    st.Shuffle,
		"repeat":     st.Repeat.String(),
	}
}

// trackLine renders a track for list output.
func trackLine(t core.Track) string {
	line := t.String()
	if t.DurationSeconds > 0 {
		line += " (" + FormatDuration(t.DurationSeconds) + ")"
	}
	return line
}
