package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/tessro/cadence/internal/session"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current playback status",
	Long:  `Shows the current track, queue position, volume, shuffle and repeat.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session.Session) error {
		st := s.Engine.State()
		q := s.Engine.Queue()
		out := cmd.OutOrStdout()

		if JSONOutput() {
			result := stateJSON(st)
			result["queue_length"] = q.Len()
			result["queue_position"] = q.Cursor + 1
			result["phase"] = s.Engine.Phase().String()
			result["history_length"] = s.History.Len()
			result["liked_count"] = s.Favorites.Len()
			if st.Track != nil {
				result["liked"] = s.Favorites.IsLiked(st.Track.ID)
			}
			return printJSON(out, result)
		}

		if st.Track == nil {
			fmt.Fprintln(out, "No active playback")
		} else {
			playIcon := "▶"
			if !st.IsPlaying {
				playIcon = "⏸"
			}
			heart := "♡"
			if s.Favorites.IsLiked(st.Track.ID) {
				heart = "♥"
			}

			fmt.Fprintf(out, "  %s %s %s\n", playIcon, st.Track.Title, heart)
			var sub []string
			if st.Track.Artist != "" {
				sub = append(sub, st.Track.Artist)
			}
			if st.Track.Album != "" {
				sub = append(sub, st.Track.Album)
			}
			if st.Track.DurationSeconds > 0 {
				sub = append(sub, FormatDuration(st.Track.DurationSeconds))
			}
			if len(sub) > 0 {
				fmt.Fprintf(out, "    %s\n", strings.Join(sub, " — "))
			}
		}

		queueInfo := "empty"
		if !q.IsEmpty() {
			queueInfo = fmt.Sprintf("%d of %s", q.Cursor+1, humanize.Plural(q.Len(), "track", "tracks"))
		}
		fmt.Fprintf(out, "    🔊 %d%%  %s shuffle  🔁 %s  📜 %s\n",
			st.VolumePercent(), StatusIcon(st.Shuffle), st.Repeat, queueInfo)

		if Verbose() {
			fmt.Fprintf(out, "    session %s, %s liked, %d in history\n",
				s.ID, humanize.Comma(int64(s.Favorites.Len())), s.History.Len())
		}
		return nil
	})
}
