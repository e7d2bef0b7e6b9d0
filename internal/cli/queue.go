package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tessro/cadence/internal/core"
	cerrors "github.com/tessro/cadence/internal/errors"
	"github.com/tessro/cadence/internal/session"
	"github.com/tessro/cadence/internal/wizard"
)

var queueLimit int

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Manage playback queue",
	Long: `View and manage the playback queue. Positions are 1-based, in queue order;
with shuffle on, playback visits them in a different order.`,
	RunE: runQueueList,
}

var queueAddCmd = &cobra.Command{
	Use:   "add <query>",
	Short: "Add a track to the queue",
	Long: `Search for a track and add it to the end of the queue.

Examples:
  cadence queue add "so what"
  cadence queue add --id 64f0c2`,
	RunE: runQueueAdd,
}

var queueRemoveCmd = &cobra.Command{
	Use:   "remove <position>",
	Short: "Remove a track from the queue",
	Long: `Remove the track at the given position. Removing the track at the cursor
moves the cursor to the track that took its place.`,
	Args: cobra.ExactArgs(1),
	RunE: runQueueRemove,
}

var queueClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the queue",
	Long:  `Remove every track from the queue. The current track keeps playing.`,
	RunE:  runQueueClear,
}

var queueMoveCmd = &cobra.Command{
	Use:   "move <from> <to>",
	Short: "Move a track in the queue",
	Long:  `Move a track from one position to another.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runQueueMove,
}

var queueJumpCmd = &cobra.Command{
	Use:     "jump [position]",
	Aliases: []string{"pick"},
	Short:   "Play the track at a queue position",
	Long: `Move the cursor to a queue position and play that track. Without a
position, opens a picker.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQueueJump,
}

var queueAddID string

func init() {
	queueCmd.Flags().IntVarP(&queueLimit, "limit", "l", 20, "Maximum number of tracks to show")
	queueAddCmd.Flags().StringVar(&queueAddID, "id", "", "Add a song by id")

	queueCmd.AddCommand(queueAddCmd)
	queueCmd.AddCommand(queueRemoveCmd)
	queueCmd.AddCommand(queueClearCmd)
	queueCmd.AddCommand(queueMoveCmd)
	queueCmd.AddCommand(queueJumpCmd)
	rootCmd.AddCommand(queueCmd)
}

func runQueueList(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session.Session) error {
		q := s.Engine.Queue()
		out := cmd.OutOrStdout()

		if q.IsEmpty() {
			if JSONOutput() {
				return printJSON(out, map[string]any{
					"queue":   []any{},
					"message": "Queue is empty",
				})
			}
			fmt.Fprintln(out, "Queue is empty")
			return nil
		}

		tracks := q.Tracks
		if queueLimit > 0 && len(tracks) > queueLimit {
			tracks = tracks[:queueLimit]
		}

		if JSONOutput() {
			items := make([]map[string]any, len(tracks))
			for i := range tracks {
				item := trackJSON(&tracks[i])
				item["position"] = i + 1
				item["current"] = i == q.Cursor
				item["liked"] = s.Favorites.IsLiked(tracks[i].ID)
				items[i] = item
			}
			return printJSON(out, map[string]any{
				"queue":   items,
				"total":   q.Len(),
				"cursor":  q.Cursor + 1,
				"shuffle": s.Engine.State().Shuffle,
			})
		}

		fmt.Fprintln(out, "Queue:")
		for i, t := range tracks {
			prefix := "  "
			if i == q.Cursor {
				prefix = "▶ "
			}
			heart := ""
			if s.Favorites.IsLiked(t.ID) {
				heart = " ♥"
			}
			fmt.Fprintf(out, "%s%d. %s%s\n", prefix, i+1, trackLine(t), heart)
		}

		if len(q.Tracks) > len(tracks) {
			fmt.Fprintf(out, "\n... and %d more tracks\n", len(q.Tracks)-len(tracks))
		}
		return nil
	})
}

func runQueueAdd(cmd *cobra.Command, args []string) error {
	if queueAddID == "" && len(args) == 0 {
		return fmt.Errorf("give a search query or --id")
	}

	return withSession(cmd, func(ctx context.Context, s *session.Session) error {
		var track core.Track
		if queueAddID != "" {
			t, err := s.Catalog.Song(ctx, queueAddID)
			if err != nil {
				return fmt.Errorf("failed to look up song: %w", err)
			}
			track = t
		} else {
			query := strings.Join(args, " ")
			results, err := s.Catalog.Search(ctx, query, 1)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			if len(results) == 0 {
				return fmt.Errorf("no tracks found for '%s'", query)
			}
			track = results[0]
		}

		s.Engine.Enqueue(track)
		q := s.Engine.Queue()

		if JSONOutput() {
			result := trackJSON(&track)
			result["status"] = "added"
			result["position"] = q.Len()
			return printJSON(cmd.OutOrStdout(), result)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added to queue at %d: %s\n", q.Len(), track.String())
		return nil
	})
}

func runQueueRemove(cmd *cobra.Command, args []string) error {
	pos, err := parsePosition(args[0])
	if err != nil {
		return err
	}

	return withSession(cmd, func(ctx context.Context, s *session.Session) error {
		if !s.Engine.RemoveAt(pos - 1) {
			return fmt.Errorf("position %d: %w", pos, cerrors.ErrIndexOutOfRange)
		}
		return outputStatus(cmd, "removed", fmt.Sprintf("Removed position %d", pos))
	})
}

func runQueueClear(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session.Session) error {
		s.Engine.Clear()
		return outputStatus(cmd, "cleared", "Queue cleared")
	})
}

func runQueueMove(cmd *cobra.Command, args []string) error {
	from, err := parsePosition(args[0])
	if err != nil {
		return err
	}
	to, err := parsePosition(args[1])
	if err != nil {
		return err
	}

	return withSession(cmd, func(ctx context.Context, s *session.Session) error {
		if !s.Engine.Move(from-1, to-1) {
			return fmt.Errorf("move %d -> %d: %w", from, to, cerrors.ErrIndexOutOfRange)
		}
		return outputStatus(cmd, "moved", fmt.Sprintf("Moved %d -> %d", from, to))
	})
}

func runQueueJump(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session.Session) error {
		var index int
		if len(args) > 0 {
			pos, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			index = pos - 1
		} else {
			q := s.Engine.Queue()
			if q.IsEmpty() {
				return cerrors.ErrEmptyQueue
			}
			interactive := wizard.NewInteractive()
			interactive.SetEnabled(!JSONOutput())
			picked, err := interactive.PromptTrack("🎵 Jump to", q.Tracks, q.Cursor)
			if err != nil {
				return err
			}
			if picked < 0 {
				return nil
			}
			index = picked
		}

		if !s.Engine.JumpTo(ctx, index) {
			return fmt.Errorf("position %d: %w", index+1, cerrors.ErrIndexOutOfRange)
		}
		return outputNowPlaying(cmd, s, "jump")
	})
}

func parsePosition(s string) (int, error) {
	pos, err := strconv.Atoi(s)
	if err != nil || pos < 1 {
		return 0, fmt.Errorf("invalid position %q: %w", s, cerrors.ErrIndexOutOfRange)
	}
	return pos, nil
}
