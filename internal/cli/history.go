package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	cerrors "github.com/tessro/cadence/internal/errors"
	"github.com/tessro/cadence/internal/session"
	"github.com/tessro/cadence/internal/wizard"
)

var (
	historyLimit int
	historyClear bool
	historyYes   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently played tracks",
	Long: `Show recently played tracks, most recent first. Each track appears once,
at the time it was last started.`,
	RunE: runHistory,
}

var historyReplayCmd = &cobra.Command{
	Use:   "replay <n>",
	Short: "Play a track from history",
	Long:  `Play the n-th most recent track again. The queue is not changed.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryReplay,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "Maximum number of tracks to show")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Forget the history")
	historyCmd.Flags().BoolVarP(&historyYes, "yes", "y", false, "Do not ask for confirmation")
	historyCmd.AddCommand(historyReplayCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session.Session) error {
		if historyClear {
			return clearHistory(cmd, s)
		}

		entries := s.History.Entries()
		out := cmd.OutOrStdout()
		if historyLimit > 0 && len(entries) > historyLimit {
			entries = entries[:historyLimit]
		}

		if JSONOutput() {
			items := make([]map[string]any, len(entries))
			for i, e := range entries {
				item := trackJSON(&e.Track)
				item["played_at"] = e.PlayedAt
				items[i] = item
			}
			return printJSON(out, map[string]any{"history": items, "total": s.History.Len()})
		}

		if len(entries) == 0 {
			fmt.Fprintln(out, "Nothing played yet")
			return nil
		}

		tbl := NewTable(out, "#", "TRACK", "PLAYED")
		for i, e := range entries {
			tbl.Row(fmt.Sprint(i+1), TruncateString(trackLine(e.Track), 60), humanize.Time(e.PlayedAt))
		}
		tbl.Flush()
		return nil
	})
}

func clearHistory(cmd *cobra.Command, s *session.Session) error {
	if !historyYes && wizard.IsTerminal() && !JSONOutput() {
		confirm := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Forget %s played?", humanize.Plural(s.History.Len(), "track", "tracks"))).
			Value(&confirm).
			Run()
		if err != nil {
			return fmt.Errorf("confirmation cancelled: %w", err)
		}
		if !confirm {
			return nil
		}
	}

	s.History.Clear()
	return outputStatus(cmd, "cleared", "History cleared")
}

func runHistoryReplay(cmd *cobra.Command, args []string) error {
	n, err := parsePosition(args[0])
	if err != nil {
		return err
	}

	return withSession(cmd, func(ctx context.Context, s *session.Session) error {
		tracks := s.History.Tracks()
		if n > len(tracks) {
			return fmt.Errorf("history entry %d: %w", n, cerrors.ErrIndexOutOfRange)
		}
		s.Engine.PlayTrack(ctx, tracks[n-1])
		return outputNowPlaying(cmd, s, "history")
	})
}
