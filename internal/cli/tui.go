package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/tessro/cadence/internal/session"
	"github.com/tessro/cadence/internal/tui"
)

var tuiRefresh int

var tuiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Launch interactive dashboard",
	Long: `Launch the interactive terminal dashboard.

The dashboard provides a live view with:
  • Now Playing - current track, like, volume, shuffle and repeat
  • Queue - the queue around the cursor
  • Likes - your liked tracks
  • History - recently played tracks

Keyboard shortcuts:
  q, Ctrl+C    Quit
  ?            Help
  /            Search
  Space        Play/Pause
  n            Next track
  p            Previous track
  l            Like/unlike current track
  s            Toggle shuffle
  r            Cycle repeat mode
  +/-          Volume up/down
  Enter        Play selected queue or liked track
  x            Remove selected queue track
  d            Unlike selected liked track
  Tab          Switch panel`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVar(&tuiRefresh, "refresh", 0, "Refresh interval in milliseconds (default from config)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	refresh := cfg.TUI.RefreshDuration()
	if tuiRefresh > 0 {
		refresh = time.Duration(tuiRefresh) * time.Millisecond
	}

	return withSession(cmd, func(ctx context.Context, s *session.Session) error {
		return tui.Run(ctx, s, tui.Options{Refresh: refresh, Theme: cfg.TUI.Theme})
	})
}
