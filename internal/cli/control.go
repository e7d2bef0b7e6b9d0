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
)

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause playback",
	Long:  `Pause the current playback.`,
	RunE:  runPause,
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume playback",
	Long:  `Resume paused playback.`,
	RunE:  runResume,
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Skip to next track",
	Long: `Skip to the next track in the queue. At the end of the queue this wraps
when repeat is "all" and otherwise does nothing.`,
	RunE: runNext,
}

var prevCmd = &cobra.Command{
	Use:   "prev",
	Short: "Go to previous track",
	Long:  `Go back to the previous track in the queue.`,
	RunE:  runPrev,
}

var endedCmd = &cobra.Command{
	Use:   "ended",
	Short: "Report that the current track finished",
	Long: `Report that the current track played to the end. Repeat "one" replays it;
otherwise playback advances, and stops on the last track unless repeat is "all".

Audio players call this when a track completes.`,
	RunE: runEnded,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop playback",
	Long:  `Stop playback and clear the current track. The queue is kept.`,
	RunE:  runStop,
}

var (
	volumeUp   bool
	volumeDown bool
)

var volumeCmd = &cobra.Command{
	Use:   "volume [level]",
	Short: "Set or adjust volume",
	Long: `Set the playback volume (0-100) or adjust it up/down.

Examples:
  cadence volume 50      # Set volume to 50%
  cadence volume --up    # Increase volume by 10%
  cadence volume --down  # Decrease volume by 10%`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVolume,
}

var shuffleCmd = &cobra.Command{
	Use:   "shuffle [on|off]",
	Short: "Show or set shuffle",
	Long:  `Turn shuffle on or off. Without an argument, toggles it.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShuffle,
}

var repeatCmd = &cobra.Command{
	Use:   "repeat [none|one|all]",
	Short: "Show or set repeat mode",
	Long:  `Set the repeat mode. Without an argument, cycles none → all → one → none.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRepeat,
}

func init() {
	volumeCmd.Flags().BoolVar(&volumeUp, "up", false, "Increase volume by 10%")
	volumeCmd.Flags().BoolVar(&volumeDown, "down", false, "Decrease volume by 10%")
	volumeCmd.MarkFlagsMutuallyExclusive("up", "down")

	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(prevCmd)
	rootCmd.AddCommand(endedCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(volumeCmd)
	rootCmd.AddCommand(shuffleCmd)
	rootCmd.AddCommand(repeatCmd)
}

func runPause(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session.Session) error {
		s.Engine.Pause(ctx)
		return outputStatus(cmd, "paused", "⏸ Paused")
	})
}

func runResume(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session.Session) error {
		if !s.Engine.Resume(ctx) {
			return fmt.Errorf("nothing to resume: %w", cerrors.ErrEmptyQueue)
		}
		return outputStatus(cmd, "playing", "▶ Resumed")
	})
}

func runNext(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session.Session) error {
		if !s.Engine.Advance(ctx) {
			return outputStatus(cmd, "end_of_queue", "At the end of the queue")
		}
		return outputNowPlaying(cmd, s, "next")
	})
}

func runPrev(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session.Session) error {
		if !s.Engine.Retreat(ctx) {
			return outputStatus(cmd, "start_of_queue", "At the start of the queue")
		}
		return outputNowPlaying(cmd, s, "previous")
	})
}

func runEnded(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session.Session) error {
		if !s.Engine.TrackEnded(ctx) {
			return outputStatus(cmd, "stopped", "⏹ Reached the end of the queue")
		}
		return outputNowPlaying(cmd, s, "next")
	})
}

func runStop(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session.Session) error {
		s.Engine.Stop(ctx)
		return outputStatus(cmd, "stopped", "⏹ Stopped")
	})
}

func runVolume(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session.Session) error {
		st := s.Engine.State()
		current := st.VolumePercent()

		target := current
		switch {
		case len(args) > 0:
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid volume level: %s", args[0])
			}
			target = v
		case volumeUp:
			target = min(current+10, 100)
		case volumeDown:
			target = max(current-10, 0)
		default:
			if JSONOutput() {
				return printJSON(cmd.OutOrStdout(), map[string]any{"volume": current})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "🔊 Volume: %d%%\n", current)
			return nil
		}

		if target < 0 || target > 100 {
			return fmt.Errorf("volume %d: %w", target, cerrors.ErrInvalidVolume)
		}
		if err := s.Engine.SetVolume(ctx, float64(target)/100); err != nil {
			return err
		}

		if JSONOutput() {
			return printJSON(cmd.OutOrStdout(), map[string]any{"volume": target, "previous": current})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🔊 Volume: %d%% (was %d%%)\n", target, current)
		return nil
	})
}

func runShuffle(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session.Session) error {
		enabled := !s.Engine.State().Shuffle
		if len(args) > 0 {
			v, err := parseOnOff(args[0])
			if err != nil {
				return err
			}
			enabled = v
		}
		s.Engine.SetShuffle(enabled)

		if JSONOutput() {
			return printJSON(cmd.OutOrStdout(), map[string]any{"shuffle": enabled})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🔀 Shuffle: %s\n", onOff(enabled))
		return nil
	})
}

func runRepeat(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session.Session) error {
		var mode core.RepeatMode
		if len(args) > 0 {
			if err := s.Engine.SetRepeatModeString(args[0]); err != nil {
				return err
			}
			mode = s.Engine.State().Repeat
		} else {
			mode = s.Engine.CycleRepeatMode()
		}

		if JSONOutput() {
			return printJSON(cmd.OutOrStdout(), map[string]any{"repeat": mode.String()})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🔁 Repeat: %s\n", mode)
		return nil
	})
}

func outputStatus(cmd *cobra.Command, status, message string) error {
	if JSONOutput() {
		return printJSON(cmd.OutOrStdout(), map[string]string{"status": status})
	}
	fmt.Fprintln(cmd.OutOrStdout(), message)
	return nil
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
