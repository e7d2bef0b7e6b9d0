package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tessro/cadence/internal/core"
	"github.com/tessro/cadence/internal/history"
	"github.com/tessro/cadence/internal/store"
	"github.com/tessro/cadence/internal/tail"
)

var (
	tailNoEmoji   bool
	tailTimestamp bool
	tailFormat    string
	tailInterval  time.Duration
	tailRecent    int
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow playback changes in real-time",
	Long: `Watch the saved playback state and print changes as other cadence
commands make them.

Events tracked:
  - Track changes and stops
  - Pause/Resume
  - Volume, shuffle and repeat changes
  - Queue changes

Templates (--format) can use .Type .Emoji .Time .ID .Title .Artist .Album
.Playing .Volume .Shuffle .Repeat .QueueLen .Position.`,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().BoolVar(&tailNoEmoji, "no-emoji", false, "disable emoji output")
	tailCmd.Flags().BoolVarP(&tailTimestamp, "timestamp", "t", false, "show timestamps")
	tailCmd.Flags().StringVarP(&tailFormat, "format", "f", "", "custom format template")
	tailCmd.Flags().DurationVarP(&tailInterval, "interval", "i", 0, "poll interval (default from config)")
	tailCmd.Flags().IntVarP(&tailRecent, "recent", "n", 5, "recently played tracks to show first")

	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	kv, err := store.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer kv.Close()

	formatter := tail.NewFormatter(
		tail.WithEmoji(!tailNoEmoji),
		tail.WithTimestamp(tailTimestamp),
		tail.WithTemplate(tailFormat),
	)

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	showRecent(ctx, cmd, kv)

	interval := tailInterval
	if interval <= 0 {
		interval = cfg.Tail.IntervalDuration()
	}
	watcher := tail.NewWatcher(tail.StoreSource{KV: kv}, interval, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- watcher.Start(ctx)
	}()

	for event := range watcher.Events() {
		if JSONOutput() {
			if err := printJSON(out, eventJSON(event)); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintln(out, formatter.Format(event))
	}

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// showRecent prints the last few played tracks, oldest first, so the newest
// sits right above the live events.
func showRecent(ctx context.Context, cmd *cobra.Command, kv core.KV) {
	if tailRecent <= 0 || JSONOutput() {
		return
	}

	var entries []history.Entry
	if ok, err := store.LoadJSON(ctx, kv, store.KeyHistory, &entries); err != nil || !ok {
		return
	}
	if len(entries) > tailRecent {
		entries = entries[:tailRecent]
	}
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		timestamp := ""
		if tailTimestamp {
			timestamp = e.PlayedAt.Local().Format("15:04:05") + " "
		}
		emoji := ""
		if !tailNoEmoji {
			emoji = "⏪ "
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s%s\n", timestamp, emoji, e.Track.String())
	}
}

func eventJSON(e tail.Event) map[string]any {
	out := map[string]any{
		"type":      e.Type.String(),
		"timestamp": e.Timestamp,
	}
	if e.Current != nil {
		out["state"] = stateJSON(*e.Current)
	}
	if e.Queue != nil {
		out["queue_length"] = e.Queue.Len()
		out["queue_position"] = e.Queue.Cursor + 1
	}
	return out
}
