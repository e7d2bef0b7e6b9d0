package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tessro/cadence/internal/core"
	"github.com/tessro/cadence/internal/remote"
	"github.com/tessro/cadence/internal/session"
	"github.com/tessro/cadence/internal/wizard"
)

var (
	playID    string
	playAlbum string
	playQueue bool
	playLimit int
)

var playCmd = &cobra.Command{
	Use:   "play [query]",
	Short: "Start or resume playback",
	Long: `Start playback of a song or an album.
Without arguments, resumes the current track, or opens the search wizard
when there is nothing to resume.

A single song plays without touching the queue. An album, or a search with
--queue, replaces the queue and starts at its first track.

Examples:
  cadence play                      # Resume playback
  cadence play "blue in green"      # Search and play the best match
  cadence play --queue "miles"      # Queue every match and start playing
  cadence play --id 64f0c2          # Play a song by id
  cadence play --album kind-of-blue # Play an album`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playID, "id", "", "Play a song by id")
	playCmd.Flags().StringVar(&playAlbum, "album", "", "Play an album by id")
	playCmd.Flags().BoolVar(&playQueue, "queue", false, "Queue all search results")
	playCmd.Flags().IntVarP(&playLimit, "limit", "l", 20, "Maximum search results to queue")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session.Session) error {
		switch {
		case playID != "":
			track, err := s.Catalog.Song(ctx, playID)
			if err != nil {
				return fmt.Errorf("failed to look up song: %w", err)
			}
			s.Engine.PlayTrack(ctx, track)
			return outputNowPlaying(cmd, s, "track")

		case playAlbum != "":
			tracks, err := s.Catalog.Album(ctx, playAlbum)
			if err != nil {
				return fmt.Errorf("failed to load album: %w", err)
			}
			return playQueueFrom(ctx, cmd, s, tracks, 0, "album")
		}

		query := strings.Join(args, " ")
		if query == "" {
			if s.Engine.Resume(ctx) {
				return outputNowPlaying(cmd, s, "resume")
			}
			return playFromWizard(ctx, cmd, s)
		}

		limit := 1
		if playQueue {
			limit = playLimit
		}
		results, err := s.Catalog.Search(ctx, query, limit)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if len(results) == 0 {
			return fmt.Errorf("no results found for '%s'", query)
		}
		if playQueue {
			return playQueueFrom(ctx, cmd, s, results, 0, "search")
		}
		s.Engine.PlayTrack(ctx, results[0])
		return outputNowPlaying(cmd, s, "track")
	})
}

// playFromWizard asks for a song or album interactively.
func playFromWizard(ctx context.Context, cmd *cobra.Command, s *session.Session) error {
	interactive := wizard.NewInteractive()
	interactive.SetEnabled(!JSONOutput())
	interactive.SetSearchFunc(catalogSearch(ctx, s.Catalog))
	if !interactive.CanInteract() {
		return fmt.Errorf("nothing to resume; give a search query")
	}

	sel, err := interactive.PromptSearch()
	if err != nil {
		return err
	}
	if sel == nil {
		return nil
	}
	if sel.Kind == wizard.SearchAlbum {
		return playQueueFrom(ctx, cmd, s, sel.Tracks, sel.Start, "album")
	}
	s.Engine.PlayTrack(ctx, sel.Tracks[0])
	return outputNowPlaying(cmd, s, "track")
}

// catalogSearch adapts a catalog to the search wizard.
func catalogSearch(ctx context.Context, c remote.Catalog) wizard.SearchFunc {
	return func(query string, kind wizard.SearchKind) ([]core.Track, error) {
		if kind == wizard.SearchAlbum {
			return c.Album(ctx, query)
		}
		return c.Search(ctx, query, 20)
	}
}

func playQueueFrom(ctx context.Context, cmd *cobra.Command, s *session.Session, tracks []core.Track, start int, kind string) error {
	if len(tracks) == 0 {
		return fmt.Errorf("nothing to play")
	}
	s.Engine.SetQueue(tracks)
	if !s.Engine.JumpTo(ctx, start) {
		return fmt.Errorf("nothing to play")
	}
	return outputNowPlaying(cmd, s, kind)
}

func outputNowPlaying(cmd *cobra.Command, s *session.Session, kind string) error {
	st := s.Engine.State()
	q := s.Engine.Queue()
	out := cmd.OutOrStdout()

	if JSONOutput() {
		result := stateJSON(st)
		result["status"] = "playing"
		result["type"] = kind
		result["queue_length"] = q.Len()
		return printJSON(out, result)
	}

	if st.Track == nil {
		fmt.Fprintln(out, "Nothing playing")
		return nil
	}
	fmt.Fprintf(out, "▶ Playing %s", st.Track.String())
	if c := q.Current(); q.Len() > 1 && c != nil && c.ID == st.Track.ID {
		fmt.Fprintf(out, " [%d/%d]", q.Cursor+1, q.Len())
	}
	fmt.Fprintln(out)
	return nil
}
