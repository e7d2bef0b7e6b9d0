package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tessro/cadence/internal/core"
	cerrors "github.com/tessro/cadence/internal/errors"
	"github.com/tessro/cadence/internal/session"
)

var likeCmd = &cobra.Command{
	Use:   "like [track-id]",
	Short: "Like or unlike a track",
	Long: `Toggle the like on a track, the current one by default. The change shows
immediately and is saved to the music API in the background; if the API
call fails or times out, the like is reverted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLike,
}

var (
	likesRefresh bool
	likesDetails bool
)

var likesCmd = &cobra.Command{
	Use:   "likes",
	Short: "List liked tracks",
	Long: `List the liked track ids known locally. With --refresh the list is first
replaced with the one on the music API.`,
	RunE: runLikes,
}

func init() {
	likesCmd.Flags().BoolVarP(&likesRefresh, "refresh", "r", false, "Fetch likes from the API first")
	likesCmd.Flags().BoolVarP(&likesDetails, "details", "d", false, "Show titles (fetches liked tracks)")
	rootCmd.AddCommand(likeCmd)
	rootCmd.AddCommand(likesCmd)
}

func runLike(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session.Session) error {
		id := ""
		label := ""
		if len(args) > 0 {
			id = args[0]
			label = id
		} else if st := s.Engine.State(); st.Track != nil {
			id = st.Track.ID
			label = st.Track.String()
		}
		if id == "" {
			return fmt.Errorf("no current track: %w", cerrors.ErrInvalidTrack)
		}

		_, done := s.Favorites.Toggle(ctx, id)
		if err := <-done; err != nil {
			return cerrors.WithSuggestion(
				fmt.Errorf("could not save like for %s, reverted: %w", label, err),
				cerrors.GetSuggestion(err))
		}

		// The server's answer wins over the optimistic flip.
		liked := s.Favorites.IsLiked(id)
		if JSONOutput() {
			return printJSON(cmd.OutOrStdout(), map[string]any{"id": id, "liked": liked})
		}
		if liked {
			fmt.Fprintf(cmd.OutOrStdout(), "♥ Liked %s\n", label)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "♡ Unliked %s\n", label)
		}
		return nil
	})
}

func runLikes(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session.Session) error {
		if likesRefresh {
			if err := s.Favorites.Refresh(ctx); err != nil {
				return err
			}
		}

		ids := s.Favorites.IDs()
		titles := map[string]core.Track{}
		if likesDetails && s.Client != nil {
			tracks, err := s.Client.LikedTracks(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch liked tracks: %w", err)
			}
			for _, t := range tracks {
				titles[t.ID] = t
			}
		}

		out := cmd.OutOrStdout()
		if JSONOutput() {
			items := make([]map[string]any, len(ids))
			for i, id := range ids {
				items[i] = map[string]any{"id": id}
				if t, ok := titles[id]; ok {
					items[i] = trackJSON(&t)
				}
			}
			return printJSON(out, map[string]any{"likes": items, "total": len(ids)})
		}

		if len(ids) == 0 {
			fmt.Fprintln(out, "No liked tracks")
			return nil
		}
		for _, id := range ids {
			if t, ok := titles[id]; ok {
				fmt.Fprintf(out, "♥ %s  %s\n", id, trackLine(t))
				continue
			}
			fmt.Fprintf(out, "♥ %s\n", id)
		}
		return nil
	})
}
