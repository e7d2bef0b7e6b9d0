package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	cerrors "github.com/tessro/cadence/internal/errors"
	"github.com/tessro/cadence/internal/favorites"
	"github.com/tessro/cadence/internal/session"
)

// disposeGrace is added to the like timeout when waiting for a session to
// settle on exit.
const disposeGrace = 2 * time.Second

// sessionDeps lets tests substitute collaborators.
var sessionDeps = func() session.Deps {
	return session.Deps{Logger: logger}
}

// withSession opens a session for one command, runs fn, and disposes the
// session. Driver failures and like reverts that happened along the way
// are reported on stderr.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session.Session) error) error {
	ctx := cmd.Context()
	s, err := session.Open(ctx, cfg, sessionDeps())
	if err != nil {
		return err
	}

	runErr := fn(ctx, s)

	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Favorites.TimeoutDuration()+disposeGrace)
	defer cancel()
	disposeErr := s.Dispose(dctx)

	reportProblems(cmd.ErrOrStderr(), s)
	return errors.Join(runErr, disposeErr)
}

// reportProblems prints pending driver errors and refresh notices without
// blocking. Toggle failures are reported by the like command, which waits
// for them.
func reportProblems(w io.Writer, s *session.Session) {
errs:
	for {
		select {
		case err := <-s.Engine.Errors():
			fmt.Fprintln(w, "warning:", cerrors.Format(err))
		default:
			break errs
		}
	}

	for {
		select {
		case n, ok := <-s.Favorites.Notices():
			if !ok {
				return
			}
			if n.Op == favorites.OpRefresh {
				fmt.Fprintln(w, "warning:", n.String())
			}
		default:
			return
		}
	}
}
