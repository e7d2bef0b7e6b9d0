package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/tessro/cadence/internal/config"
	cerrors "github.com/tessro/cadence/internal/errors"
	"github.com/tessro/cadence/internal/logging"
)

var (
	cfgFile string
	jsonOut bool
	verbose bool

	cfg       *config.Config
	logger    *log.Logger
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "cadence",
	Short: "Play, queue and like music from the command line",
	Long: `Cadence is a music player session for the terminal: a queue with shuffle and
repeat, optimistic likes synced to the music API, and a recent-play history.
State is kept between invocations.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		return initLogger()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.cadencerc)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

func initLogger() error {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	l, closer, err := logging.Open(level, cfg.Log.File, os.Stderr)
	if err != nil {
		return err
	}
	logger, logCloser = l, closer
	return nil
}

// Execute runs the root command, printing errors with a suggestion when
// one is known.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, cerrors.Format(err))
		return 1
	}
	return 0
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}
