package wizard

import (
	"os"

	"github.com/tessro/cadence/internal/core"
	"golang.org/x/term"
)

// Interactive provides interactive fallback functionality.
type Interactive struct {
	enabled    bool
	searchFunc SearchFunc
}

// NewInteractive creates a new interactive handler.
func NewInteractive() *Interactive {
	return &Interactive{
		enabled: true,
	}
}

// SetEnabled enables or disables interactive mode.
func (i *Interactive) SetEnabled(enabled bool) {
	i.enabled = enabled
}

// SetSearchFunc sets the search function for the search wizard.
func (i *Interactive) SetSearchFunc(fn SearchFunc) {
	i.searchFunc = fn
}

// IsTerminal returns true if stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// CanInteract returns true if interactive mode is available.
func (i *Interactive) CanInteract() bool {
	return i.enabled && IsTerminal()
}

// PromptSearch launches the search wizard if interactive mode is available.
// Returns the selection, or nil if cancelled or not interactive.
func (i *Interactive) PromptSearch() (*Selection, error) {
	if !i.CanInteract() || i.searchFunc == nil {
		return nil, nil
	}
	return RunSearch(i.searchFunc)
}

// PromptTrack launches the track picker if interactive mode is available.
// Returns the picked index, or -1 if cancelled or not interactive.
func (i *Interactive) PromptTrack(title string, tracks []core.Track, current int) (int, error) {
	if !i.CanInteract() || len(tracks) == 0 {
		return -1, nil
	}
	return RunPicker(title, tracks, current)
}

// NeedsTrack returns true if a track argument is required but missing.
func NeedsTrack(args []string) bool {
	return len(args) == 0
}
