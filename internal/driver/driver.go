// Package driver holds AudioDriver implementations. Audio decoding and
// output are outside this module; the drivers here track intent so the
// rest of the session can be exercised without a sound device.
package driver

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tessro/cadence/internal/core"
	"github.com/tessro/cadence/internal/logging"
)

// Action names recorded by Null.
const (
	ActionPlay   = "play"
	ActionPause  = "pause"
	ActionResume = "resume"
	ActionStop   = "stop"
	ActionVolume = "volume"
)

// Call is one recorded driver invocation.
type Call struct {
	Action string
	Track  *core.Track
	Volume float64
}

func (c Call) String() string {
	switch {
	case c.Track != nil:
		return fmt.Sprintf("%s %s", c.Action, c.Track.ID)
	case c.Action == ActionVolume:
		return fmt.Sprintf("%s %.2f", c.Action, c.Volume)
	default:
		return c.Action
	}
}

// Null implements core.AudioDriver by logging and recording calls.
type Null struct {
	log *log.Logger

	mu    sync.Mutex
	calls []Call
	fail  map[string]error
}

// NewNull creates a Null driver.
func NewNull(logger *log.Logger) *Null {
	return &Null{
		log:  logging.With(logger, "component", "driver"),
		fail: make(map[string]error),
	}
}

// FailOn makes every later call of action return err; a nil err clears it.
func (d *Null) FailOn(action string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.fail, action)
		return
	}
	d.fail[action] = err
}

// Calls returns a copy of the recorded calls.
func (d *Null) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Call, len(d.calls))
	copy(out, d.calls)
	return out
}

// Reset forgets recorded calls.
func (d *Null) Reset() {
	d.mu.Lock()
	d.calls = nil
	d.mu.Unlock()
}

func (d *Null) record(ctx context.Context, c Call) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	d.calls = append(d.calls, c)
	err := d.fail[c.Action]
	d.mu.Unlock()

	if err != nil {
		d.log.Warn("driver call failed", "call", c.String(), "err", err)
		return err
	}
	d.log.Debug("driver call", "call", c.String())
	return nil
}

// Play records a play of t. A track without an audio locator fails the
// way a real driver would.
func (d *Null) Play(ctx context.Context, t core.Track) error {
	if err := d.record(ctx, Call{Action: ActionPlay, Track: &t}); err != nil {
		return err
	}
	if !t.Playable() {
		return fmt.Errorf("track %s has no audio url", t.ID)
	}
	return nil
}

// Pause records a pause.
func (d *Null) Pause(ctx context.Context) error {
	return d.record(ctx, Call{Action: ActionPause})
}

// Resume records a resume.
func (d *Null) Resume(ctx context.Context) error {
	return d.record(ctx, Call{Action: ActionResume})
}

// Stop records a stop.
func (d *Null) Stop(ctx context.Context) error {
	return d.record(ctx, Call{Action: ActionStop})
}

// SetVolume records a volume change.
func (d *Null) SetVolume(ctx context.Context, volume float64) error {
	return d.record(ctx, Call{Action: ActionVolume, Volume: volume})
}

var _ core.AudioDriver = (*Null)(nil)
