package playback

import (
	"context"

	"github.com/tessro/cadence/internal/core"
	"github.com/tessro/cadence/internal/history"
)

// PlayTrack makes track current and marks playback as playing. The queue
// and its cursor are untouched. Playback failures surface on Errors; the
// state still records the intent.
func (e *Engine) PlayTrack(ctx context.Context, track core.Track) {
	e.mu.Lock()
	e.startLocked(track)
	e.commitLocked()

	e.afterStart(ctx, track)
}

// JumpTo moves the cursor to index and plays that track.
func (e *Engine) JumpTo(ctx context.Context, index int) bool {
	e.mu.Lock()
	if index < 0 || index >= len(e.tracks) {
		e.mu.Unlock()
		return false
	}
	e.cursor = index
	track := e.tracks[index]
	e.startLocked(track)
	e.commitLocked()

	e.afterStart(ctx, track)
	return true
}

// Advance moves the cursor to the next track in traversal order and plays
// it. At the end of the queue it wraps when the repeat mode is all;
// otherwise it does nothing and returns false, leaving the current track
// in place so it can be replayed.
func (e *Engine) Advance(ctx context.Context) bool {
	return e.step(ctx, 1)
}

// Retreat is Advance in the other direction, wrapping to the last track
// when the repeat mode is all.
func (e *Engine) Retreat(ctx context.Context) bool {
	return e.step(ctx, -1)
}

func (e *Engine) step(ctx context.Context, delta int) bool {
	e.mu.Lock()
	n := len(e.order)
	if n == 0 {
		e.mu.Unlock()
		return false
	}

	pos := e.orderPosLocked() + delta
	if pos < 0 || pos >= n {
		if e.repeat != core.RepeatAll {
			e.mu.Unlock()
			return false
		}
		pos = (pos + n) % n
	}

	e.cursor = e.order[pos]
	track := e.tracks[e.cursor]
	e.startLocked(track)
	e.commitLocked()

	e.afterStart(ctx, track)
	return true
}

// TrackEnded handles natural completion of the current track. Repeat one
// replays it without moving the cursor; otherwise playback advances, and
// stops (keeping the track) when there is nothing to advance to. It
// reports whether something is playing afterwards.
func (e *Engine) TrackEnded(ctx context.Context) bool {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return false
	}

	if e.repeat == core.RepeatOne {
		track := *e.current
		e.startLocked(track)
		e.commitLocked()
		e.afterStart(ctx, track)
		return true
	}
	e.mu.Unlock()

	if e.Advance(ctx) {
		return true
	}

	e.mu.Lock()
	wasPlaying := e.playing
	e.playing = false
	e.commitLocked()

	if wasPlaying {
		e.drive("stop", func(d core.AudioDriver) error { return d.Stop(ctx) })
	}
	return false
}

// Pause stops playback, keeping the current track.
func (e *Engine) Pause(ctx context.Context) {
	e.mu.Lock()
	if !e.playing {
		e.mu.Unlock()
		return
	}
	e.playing = false
	e.commitLocked()

	e.drive("pause", func(d core.AudioDriver) error { return d.Pause(ctx) })
}

// Resume continues the current track. With no current track it does
// nothing and returns false.
func (e *Engine) Resume(ctx context.Context) bool {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return false
	}
	if e.playing {
		e.mu.Unlock()
		return true
	}
	e.playing = true
	e.commitLocked()

	e.drive("resume", func(d core.AudioDriver) error { return d.Resume(ctx) })
	return true
}

// TogglePlay pauses or resumes and returns whether playback is now on.
func (e *Engine) TogglePlay(ctx context.Context) bool {
	if e.State().IsPlaying {
		e.Pause(ctx)
		return false
	}
	return e.Resume(ctx)
}

// Stop ends playback and forgets the current track.
func (e *Engine) Stop(ctx context.Context) {
	e.mu.Lock()
	hadTrack := e.current != nil
	e.current = nil
	e.playing = false
	e.commitLocked()

	if hadTrack {
		e.drive("stop", func(d core.AudioDriver) error { return d.Stop(ctx) })
	}
}

// startLocked records a track as current and playing.
func (e *Engine) startLocked(track core.Track) {
	e.current = &track
	e.playing = true
	e.log.Debug("play", "track", track.ID, "title", track.Title)
}

// afterStart runs the side effects of starting a track outside the lock.
func (e *Engine) afterStart(ctx context.Context, track core.Track) {
	if e.history != nil {
		e.history.Record(track)
	}
	e.drive("play", func(d core.AudioDriver) error { return d.Play(ctx, track) })
}

// History returns the recorder the engine writes to, if any.
func (e *Engine) History() *history.Recorder {
	return e.history
}
