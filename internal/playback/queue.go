package playback

import (
	"slices"

	"github.com/tessro/cadence/internal/core"
)

// SetQueue replaces the queue and resets the cursor to the first track.
// The current track is left alone; an empty slice empties the queue.
func (e *Engine) SetQueue(tracks []core.Track) {
	e.mu.Lock()
	e.tracks = slices.Clone(tracks)
	if len(e.tracks) == 0 {
		e.cursor = -1
	} else {
		e.cursor = 0
	}
	if e.shuffle {
		e.reshuffleLocked()
	} else {
		e.order = identity(len(e.tracks))
	}
	e.log.Debug("queue set", "tracks", len(e.tracks))
	e.commitLocked()
}

// Enqueue appends a track. The cursor only moves when the queue was empty.
// With shuffle on, the track lands at a random point after the cursor in
// the traversal order, so it is still ahead of the listener.
func (e *Engine) Enqueue(track core.Track) {
	e.mu.Lock()
	idx := len(e.tracks)
	e.tracks = append(e.tracks, track)
	if e.cursor < 0 {
		e.cursor = 0
	}

	if e.shuffle {
		pos := e.orderPosLocked() + 1
		at := pos + e.rng.IntN(len(e.order)-pos+1)
		e.order = slices.Insert(e.order, at, idx)
	} else {
		e.order = append(e.order, idx)
	}
	e.commitLocked()
}

// RemoveAt removes the track at index and reports whether anything was
// removed. The cursor keeps pointing at the same track when an earlier one
// is removed; removing the cursor's own track leaves it on the next one.
func (e *Engine) RemoveAt(index int) bool {
	e.mu.Lock()
	if index < 0 || index >= len(e.tracks) {
		e.mu.Unlock()
		return false
	}

	e.tracks = slices.Delete(e.tracks, index, index+1)
	switch {
	case len(e.tracks) == 0:
		e.cursor = -1
	case index < e.cursor:
		e.cursor--
	case e.cursor >= len(e.tracks):
		e.cursor = len(e.tracks) - 1
	}

	e.order = remapOrder(e.order, func(i int) (int, bool) {
		switch {
		case i == index:
			return 0, false
		case i > index:
			return i - 1, true
		default:
			return i, true
		}
	})
	e.commitLocked()
	return true
}

// Move relocates the track at from to position to. The cursor follows the
// track it pointed at.
func (e *Engine) Move(from, to int) bool {
	e.mu.Lock()
	n := len(e.tracks)
	if from < 0 || from >= n || to < 0 || to >= n {
		e.mu.Unlock()
		return false
	}
	if from == to {
		e.mu.Unlock()
		return true
	}

	t := e.tracks[from]
	e.tracks = slices.Delete(e.tracks, from, from+1)
	e.tracks = slices.Insert(e.tracks, to, t)

	shift := func(i int) int {
		switch {
		case i == from:
			return to
		case from < to && i > from && i <= to:
			return i - 1
		case to < from && i >= to && i < from:
			return i + 1
		default:
			return i
		}
	}
	e.cursor = shift(e.cursor)
	if e.shuffle {
		e.order = remapOrder(e.order, func(i int) (int, bool) { return shift(i), true })
	} else {
		e.order = identity(n)
	}
	e.commitLocked()
	return true
}

// Clear empties the queue. The current track keeps playing.
func (e *Engine) Clear() {
	e.SetQueue(nil)
}

// reshuffleLocked puts the cursor first and randomizes the rest.
func (e *Engine) reshuffleLocked() {
	n := len(e.tracks)
	e.order = identity(n)
	if n == 0 {
		return
	}
	cur := max(e.cursor, 0)
	e.order[0], e.order[cur] = e.order[cur], e.order[0]
	rest := e.order[1:]
	e.rng.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})
}

// orderPosLocked returns the cursor's position in the traversal order, or
// -1 when the queue is empty.
func (e *Engine) orderPosLocked() int {
	return slices.Index(e.order, e.cursor)
}

func identity(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

// remapOrder rewrites every index through fn, dropping the ones fn rejects.
func remapOrder(order []int, fn func(int) (int, bool)) []int {
	out := order[:0]
	for _, i := range order {
		if j, ok := fn(i); ok {
			out = append(out, j)
		}
	}
	return out
}
