package core

// QueueSnapshot is a point-in-time copy of the playback queue.
type QueueSnapshot struct {
	Tracks []Track `json:"tracks"`
	Cursor int     `json:"cursor"`
}

// Current returns the track under the cursor, or nil if the queue is empty.
func (q *QueueSnapshot) Current() *Track {
	if q == nil || len(q.Tracks) == 0 || q.Cursor < 0 || q.Cursor >= len(q.Tracks) {
		return nil
	}
	return &q.Tracks[q.Cursor]
}

// Upcoming returns tracks after the cursor in index order.
func (q *QueueSnapshot) Upcoming() []Track {
	if q == nil || len(q.Tracks) == 0 || q.Cursor < 0 || q.Cursor >= len(q.Tracks)-1 {
		return nil
	}
	return q.Tracks[q.Cursor+1:]
}

// Len returns the total number of tracks in the queue.
func (q *QueueSnapshot) Len() int {
	if q == nil {
		return 0
	}
	return len(q.Tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q *QueueSnapshot) IsEmpty() bool {
	return q.Len() == 0
}
