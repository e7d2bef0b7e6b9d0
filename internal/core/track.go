package core

import (
	"fmt"
	"time"
)

// Track represents a playable audio track.
//
// Tracks are passed and stored by value; replacing a queued track swaps the
// element rather than mutating it.
type Track struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Artist          string `json:"artist"`
	Album           string `json:"album"`
	AudioURL        string `json:"audio_url"`
	CoverURL        string `json:"cover_url,omitempty"`
	DurationSeconds int    `json:"duration_seconds"`
}

// Duration returns the track length as a time.Duration.
func (t Track) Duration() time.Duration {
	return time.Duration(t.DurationSeconds) * time.Second
}

// Playable returns true if the track has an audio locator.
func (t Track) Playable() bool {
	return t.AudioURL != ""
}

func (t Track) String() string {
	switch {
	case t.Artist != "" && t.Title != "":
		return fmt.Sprintf("%s — %s", t.Artist, t.Title)
	case t.Title != "":
		return t.Title
	default:
		return t.ID
	}
}
