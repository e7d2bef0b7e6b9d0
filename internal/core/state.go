package core

// PlaybackState represents the current playback state.
type PlaybackState struct {
	Track     *Track     `json:"track"`
	IsPlaying bool       `json:"is_playing"`
	Shuffle   bool       `json:"shuffle"`
	Repeat    RepeatMode `json:"repeat"`
	Volume    float64    `json:"volume"`
}

// HasTrack returns true if there is an active track.
func (s *PlaybackState) HasTrack() bool {
	return s != nil && s.Track != nil
}

// VolumePercent returns the volume scaled to 0-100.
func (s *PlaybackState) VolumePercent() int {
	if s == nil {
		return 0
	}
	return int(s.Volume*100 + 0.5)
}

// Clone returns a copy that shares nothing with s.
func (s PlaybackState) Clone() PlaybackState {
	if s.Track != nil {
		t := *s.Track
		s.Track = &t
	}
	return s
}
