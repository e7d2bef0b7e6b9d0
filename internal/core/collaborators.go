package core

import "context"

// AudioDriver produces audible playback for a track. The engine only
// records intent; decoding and output live behind this interface.
type AudioDriver interface {
	Play(ctx context.Context, t Track) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Stop(ctx context.Context) error
	SetVolume(ctx context.Context, volume float64) error
}

// LikeRepository is the server-authoritative store of liked tracks.
type LikeRepository interface {
	// Toggle flips the like on the server and reports the resulting state.
	Toggle(ctx context.Context, trackID string) (liked bool, err error)
	// FetchAll returns every liked track id.
	FetchAll(ctx context.Context) (map[string]struct{}, error)
}

// KV is a scoped key-value store used for best-effort local persistence.
// Get returns (nil, nil) for a missing key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
