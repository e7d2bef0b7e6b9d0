package remote

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tessro/cadence/internal/core"
	cerrors "github.com/tessro/cadence/internal/errors"
)

// Catalog looks up tracks to play.
type Catalog interface {
	Search(ctx context.Context, query string, limit int) ([]core.Track, error)
	Album(ctx context.Context, id string) ([]core.Track, error)
	Song(ctx context.Context, id string) (core.Track, error)
}

// listKeys are the envelope fields track lists arrive under.
var listKeys = []string{"songs", "tracks", "data", "results", "items"}

type likeResponse struct {
	Liked *bool `json:"liked"`
}

// Toggle flips the like for trackID and returns the server's state.
func (c *Client) Toggle(ctx context.Context, trackID string) (bool, error) {
	if trackID == "" {
		return false, fmt.Errorf("%w: missing id", cerrors.ErrInvalidTrack)
	}

	var resp likeResponse
	if err := c.post(ctx, "/api/songs/"+url.PathEscape(trackID)+"/like", nil, &resp); err != nil {
		return false, err
	}
	if resp.Liked == nil {
		return false, fmt.Errorf("like response for %s has no liked field", trackID)
	}
	return *resp.Liked, nil
}

// LikedTracks returns the user's liked tracks. Entries that cannot be
// normalized are skipped and logged.
func (c *Client) LikedTracks(ctx context.Context) ([]core.Track, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/songs/liked", &raw); err != nil {
		return nil, err
	}
	return c.tracks(raw)
}

// FetchAll returns the ids of the user's liked tracks.
func (c *Client) FetchAll(ctx context.Context) (map[string]struct{}, error) {
	tracks, err := c.LikedTracks(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(tracks))
	for _, t := range tracks {
		ids[t.ID] = struct{}{}
	}
	return ids, nil
}

// Search returns tracks matching query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]core.Track, error) {
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}

	params := map[string]string{"search": query}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}

	var raw json.RawMessage
	if err := c.get(ctx, BuildURL("/api/songs", params), &raw); err != nil {
		return nil, err
	}
	tracks, err := c.tracks(raw)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks, nil
}

// Album returns an album's tracks in album order. Tracks without their own
// album name take the album's title.
func (c *Client) Album(ctx context.Context, id string) ([]core.Track, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/albums/"+url.PathEscape(id), &raw); err != nil {
		return nil, err
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if inner, ok := envelope["album"]; ok {
			raw = inner
		}
	}
	tracks, err := c.tracks(raw)
	if err != nil {
		return nil, err
	}

	var album struct {
		Title string `json:"title"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(raw, &album); err == nil {
		name := cmp.Or(album.Title, album.Name)
		for i := range tracks {
			if tracks[i].Album == "" {
				tracks[i].Album = name
			}
		}
	}
	return tracks, nil
}

// Song returns a single track.
func (c *Client) Song(ctx context.Context, id string) (core.Track, error) {
	var raw map[string]any
	if err := c.get(ctx, "/api/songs/"+url.PathEscape(id), &raw); err != nil {
		return core.Track{}, err
	}
	for _, k := range []string{"song", "track", "data"} {
		if inner, ok := raw[k].(map[string]any); ok {
			raw = inner
			break
		}
	}
	return core.NormalizeTrack(raw)
}

// tracks decodes a bare array or an object wrapping one.
func (c *Client) tracks(raw json.RawMessage) ([]core.Track, error) {
	items, err := trackItems(raw)
	if err != nil {
		return nil, err
	}
	result := core.NormalizeTracks(items)
	if result.HasErrors() {
		c.log.Warn("skipped malformed tracks", "count", len(result.Errors), "err", result.Err())
	}
	return result.Data, nil
}

func trackItems(raw json.RawMessage) ([]map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '[' {
		var items []map[string]any
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("failed to parse track list: %w", err)
		}
		return items, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse track list: %w", err)
	}
	for _, k := range listKeys {
		if inner, ok := envelope[k]; ok {
			return trackItems(inner)
		}
	}
	return nil, fmt.Errorf("track list not found in response")
}

var (
	_ core.LikeRepository = (*Client)(nil)
	_ Catalog             = (*Client)(nil)
)
