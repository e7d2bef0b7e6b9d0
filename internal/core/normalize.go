package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	cerrors "github.com/tessro/cadence/internal/errors"
)

// Field aliases seen in API payloads, in priority order.
var (
	idKeys       = []string{"id", "_id", "trackId", "songId"}
	titleKeys    = []string{"title", "name"}
	artistKeys   = []string{"artistName", "artist", "singer"}
	albumKeys    = []string{"albumName", "album"}
	audioKeys    = []string{"audioUrl", "audio_url", "audio", "url", "src", "file"}
	coverKeys    = []string{"coverUrl", "cover_url", "cover", "coverImage", "picture", "image"}
	durationKeys = []string{"durationSeconds", "duration_seconds", "duration", "length"}
)

// NormalizeTrack converts a loosely shaped API object into a Track.
// Unknown fields are ignored. A missing id is rejected; a missing audio
// locator is not, since playback failures are reported by the driver.
func NormalizeTrack(raw map[string]any) (Track, error) {
	if raw == nil {
		return Track{}, fmt.Errorf("%w: empty object", cerrors.ErrInvalidTrack)
	}

	t := Track{
		ID:       firstString(raw, idKeys),
		Title:    firstString(raw, titleKeys),
		Artist:   firstString(raw, artistKeys),
		Album:    firstString(raw, albumKeys),
		AudioURL: firstString(raw, audioKeys),
		CoverURL: firstString(raw, coverKeys),
	}
	if t.ID == "" {
		return Track{}, fmt.Errorf("%w: missing id", cerrors.ErrInvalidTrack)
	}

	if secs, ok := firstNumber(raw, durationKeys); ok {
		t.DurationSeconds = clampDuration(secs)
	} else if ms, ok := firstNumber(raw, []string{"durationMs", "duration_ms"}); ok {
		t.DurationSeconds = clampDuration(ms / 1000)
	}

	return t, nil
}

// MaxDurationSeconds caps reported track lengths at one day.
const MaxDurationSeconds = 24 * 60 * 60

// clampDuration rounds secs into [0, MaxDurationSeconds]. The float is
// bounded before conversion, where out-of-range values are undefined.
func clampDuration(secs float64) int {
	switch {
	case math.IsNaN(secs) || secs <= 0:
		return 0
	case secs >= MaxDurationSeconds:
		return MaxDurationSeconds
	}
	return int(math.Round(secs))
}

// NormalizeTrackJSON decodes a JSON object and normalizes it.
func NormalizeTrackJSON(data []byte) (Track, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Track{}, fmt.Errorf("%w: %w", cerrors.ErrInvalidTrack, err)
	}
	return NormalizeTrack(raw)
}

// NormalizeTracks normalizes a batch, keeping the tracks that convert and
// collecting an error for each one that does not.
func NormalizeTracks(raws []map[string]any) *cerrors.PartialResult[[]Track] {
	result := &cerrors.PartialResult[[]Track]{Data: make([]Track, 0, len(raws))}
	for i, raw := range raws {
		t, err := NormalizeTrack(raw)
		if err != nil {
			result.AddError(fmt.Errorf("item %d: %w", i, err))
			continue
		}
		result.Data = append(result.Data, t)
	}
	return result
}

func firstString(raw map[string]any, keys []string) string {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if s := stringValue(v); s != "" {
			return s
		}
	}
	return ""
}

// stringValue flattens scalars and the nested {name}/{title}/{url} objects
// some endpoints return for artist, album and cover.
func stringValue(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case map[string]any:
		return firstString(x, []string{"name", "title", "url", "src"})
	case []any:
		if len(x) > 0 {
			return stringValue(x[0])
		}
	}
	return ""
}

func firstNumber(raw map[string]any, keys []string) (float64, bool) {
	for _, k := range keys {
		switch x := raw[k].(type) {
		case float64:
			return x, true
		case int:
			return float64(x), true
		case int64:
			return float64(x), true
		case json.Number:
			if f, err := x.Float64(); err == nil {
				return f, true
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
