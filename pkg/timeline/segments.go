package timeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// errBadSegment marks a single malformed segment; the stream is still
// usable past it.
var errBadSegment = errors.New("malformed segment")

// Segment is one semanticSegments element from a Timeline export: either
// a movement path or a stationary visit.
type Segment struct {
	StartTime    string      `json:"startTime"`
	EndTime      string      `json:"endTime"`
	TimelinePath []PathEntry `json:"timelinePath"`
	Visit        *Visit      `json:"visit"`
}

// PathEntry is one coordinate recorded along a movement path.
type PathEntry struct {
	Point string `json:"point"`
	Time  string `json:"time"`
}

// Visit describes a stationary stay at a place.
type Visit struct {
	TopCandidate struct {
		PlaceLocation struct {
			LatLng string `json:"latLng"`
		} `json:"placeLocation"`
	} `json:"topCandidate"`
}

// SegmentReader streams segments out of a Timeline.json document one at
// a time, so the export (often tens of MB) is never held in memory whole.
type SegmentReader struct {
	dec     *json.Decoder
	started bool
}

// NewSegmentReader returns a reader over the semanticSegments array of
// the document in r.
func NewSegmentReader(r io.Reader) *SegmentReader {
	return &SegmentReader{dec: json.NewDecoder(r)}
}

// Next returns the next segment in document order, or (nil, nil) when
// the stream is exhausted. A malformed element yields an error wrapping
// errBadSegment and the reader stays usable.
func (sr *SegmentReader) Next() (*Segment, error) {
	if !sr.started {
		if err := sr.seekSegments(); err != nil {
			return nil, err
		}
		sr.started = true
	}

	if !sr.dec.More() {
		return nil, nil
	}

	var seg Segment
	if err := sr.dec.Decode(&seg); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			// decoder is positioned past the bad value; keep going
			return nil, fmt.Errorf("%w: %v", errBadSegment, err)
		}
		return nil, fmt.Errorf("decoding segment element: %w", err)
	}
	return &seg, nil
}

// seekSegments advances the decoder to just inside the semanticSegments
// array, skipping any other top-level fields.
func (sr *SegmentReader) seekSegments() error {
	tok, err := sr.dec.Token()
	if err != nil {
		return fmt.Errorf("decoding opening token: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("unexpected opening token: %v", tok)
	}

	for {
		tok, err := sr.dec.Token()
		if err != nil {
			return fmt.Errorf("decoding field name: %w", err)
		}
		if delim, ok := tok.(json.Delim); ok && delim == '}' {
			return errors.New("no semanticSegments array in document")
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token: %v", tok)
		}

		if key == "semanticSegments" {
			tok, err := sr.dec.Token()
			if err != nil {
				return fmt.Errorf("decoding array open: %w", err)
			}
			if delim, ok := tok.(json.Delim); !ok || delim != '[' {
				return fmt.Errorf("semanticSegments is not an array: %v", tok)
			}
			return nil
		}

		// not our field; skip its whole value
		var skip json.RawMessage
		if err := sr.dec.Decode(&skip); err != nil {
			return fmt.Errorf("skipping field %q: %w", key, err)
		}
	}
}

// parseLatLng converts a coordinate string from a Timeline export into
// decimal degrees. Android exports write `12.3456789°, -123.4567890°`;
// iOS exports write `geo:12.345678,-123.456789`.
func parseLatLng(s string) (lat, lon float64, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, errors.New("empty coordinate")
	}

	s = strings.TrimPrefix(s, "geo:")
	s = strings.ReplaceAll(s, "°", "")

	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("coordinate %q: want 2 parts, got %d", s, len(parts))
	}

	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("latitude in %q: %w", s, err)
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("longitude in %q: %w", s, err)
	}

	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("coordinate %q out of range", s)
	}
	return lat, lon, nil
}
