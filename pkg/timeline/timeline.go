// Package timeline builds a searchable index of location history points
// from a Google Maps Timeline export.
package timeline

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"k8s.io/klog/v2"
)

// Point is a single location fix: an absolute moment in time (UTC) and
// where the device was at that moment.
type Point struct {
	Time time.Time
	Lat  float64
	Lon  float64
}

// Index is a read-only collection of points sorted by time, supporting
// nearest-neighbor lookup by timestamp.
type Index struct {
	points []Point
}

// Load streams a Timeline.json export and returns a sorted index of its
// location points. Individual malformed segments are skipped; only an
// unreadable file is fatal.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open timeline: %w", err)
	}
	defer f.Close()

	idx := Build(NewSegmentReader(f))
	klog.Infof("loaded %d timeline points from %s", idx.Len(), path)
	return idx, nil
}

// Build drains a segment reader into a sorted index. Each timelinePath
// entry becomes one point; each visit becomes a single point at the
// midpoint of its stay, using the top candidate location.
func Build(sr *SegmentReader) *Index {
	var pts []Point

	for {
		seg, err := sr.Next()
		if errors.Is(err, errBadSegment) {
			klog.Warningf("failed to parse segment entry: %v", err)
			continue
		}
		if err != nil {
			klog.Warningf("giving up on segment stream: %v", err)
			break
		}
		if seg == nil {
			break
		}

		for _, e := range seg.TimelinePath {
			p, err := pathPoint(e)
			if err != nil {
				klog.Warningf("skipping path entry: %v", err)
				continue
			}
			pts = append(pts, p)
		}

		if seg.Visit != nil {
			p, err := visitPoint(seg)
			if err != nil {
				klog.V(1).Infof("skipping visit: %v", err)
				continue
			}
			pts = append(pts, p)
		}
	}

	return NewIndex(pts)
}

// NewIndex builds an index directly from points, sorting them ascending
// by time. The sort is stable so points sharing an instant keep their
// original order.
func NewIndex(pts []Point) *Index {
	sort.SliceStable(pts, func(i, j int) bool {
		return pts[i].Time.Before(pts[j].Time)
	})
	return &Index{points: pts}
}

func pathPoint(e PathEntry) (Point, error) {
	lat, lon, err := parseLatLng(e.Point)
	if err != nil {
		return Point{}, err
	}
	t, err := time.Parse(time.RFC3339, e.Time)
	if err != nil {
		return Point{}, fmt.Errorf("path entry time %q: %w", e.Time, err)
	}
	return Point{Time: t.UTC(), Lat: lat, Lon: lon}, nil
}

func visitPoint(seg *Segment) (Point, error) {
	lat, lon, err := parseLatLng(seg.Visit.TopCandidate.PlaceLocation.LatLng)
	if err != nil {
		return Point{}, err
	}
	start, err := time.Parse(time.RFC3339, seg.StartTime)
	if err != nil {
		return Point{}, fmt.Errorf("visit startTime %q: %w", seg.StartTime, err)
	}
	end, err := time.Parse(time.RFC3339, seg.EndTime)
	if err != nil {
		return Point{}, fmt.Errorf("visit endTime %q: %w", seg.EndTime, err)
	}
	mid := start.Add(end.Sub(start) / 2)
	return Point{Time: mid.UTC(), Lat: lat, Lon: lon}, nil
}

// Len returns the number of points in the index.
func (x *Index) Len() int {
	return len(x.points)
}

// Nearest returns the point whose time is closest to t. When two points
// are equidistant, the earlier-indexed one wins. The second return value
// is false if the index is empty.
func (x *Index) Nearest(t time.Time) (Point, bool) {
	if len(x.points) == 0 {
		return Point{}, false
	}

	// leftmost insertion point for t
	i := sort.Search(len(x.points), func(i int) bool {
		return !x.points[i].Time.Before(t)
	})

	best := -1
	if i < len(x.points) {
		best = i
	}
	if i > 0 {
		if best == -1 || absDelta(x.points[i-1].Time, t) <= absDelta(x.points[best].Time, t) {
			best = i - 1
		}
	}

	return x.points[best], true
}

func absDelta(a, b time.Time) time.Duration {
	if a.After(b) {
		return a.Sub(b)
	}
	return b.Sub(a)
}
