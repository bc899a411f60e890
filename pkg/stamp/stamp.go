// Package stamp rewrites photo EXIF metadata so that timestamps are
// expressed in the local timezone of wherever the photo was taken, with
// GPS coordinates filled in from a location history timeline.
package stamp

import (
	"time"

	"github.com/edward-io/timeline-stamp/pkg/timeline"
)

var exifDate = "2006:01:02 15:04:05"

// Config holds configuration for a stamping run.
type Config struct {
	Timeline     string
	Photos       string
	CameraTZ     string
	MaxGap       time.Duration
	Apply        bool
	Backup       bool
	OverwriteGPS bool
}

// Photo is the slice of a photo's metadata the reconciler cares about:
// its naive capture timestamp and whether GPS tags are already present.
type Photo struct {
	Path             string
	DateTimeOriginal string
	HasGPS           bool
}

// Result is what gets written back to a photo: the capture moment
// re-expressed as local wall-clock time at the matched location.
type Result struct {
	LocalTime string // local calendar time, EXIF format
	Offset    string // signed UTC offset, ±HH:MM
	TZName    string
	Lat       float64
	Lon       float64
}

// Outcome says what happened to a single photo.
type Outcome int

const (
	// Updated means the photo was (or in preview mode, would be) rewritten.
	Updated Outcome = iota
	// SkippedHasGPS means the photo already carries GPS tags.
	SkippedHasGPS
	// SkippedNoTimestamp means the photo has no DateTimeOriginal.
	SkippedNoTimestamp
	// SkippedNoMatch means no timeline point lies within the gap tolerance.
	SkippedNoMatch
	// SkippedNoTimezone means no timezone covers the matched coordinate.
	SkippedNoTimezone
	// Failed means an unexpected per-photo error; the batch continues.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Updated:
		return "updated"
	case SkippedHasGPS:
		return "already has GPS tags"
	case SkippedNoTimestamp:
		return "no DateTimeOriginal"
	case SkippedNoMatch:
		return "no close timeline match"
	case SkippedNoTimezone:
		return "no timezone for location"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Stats summarizes a run.
type Stats struct {
	Updated int
	Skipped int
}

// Stamper holds everything a run needs: the timeline index, the camera's
// timezone, a geo-timezone resolver, and the metadata codec.
type Stamper struct {
	c        *Config
	index    *timeline.Index
	cameraTZ *time.Location
	tz       TZResolver
	codec    Codec
}
