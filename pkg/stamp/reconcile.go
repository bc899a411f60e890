package stamp

import (
	"fmt"
	"path/filepath"
	"time"

	"k8s.io/klog/v2"

	"github.com/edward-io/timeline-stamp/pkg/timeline"
)

// NewStamper wires up a run over a pre-built timeline index. The camera
// timezone must be a valid IANA name; it is how naive EXIF timestamps
// get anchored to absolute time.
func NewStamper(c *Config, index *timeline.Index, tz TZResolver, codec Codec) (*Stamper, error) {
	cameraTZ, err := time.LoadLocation(c.CameraTZ)
	if err != nil {
		return nil, fmt.Errorf("camera timezone %q: %w", c.CameraTZ, err)
	}
	return &Stamper{c: c, index: index, cameraTZ: cameraTZ, tz: tz, codec: codec}, nil
}

// reconcile decides what a single photo's metadata should become. It
// walks the skip conditions in order and stops at the first one that
// fires; only a photo that clears them all yields a Result.
func (s *Stamper) reconcile(p Photo) (Result, Outcome) {
	base := filepath.Base(p.Path)

	if p.HasGPS && !s.c.OverwriteGPS {
		klog.V(1).Infof("%s already has GPS tags; skipping", base)
		return Result{}, SkippedHasGPS
	}

	if p.DateTimeOriginal == "" {
		return Result{}, SkippedNoTimestamp
	}

	// the naive timestamp is wall-clock time in the camera's zone; Go's
	// zone rules disambiguate DST transitions (accepted library behavior)
	naive, err := time.ParseInLocation(exifDate, p.DateTimeOriginal, s.cameraTZ)
	if err != nil {
		klog.Warningf("%s: bad DateTimeOriginal %q: %v", base, p.DateTimeOriginal, err)
		return Result{}, Failed
	}
	instant := naive.UTC()

	pt, ok := s.index.Nearest(instant)
	if !ok || absGap(pt.Time, instant) > s.c.MaxGap {
		return Result{}, SkippedNoMatch
	}

	name := s.tz.Resolve(pt.Lat, pt.Lon)
	if name == "" {
		return Result{}, SkippedNoTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		klog.Warningf("%s: loading timezone %q: %v", base, name, err)
		return Result{}, Failed
	}

	// offset is instant-dependent: the same zone formats differently
	// across DST transitions
	local := instant.In(loc)

	return Result{
		LocalTime: local.Format(exifDate),
		Offset:    formatOffset(local),
		TZName:    name,
		Lat:       pt.Lat,
		Lon:       pt.Lon,
	}, Updated
}

// formatOffset renders t's UTC offset as a signed ±HH:MM string,
// e.g. -08:00 or +05:30.
func formatOffset(t time.Time) string {
	_, off := t.Zone()
	mins := off / 60
	sign := "+"
	if mins < 0 {
		sign = "-"
		mins = -mins
	}
	return fmt.Sprintf("%s%02d:%02d", sign, mins/60, mins%60)
}

func absGap(a, b time.Time) time.Duration {
	if a.After(b) {
		return a.Sub(b)
	}
	return b.Sub(a)
}
