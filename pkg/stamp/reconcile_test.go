package stamp

import (
	"testing"
	"time"

	"github.com/edward-io/timeline-stamp/pkg/timeline"
)

// fakeTZ resolves every coordinate to a fixed zone name; empty string
// simulates a coordinate no timezone covers.
type fakeTZ string

func (f fakeTZ) Resolve(_, _ float64) string { return string(f) }

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return ts
}

func newTestStamper(t *testing.T, c *Config, pts []timeline.Point, tz TZResolver) *Stamper {
	t.Helper()
	s, err := NewStamper(c, timeline.NewIndex(pts), tz, nil)
	if err != nil {
		t.Fatalf("NewStamper: %v", err)
	}
	return s
}

func TestReconcileEndToEnd(t *testing.T) {
	// camera set to UTC-7; photo taken near Tokyo at 17:30Z
	c := &Config{CameraTZ: "Etc/GMT+7", MaxGap: 60 * time.Minute}
	pts := []timeline.Point{
		{Time: mustTime(t, "2024-06-01T18:00:00Z"), Lat: 35.0, Lon: 139.0},
	}
	s := newTestStamper(t, c, pts, fakeTZ("Asia/Tokyo"))

	r, outcome := s.reconcile(Photo{Path: "a.jpg", DateTimeOriginal: "2024:06:01 10:30:00"})
	if outcome != Updated {
		t.Fatalf("outcome = %v, want Updated", outcome)
	}
	if r.LocalTime != "2024:06:02 02:30:00" {
		t.Errorf("LocalTime = %q, want 2024:06:02 02:30:00", r.LocalTime)
	}
	if r.Offset != "+09:00" {
		t.Errorf("Offset = %q, want +09:00", r.Offset)
	}
	if r.Lat != 35.0 || r.Lon != 139.0 {
		t.Errorf("coordinate = (%v, %v), want (35, 139)", r.Lat, r.Lon)
	}
	if r.TZName != "Asia/Tokyo" {
		t.Errorf("TZName = %q, want Asia/Tokyo", r.TZName)
	}
}

func TestReconcileSkips(t *testing.T) {
	pts := []timeline.Point{
		{Time: mustTime(t, "2024-06-01T18:00:00Z"), Lat: 35.0, Lon: 139.0},
	}

	tests := []struct {
		name  string
		c     Config
		tz    TZResolver
		photo Photo
		want  Outcome
	}{
		{
			name:  "already tagged",
			c:     Config{CameraTZ: "UTC", MaxGap: time.Hour},
			tz:    fakeTZ("Asia/Tokyo"),
			photo: Photo{DateTimeOriginal: "2024:06:01 18:00:00", HasGPS: true},
			want:  SkippedHasGPS,
		},
		{
			name:  "overwrite flag wins over existing GPS",
			c:     Config{CameraTZ: "UTC", MaxGap: time.Hour, OverwriteGPS: true},
			tz:    fakeTZ("Asia/Tokyo"),
			photo: Photo{DateTimeOriginal: "2024:06:01 18:00:00", HasGPS: true},
			want:  Updated,
		},
		{
			name:  "missing timestamp",
			c:     Config{CameraTZ: "UTC", MaxGap: time.Hour},
			tz:    fakeTZ("Asia/Tokyo"),
			photo: Photo{},
			want:  SkippedNoTimestamp,
		},
		{
			name:  "gap exceeded",
			c:     Config{CameraTZ: "UTC", MaxGap: time.Hour},
			tz:    fakeTZ("Asia/Tokyo"),
			photo: Photo{DateTimeOriginal: "2024:06:01 08:00:00"},
			want:  SkippedNoMatch,
		},
		{
			name:  "no timezone at coordinate",
			c:     Config{CameraTZ: "UTC", MaxGap: time.Hour},
			tz:    fakeTZ(""),
			photo: Photo{DateTimeOriginal: "2024:06:01 18:00:00"},
			want:  SkippedNoTimezone,
		},
		{
			name:  "unparseable timestamp",
			c:     Config{CameraTZ: "UTC", MaxGap: time.Hour},
			tz:    fakeTZ("Asia/Tokyo"),
			photo: Photo{DateTimeOriginal: "last tuesday"},
			want:  Failed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestStamper(t, &tc.c, pts, tc.tz)
			if _, got := s.reconcile(tc.photo); got != tc.want {
				t.Errorf("reconcile outcome = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestReconcileOffsetFollowsDST(t *testing.T) {
	c := &Config{CameraTZ: "UTC", MaxGap: time.Hour}

	tests := []struct {
		name   string
		point  string
		photo  string
		offset string
	}{
		{"winter is standard time", "2024-01-15T20:00:00Z", "2024:01:15 20:00:00", "-08:00"},
		{"summer is daylight time", "2024-07-15T20:00:00Z", "2024:07:15 20:00:00", "-07:00"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pts := []timeline.Point{
				{Time: mustTime(t, tc.point), Lat: 37.77, Lon: -122.42},
			}
			s := newTestStamper(t, c, pts, fakeTZ("America/Los_Angeles"))

			r, outcome := s.reconcile(Photo{DateTimeOriginal: tc.photo})
			if outcome != Updated {
				t.Fatalf("outcome = %v, want Updated", outcome)
			}
			if r.Offset != tc.offset {
				t.Errorf("Offset = %q, want %q", r.Offset, tc.offset)
			}
		})
	}
}

func TestFormatOffset(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{-28800, "-08:00"},
		{19800, "+05:30"},
		{0, "+00:00"},
		{-16200, "-04:30"},
		{45900, "+12:45"},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			ts := time.Date(2024, 6, 1, 0, 0, 0, 0, time.FixedZone("", tc.seconds))
			if got := formatOffset(ts); got != tc.want {
				t.Errorf("formatOffset(%d s) = %q, want %q", tc.seconds, got, tc.want)
			}
		})
	}
}

func TestNewStamperBadZone(t *testing.T) {
	_, err := NewStamper(&Config{CameraTZ: "Not/AZone"}, timeline.NewIndex(nil), fakeTZ(""), nil)
	if err == nil {
		t.Error("NewStamper with bogus camera timezone: want error")
	}
}
