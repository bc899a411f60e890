package stamp

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/otiai10/copy"
	"k8s.io/klog/v2"

	"github.com/edward-io/timeline-stamp/pkg/timeline"
)

// backupSuffix is appended to the original filename before apply-mode
// writes when backups are requested.
const backupSuffix = ".exif_backup"

// Run loads the timeline, builds the real resolver and codec, and stamps
// every photo under c.Photos. It returns an error only for global
// preconditions (unreadable timeline, empty index, no photos); per-photo
// problems are logged and counted.
func Run(c *Config) (Stats, error) {
	index, err := timeline.Load(c.Timeline)
	if err != nil {
		return Stats{}, err
	}
	if index.Len() == 0 {
		return Stats{}, errors.New("no timeline points extracted")
	}

	tz, err := NewTZResolver()
	if err != nil {
		return Stats{}, fmt.Errorf("timezone finder: %w", err)
	}

	codec, err := NewExifCodec()
	if err != nil {
		return Stats{}, err
	}
	defer func() {
		if err := codec.Close(); err != nil {
			klog.Errorf("failed to close exiftool: %v", err)
		}
	}()

	s, err := NewStamper(c, index, tz, codec)
	if err != nil {
		return Stats{}, err
	}
	return s.Run()
}

// Run stamps every photo under the configured directory, one at a time.
func (s *Stamper) Run() (Stats, error) {
	photos, err := FindPhotos(s.c.Photos)
	if err != nil {
		return Stats{}, fmt.Errorf("find photos: %w", err)
	}
	if len(photos) == 0 {
		return Stats{}, fmt.Errorf("no photos found in %s", s.c.Photos)
	}

	var st Stats
	for _, path := range photos {
		if s.process(path) {
			st.Updated++
		} else {
			st.Skipped++
		}
	}
	return st, nil
}

// process handles one photo to completion. It returns true if the photo
// was updated (or would be, in preview mode). Any error is contained
// here so the batch always continues.
func (s *Stamper) process(path string) bool {
	base := filepath.Base(path)

	p, err := s.codec.Read(path)
	if err != nil {
		klog.Warningf("failed to process %s: %v", base, err)
		return false
	}

	r, outcome := s.reconcile(p)
	if outcome != Updated {
		klog.Infof("%s: %s; skipping", base, outcome)
		return false
	}

	if !s.c.Apply {
		klog.Infof("[dry-run] would update %s (lat=%.5f, lon=%.5f, tz=%s, time=%s)",
			base, r.Lat, r.Lon, r.Offset, r.LocalTime)
		return true
	}

	if s.c.Backup {
		s.backup(path)
	}

	if err := s.codec.Write(path, r); err != nil {
		klog.Warningf("failed to process %s: %v", base, err)
		return false
	}
	return true
}

// backup copies the photo to a sibling path before it is modified, but
// only once: an existing backup is never overwritten.
func (s *Stamper) backup(path string) {
	dst := path + backupSuffix
	if _, err := os.Stat(dst); err == nil {
		return
	}
	if err := copy.Copy(path, dst); err != nil {
		klog.Warningf("could not create backup for %s: %v", filepath.Base(path), err)
	}
}
