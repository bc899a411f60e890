// timeline-stamp stamps JPEGs with GPS coordinates and local-time
// timestamps derived from a Google Maps Timeline export.
package main

import (
	"flag"
	"time"

	"k8s.io/klog/v2"

	"github.com/edward-io/timeline-stamp/pkg/stamp"
	"github.com/fsnotify/fsnotify"
)

var (
	timelinePath = flag.String("timeline", "", "Path to Timeline.json")
	photoDir     = flag.String("photos", "", "Directory containing JPEGs")
	cameraTZ     = flag.String("camera-tz", "America/Los_Angeles", "IANA timezone the camera was set to")
	maxGapMin    = flag.Int("max-gap-minutes", 60, "Maximum allowed difference between photo & timeline point")
	apply        = flag.Bool("apply", false, "Actually write changes. Default is dry-run (no files modified).")
	backup       = flag.Bool("backup", false, "Create .exif_backup before writing (with --apply)")
	overwriteGPS = flag.Bool("overwrite-gps", false, "Update photos even if they already contain GPS tags")
	verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	watchFlag    = flag.Bool("watch", false, "Watch the photo directory and re-run on changes")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if *verbose {
		_ = flag.Set("v", "2")
	}

	if *timelinePath == "" {
		klog.Exitf("--timeline is a required flag")
	}
	if *photoDir == "" {
		klog.Exitf("--photos is a required flag")
	}

	c := &stamp.Config{
		Timeline:     *timelinePath,
		Photos:       *photoDir,
		CameraTZ:     *cameraTZ,
		MaxGap:       time.Duration(*maxGapMin) * time.Minute,
		Apply:        *apply,
		Backup:       *backup,
		OverwriteGPS: *overwriteGPS,
	}

	run(c)

	if *watchFlag {
		if err := watch(c); err != nil {
			klog.Exitf("watch failed: %v", err)
		}
	}
}

func run(c *stamp.Config) {
	st, err := stamp.Run(c)
	if err != nil {
		klog.Exitf("run failed: %v", err)
	}

	if c.Apply {
		klog.Infof("Done. %d photos updated, %d skipped.", st.Updated, st.Skipped)
	} else {
		klog.Infof("Dry-run complete. %d photos WOULD be updated, %d skipped.", st.Updated, st.Skipped)
	}
}

// watch re-runs the stamping pass whenever the photo directory changes.
func watch(c *stamp.Config) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(c.Photos); err != nil {
		return err
	}

	klog.Infof("watching %s ...", c.Photos)
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				klog.Infof("change detected: %s", event.Name)
				run(c)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			klog.Errorf("watch error: %v", err)
		}
	}
}
