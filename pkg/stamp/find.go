package stamp

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

// FindPhotos walks root and returns the JPEG paths under it, sorted.
// Dotfiles and dot-directories are skipped.
func FindPhotos(root string) ([]string, error) {
	found := []string{}

	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if filepath.Base(path)[0] == '.' {
				return godirwalk.SkipThis
			}

			if de.IsDir() {
				return nil
			}

			ext := strings.ToLower(filepath.Ext(path))
			if ext == ".jpg" || ext == ".jpeg" {
				klog.V(1).Infof("found %s", path)
				found = append(found, path)
			}

			return nil
		},
	})

	sort.Strings(found)
	return found, err
}
