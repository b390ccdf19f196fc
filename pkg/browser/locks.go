package browser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// lockFiles are left behind by a Chromium that did not exit cleanly and make
// the next launch on the same profile fail.
var lockFiles = []string{
	"SingletonLock",
	"SingletonCookie",
	"SingletonSocket",
}

// RemoveStaleLocks deletes leftover Chromium lock files from profileDir and
// returns the names it removed.
func RemoveStaleLocks(profileDir string) ([]string, error) {
	var removed []string
	var errs []error
	for _, name := range lockFiles {
		path := filepath.Join(profileDir, name)
		// Lstat: SingletonLock is a symlink to a host-pid pair.
		if _, err := os.Lstat(path); err != nil {
			continue
		}
		if err := os.Remove(path); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", name, err))
			continue
		}
		removed = append(removed, name)
	}
	return removed, errors.Join(errs...)
}
