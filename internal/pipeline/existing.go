package pipeline

import (
	"fmt"
	"os"

	"skysolve/internal/fsutil"
	"skysolve/internal/naming"
)

// resolveExisting scans the derived output paths in construction order
// and applies the overwrite policy. It returns the first conflicting
// path when the policy is to stop, or an error when an overwrite
// deletion fails. When the pre-solved reference is the same file as the
// derived solved flag it belongs to a previous run and is left out of
// the scan.
func resolveExisting(set naming.OutputSet, overwrite, keepGoing bool, solvedIn string) (string, error) {
	for _, entry := range set.Entries() {
		if entry.Role == naming.RoleSolved && solvedIn != "" && solvedIn == entry.Path {
			continue
		}
		if !fsutil.FileExists(entry.Path) {
			continue
		}
		switch {
		case overwrite:
			if err := os.Remove(entry.Path); err != nil {
				return "", fmt.Errorf("removing %s: %w", entry.Path, err)
			}
		case keepGoing:
			// proceed; downstream tools overwrite in place
		default:
			return entry.Path, nil
		}
	}
	return "", nil
}
