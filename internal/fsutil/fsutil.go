package fsutil

import (
	"os"
	"path/filepath"
	"strings"
)

var imageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".pnm":  {},
	".pgm":  {},
	".ppm":  {},
	".pbm":  {},
	".tif":  {},
	".tiff": {},
	".fit":  {},
	".fits": {},
	".fts":  {},
}

var sourceListExts = map[string]struct{}{
	".axy":  {},
	".xyls": {},
	".xy":   {},
}

// FileExists reports whether path names an existing file.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FirstExisting returns the first path that exists.
func FirstExisting(paths ...string) string {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if FileExists(p) {
			return p
		}
	}
	return ""
}

// IsImageFile checks if a file has a supported image extension.
func IsImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := imageExts[ext]
	return ok
}

// IsSourceListFile checks if a file has a source-list extension.
func IsSourceListFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := sourceListExts[ext]
	return ok
}

// IsCandidateInput reports whether a file looks solvable at all. Used by
// watch mode to filter filesystem events.
func IsCandidateInput(path string) bool {
	return IsImageFile(path) || IsSourceListFile(path)
}
