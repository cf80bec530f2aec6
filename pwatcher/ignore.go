package pwatcher

import (
	"path/filepath"
	"strings"
)

// ArtifactExt is the extension of plugin files, compared case-insensitively.
const ArtifactExt = ".jar"

// IsArtifact returns true if the base name of path ends in ArtifactExt.
func IsArtifact(path string) bool {
	return strings.HasSuffix(strings.ToLower(filepath.Base(path)), ArtifactExt)
}

// IsIgnored returns true if any pattern occurs in filename, ignoring case. An
// empty pattern matches everything.
func IsIgnored(filename string, patterns []string) bool {
	lower := strings.ToLower(filename)
	for _, pattern := range patterns {
		if strings.Contains(lower, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}
