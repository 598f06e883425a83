package filesystem

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath converts a user-supplied location to a local path.
// Handles file:// URIs (percent-decoded), a leading ~/ and bare paths.
func ResolvePath(uri string) string {
	if strings.HasPrefix(uri, "file://") {
		rest := strings.TrimPrefix(uri, "file://")
		if decoded, err := url.PathUnescape(rest); err == nil {
			return decoded
		}
		return rest
	}
	if strings.HasPrefix(uri, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, uri[2:])
		}
	}
	// Bare paths pass through unchanged
	return uri
}
