package mediaurl

import (
	"os"
	"strings"
)

// Resolve turns a stored media path into an absolute URL using
// MEDIA_BASE_URL. Paths that are already absolute pass through unchanged.
func Resolve(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	base := os.Getenv("MEDIA_BASE_URL")
	if base == "" {
		base = "/media"
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
