// Package asset stores uploaded images and logos and hands back a public
// reference to record on the owning temple or NGO.
package asset

import (
	"context"
	"fmt"
	"mime"
	"path"
	"regexp"
	"strings"
	"time"
)

// Store uploads bytes under bucket and returns a publicly resolvable reference.
// Failures are reported as apperr.ErrUploadFailed.
type Store interface {
	Store(ctx context.Context, bucket, pathHint, fileName string, data []byte) (string, error)
}

var unsafeSegment = regexp.MustCompile(`[^A-Za-z0-9_.\-]`)

// SanitizePathSegment replaces every character outside letters, digits,
// underscore, hyphen and dot with "_". Leading dots are dropped so a segment
// can never climb out of its directory.
func SanitizePathSegment(s string) string {
	s = unsafeSegment.ReplaceAllString(strings.TrimSpace(s), "_")
	return strings.TrimLeft(s, ".")
}

// BuildObjectPath returns "<hint>/<unix nanos>-<file>" with both parts sanitized.
func BuildObjectPath(pathHint, fileName string, now time.Time) string {
	hint := SanitizePathSegment(pathHint)
	if hint == "" {
		hint = "misc"
	}
	file := SanitizePathSegment(fileName)
	if file == "" {
		file = "file"
	}
	return path.Join(hint, fmt.Sprintf("%d-%s", now.UnixNano(), file))
}

func contentType(fileName string) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(fileName))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
