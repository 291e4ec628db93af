// Package objectstore stores employee reference images and returns the URL
// they are publicly served from.
package objectstore

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidKey is returned for keys that are empty or escape the store root.
var ErrInvalidKey = errors.New("invalid object key")

const maxFilenameLen = 100

// ImageKey builds the object key for an uploaded image:
// <organizationId>/<unix-millis>-<sanitized filename>. The client's extension
// is replaced by ext, the extension of the detected content type.
func ImageKey(orgID uuid.UUID, filename, ext string, now time.Time) string {
	name := SanitizeFilename(filename)
	if base := strings.TrimSuffix(name, path.Ext(name)); base != "" {
		name = base
	}
	return fmt.Sprintf("%s/%d-%s%s", orgID, now.UnixMilli(), name, ext)
}

// SanitizeFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with a dash.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}

	out := strings.Trim(b.String(), ".-")
	if out == "" {
		out = "image"
	}
	if len(out) > maxFilenameLen {
		out = out[len(out)-maxFilenameLen:]
	}
	return out
}

func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}

func escapeKey(key string) string {
	segs := strings.Split(key, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
