// Package mediatype classifies preview assets as image, video or unknown
// from a MIME type, a filename or a URL.
package mediatype

import (
	"net/url"
	"path"
	"strings"
)

// Type is the classification of a preview asset.
type Type string

const (
	Image   Type = "image"
	Video   Type = "video"
	Unknown Type = "unknown"
)

var imageExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
	"svg":  true,
}

var videoExtensions = map[string]bool{
	"mp4":  true,
	"webm": true,
	"ogg":  true,
	"mov":  true,
}

// Parse maps a stored value onto a Type. Anything unrecognized is Unknown.
func Parse(s string) Type {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case Image:
		return Image
	case Video:
		return Video
	default:
		return Unknown
	}
}

// IsValid reports whether t is one of the three known values.
func (t Type) IsValid() bool {
	return t == Image || t == Video || t == Unknown
}

// Resolve classifies input, which may be a MIME type ("image/png"), a bare
// filename ("clip.MP4") or a local or remote URL. It never fails; input it
// cannot classify yields Unknown.
func Resolve(input string) Type {
	s := strings.TrimSpace(input)
	if s == "" {
		return Unknown
	}
	lower := strings.ToLower(s)

	if t, ok := fromMIME(lower); ok {
		return t
	}

	// Only URLs carry a query or fragment; a bare filename may contain '#' or '?'.
	p := lower
	if strings.Contains(lower, "://") || strings.HasPrefix(lower, "/") {
		if u, err := url.Parse(lower); err == nil && u.Path != "" {
			p = u.Path
		}
	}

	// Folder hints written by the storage layout win over the extension.
	switch {
	case strings.HasPrefix(p, "images/") || strings.Contains(p, "/images/"):
		return Image
	case strings.HasPrefix(p, "videos/") || strings.Contains(p, "/videos/"):
		return Video
	}

	return FromExtension(p)
}

// FromExtension classifies by the extension of name alone.
func FromExtension(name string) Type {
	ext := strings.TrimPrefix(path.Ext(strings.ToLower(name)), ".")
	switch {
	case imageExtensions[ext]:
		return Image
	case videoExtensions[ext]:
		return Video
	default:
		return Unknown
	}
}

// fromMIME recognizes "type/subtype" strings. The second return value is
// false when s does not look like a MIME type at all.
func fromMIME(s string) (Type, bool) {
	if !isMIMEShape(s) {
		return Unknown, false
	}
	switch {
	case strings.HasPrefix(s, "image/"):
		return Image, true
	case strings.HasPrefix(s, "video/"):
		return Video, true
	default:
		return Unknown, true
	}
}

// isMIMEShape matches "major/minor" with a single slash, no scheme and no
// extension-like dot in the major part.
func isMIMEShape(s string) bool {
	if strings.Count(s, "/") != 1 || strings.Contains(s, "://") {
		return false
	}
	major, minor, _ := strings.Cut(s, "/")
	if major == "" || minor == "" || strings.Contains(major, ".") {
		return false
	}
	switch major {
	case "image", "video", "audio", "application", "text", "font", "model", "multipart", "message":
		return true
	}
	return false
}
