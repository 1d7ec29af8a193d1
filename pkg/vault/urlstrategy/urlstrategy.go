// Package urlstrategy maps storage keys to public URLs and back. Storage
// backends embed a Strategy so the media adapter can resolve a stored preview
// URL to the object it names.
package urlstrategy

import (
	"net/url"
	"strings"
)

// Strategy defines the interface for public URL generation
type Strategy interface {
	// PublicURL returns the dereferenceable URL for an object key
	PublicURL(objectKey string) string

	// KeyFromURL returns the object key a URL produced by PublicURL names.
	// The second value is false for URLs outside this strategy's space.
	KeyFromURL(rawURL string) (string, bool)
}

// New returns a CDN strategy for absolute base URLs and a path-prefix
// strategy for everything else.
func New(base string) Strategy {
	if isAbsolute(base) {
		return NewCDNStrategy(base)
	}
	return NewPathPrefixStrategy(base)
}

// PathPrefixStrategy serves objects under a path of the application's own
// origin, e.g. /uploads/images/abc/x.png for a local web root.
type PathPrefixStrategy struct {
	Prefix string
}

// NewPathPrefixStrategy creates a strategy rooted at prefix. An empty prefix
// means "/".
func NewPathPrefixStrategy(prefix string) *PathPrefixStrategy {
	prefix = "/" + strings.Trim(strings.TrimSpace(prefix), "/")
	return &PathPrefixStrategy{Prefix: strings.TrimSuffix(prefix, "/")}
}

func (s *PathPrefixStrategy) PublicURL(objectKey string) string {
	return s.Prefix + "/" + escapeKey(objectKey)
}

func (s *PathPrefixStrategy) KeyFromURL(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host != "" {
		return "", false
	}
	return trimKey(u.Path, s.Prefix)
}

// CDNStrategy generates absolute URLs under a public base, such as a bucket
// website endpoint or a CDN in front of it.
type CDNStrategy struct {
	BaseURL string
	base    *url.URL
}

// NewCDNStrategy creates a new CDN URL strategy
func NewCDNStrategy(baseURL string) *CDNStrategy {
	// Ensure baseURL doesn't have trailing slash
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	u, _ := url.Parse(baseURL)
	return &CDNStrategy{BaseURL: baseURL, base: u}
}

func (s *CDNStrategy) PublicURL(objectKey string) string {
	return s.BaseURL + "/" + escapeKey(objectKey)
}

func (s *CDNStrategy) KeyFromURL(rawURL string) (string, bool) {
	if s.base == nil {
		return "", false
	}
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !strings.EqualFold(u.Host, s.base.Host) {
		return "", false
	}
	return trimKey(u.Path, strings.TrimSuffix(s.base.Path, "/"))
}

func trimKey(p, prefix string) (string, bool) {
	if !strings.HasPrefix(p, prefix+"/") {
		return "", false
	}
	key := strings.TrimPrefix(p, prefix+"/")
	if key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}

func escapeKey(key string) string {
	parts := strings.Split(strings.TrimPrefix(key, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func isAbsolute(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	return err == nil && u.Scheme != "" && u.Host != ""
}
