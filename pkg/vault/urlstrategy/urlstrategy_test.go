package urlstrategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathPrefixStrategy(t *testing.T) {
	s := NewPathPrefixStrategy("uploads/")
	assert.Equal(t, "/uploads", s.Prefix)
	assert.Equal(t, "/uploads/images/abc/x.png", s.PublicURL("images/abc/x.png"))

	tests := []struct {
		name  string
		url   string
		key   string
		owned bool
	}{
		{"own url", "/uploads/images/abc/x.png", "images/abc/x.png", true},
		{"with query", "/uploads/videos/abc/y.mp4?v=1", "videos/abc/y.mp4", true},
		{"escaped", "/uploads/other/abc/my%20file.txt", "other/abc/my file.txt", true},
		{"other prefix", "/static/images/abc/x.png", "", false},
		{"remote", "https://cdn.example.com/uploads/images/abc/x.png", "", false},
		{"bare prefix", "/uploads/", "", false},
		{"traversal", "/uploads/../secret", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := s.KeyFromURL(tt.url)
			assert.Equal(t, tt.owned, ok)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestCDNStrategy(t *testing.T) {
	s := NewCDNStrategy("https://media.example.com/vault/")
	url := s.PublicURL("images/abc/x.png")
	assert.Equal(t, "https://media.example.com/vault/images/abc/x.png", url)

	key, ok := s.KeyFromURL(url)
	assert.True(t, ok)
	assert.Equal(t, "images/abc/x.png", key)

	_, ok = s.KeyFromURL("https://other.example.com/vault/images/abc/x.png")
	assert.False(t, ok)
	_, ok = s.KeyFromURL("/vault/images/abc/x.png")
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	assert.IsType(t, &CDNStrategy{}, New("https://bucket.s3.amazonaws.com"))
	assert.IsType(t, &PathPrefixStrategy{}, New("/uploads"))
	assert.IsType(t, &PathPrefixStrategy{}, New(""))
}
