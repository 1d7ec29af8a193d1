package objectkey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/vault/pkg/vault/mediatype"
)

func TestFolderGenerator(t *testing.T) {
	g := NewFolderGenerator()

	tests := []struct {
		name     string
		id       string
		kind     mediatype.Type
		metadata *KeyMetadata
		expected string
	}{
		{"image", "abc", mediatype.Image, &KeyMetadata{FileName: "photo.JPG", Token: "tok"}, "images/abc/tok.jpg"},
		{"video", "abc", mediatype.Video, &KeyMetadata{FileName: "clip.webm", Token: "tok"}, "videos/abc/tok.webm"},
		{"other", "abc", mediatype.Unknown, &KeyMetadata{FileName: "notes.txt", Token: "tok"}, "other/abc/tok.txt"},
		{"no extension", "abc", mediatype.Image, &KeyMetadata{FileName: "blob", Token: "tok"}, "images/abc/tok"},
		{"path traversal in id", "../etc", mediatype.Image, &KeyMetadata{FileName: "a.png", Token: "tok"}, "images/_etc/tok.png"},
		{"empty id", "", mediatype.Image, &KeyMetadata{FileName: "a.png", Token: "tok"}, "images/unassigned/tok.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, g.GenerateKey(tt.id, tt.kind, tt.metadata))
		})
	}
}

func TestFolderGenerator_Unique(t *testing.T) {
	g := NewFolderGenerator()
	meta := &KeyMetadata{FileName: "same.png"}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key := g.GenerateKey("abc", mediatype.Image, meta)
		assert.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true
		assert.True(t, strings.HasPrefix(key, "images/abc/"))
		assert.True(t, strings.HasSuffix(key, ".png"))
	}
}

func TestShardedGenerator(t *testing.T) {
	g := NewShardedGenerator()
	key := g.GenerateKey("abc", mediatype.Video, &KeyMetadata{FileName: "x.mp4", Token: "abcdef"})
	assert.Equal(t, "videos/abc/ab/cdef.mp4", key)

	key = g.GenerateKey("abc", mediatype.Image, &KeyMetadata{FileName: "x.png"})
	parts := strings.Split(key, "/")
	require.Len(t, parts, 4)
	assert.Len(t, parts[2], 2)
}

func TestNew(t *testing.T) {
	g, err := New("")
	require.NoError(t, err)
	assert.IsType(t, &FolderGenerator{}, g)

	g, err = New("Sharded")
	require.NoError(t, err)
	assert.IsType(t, &ShardedGenerator{}, g)

	_, err = New("hashed")
	assert.Error(t, err)
}

func TestCustomFuncGenerator(t *testing.T) {
	g := NewCustomFuncGenerator(func(id string, kind mediatype.Type, _ *KeyMetadata) string {
		return "custom/" + string(kind) + "/" + id
	})
	assert.Equal(t, "custom/image/abc", g.GenerateKey("abc", mediatype.Image, nil))
}

func TestComponentPrefixes(t *testing.T) {
	assert.Equal(t, []string{"images/abc/", "videos/abc/", "other/abc/"}, ComponentPrefixes("abc"))

	key := NewShardedGenerator().GenerateKey("abc", mediatype.Video, &KeyMetadata{FileName: "x.mp4", Token: "abcdef"})
	assert.True(t, strings.HasPrefix(key, ComponentPrefixes("abc")[1]))
}
