package media_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/vault/pkg/vault"
	"github.com/tendant/vault/pkg/vault/media"
	"github.com/tendant/vault/pkg/vault/mediatype"
	"github.com/tendant/vault/pkg/vault/objectkey"
	"github.com/tendant/vault/pkg/vault/storage/fs"
	"github.com/tendant/vault/pkg/vault/storage/memory"
)

func TestAdapter_UploadImage(t *testing.T) {
	store := memory.New("/uploads")
	adapter := media.New(store)
	ctx := context.Background()

	jpeg := bytes.Repeat([]byte{0xFF}, 10*1024)
	file, err := adapter.Upload(ctx, bytes.NewReader(jpeg), "abc", "photo.JPG", "image/jpeg")
	require.NoError(t, err)

	assert.Contains(t, file.URL, "/abc/")
	assert.True(t, strings.HasPrefix(file.Path, "images/abc/"))
	assert.True(t, strings.HasSuffix(file.Path, ".jpg"))
	assert.Equal(t, mediatype.Image, file.MediaType)
	assert.Equal(t, int64(10*1024), file.Size)
	assert.True(t, adapter.Owns(file.URL))

	exists, err := adapter.Exists(ctx, file.URL)
	require.NoError(t, err)
	assert.True(t, exists)

	assert.True(t, adapter.Delete(ctx, file.URL))
	assert.False(t, adapter.Delete(ctx, file.URL), "second delete reports already gone")

	exists, err = adapter.Exists(ctx, file.URL)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAdapter_MediaKindFolders(t *testing.T) {
	adapter := media.New(memory.New(""), media.WithKeyGenerator(objectkey.NewCustomFuncGenerator(
		func(id string, kind mediatype.Type, meta *objectkey.KeyMetadata) string {
			return objectkey.Folder(kind) + "/" + id + "/" + meta.FileName
		})))
	ctx := context.Background()

	tests := []struct {
		filename, mime string
		path           string
		kind           mediatype.Type
	}{
		{"clip.mp4", "video/mp4", "videos/c1/clip.mp4", mediatype.Video},
		{"clip.webm", "", "videos/c1/clip.webm", mediatype.Video},
		{"doc.pdf", "application/pdf", "other/c1/doc.pdf", mediatype.Unknown},
		{"icon.svg", "application/octet-stream", "images/c1/icon.svg", mediatype.Image},
		{"take#2.mp4", "application/octet-stream", "videos/c1/take#2.mp4", mediatype.Video},
	}
	for _, tt := range tests {
		file, err := adapter.Upload(ctx, strings.NewReader("x"), "c1", tt.filename, tt.mime)
		require.NoError(t, err)
		assert.Equal(t, tt.path, file.Path)
		assert.Equal(t, tt.kind, file.MediaType)
	}
}

func TestAdapter_ForeignURLs(t *testing.T) {
	adapter := media.New(memory.New("/uploads"))
	ctx := context.Background()

	assert.False(t, adapter.Owns("https://images.unsplash.com/photo.jpg"))
	assert.False(t, adapter.Owns(""))
	assert.False(t, adapter.Delete(ctx, "https://images.unsplash.com/photo.jpg"))

	exists, err := adapter.Exists(ctx, "https://images.unsplash.com/photo.jpg")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAdapter_FilesystemBackend(t *testing.T) {
	store, err := fs.New(fs.Config{BaseDir: t.TempDir(), URLPrefix: "/uploads"})
	require.NoError(t, err)
	adapter := media.New(store)
	ctx := context.Background()
	require.NoError(t, adapter.EnsureReady(ctx))

	file, err := adapter.Upload(ctx, strings.NewReader("GIF89a..."), "abc", "spin.gif", "image/gif")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(file.URL, "/uploads/images/abc/"))

	rc, meta, err := adapter.Open(ctx, file.Path)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "GIF89a...", string(data))
	assert.Equal(t, int64(9), meta.Size)

	assert.True(t, adapter.Delete(ctx, file.URL))
}

type failingStore struct {
	*memory.Backend
}

func (f failingStore) Upload(ctx context.Context, r io.Reader, p vault.UploadParams) error {
	return errors.New("disk full")
}

func TestAdapter_UploadFailure(t *testing.T) {
	adapter := media.New(failingStore{memory.New("")})

	file, err := adapter.Upload(context.Background(), strings.NewReader("x"), "abc", "a.png", "image/png")
	assert.Nil(t, file)

	var mediaErr *vault.MediaError
	require.True(t, errors.As(err, &mediaErr))
	assert.Equal(t, "upload", mediaErr.Op)
	assert.True(t, strings.HasPrefix(mediaErr.Key, "images/abc/"))
}

type flakyPrefixStore struct {
	*memory.Backend
}

func (f flakyPrefixStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	if strings.HasPrefix(prefix, "videos/") {
		return 0, errors.New("listing denied")
	}
	return f.Backend.DeletePrefix(ctx, prefix)
}

func TestAdapter_Purge(t *testing.T) {
	store := memory.New("")
	adapter := media.New(flakyPrefixStore{store})
	ctx := context.Background()

	for _, upload := range []struct{ id, name, mime string }{
		{"abc", "a.png", "image/png"},
		{"abc", "b.pdf", "application/pdf"},
		{"abc", "c.mp4", "video/mp4"},
		{"xyz", "d.png", "image/png"},
	} {
		_, err := adapter.Upload(ctx, strings.NewReader("x"), upload.id, upload.name, upload.mime)
		require.NoError(t, err)
	}

	// the failing video prefix is skipped, not fatal
	assert.Equal(t, 2, adapter.Purge(ctx, "abc"))
	assert.Equal(t, 2, store.Len())
	assert.Zero(t, adapter.Purge(ctx, "  "))
}
