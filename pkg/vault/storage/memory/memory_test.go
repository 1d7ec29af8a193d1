package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/vault/pkg/vault"
)

func TestMemoryBackend(t *testing.T) {
	b := New("")
	ctx := context.Background()
	key := "images/abc/tok.png"

	require.NoError(t, b.EnsureReady(ctx))
	require.NoError(t, b.Upload(ctx, strings.NewReader("png bytes"), vault.UploadParams{ObjectKey: key, MimeType: "image/png"}))
	assert.Equal(t, 1, b.Len())

	meta, err := b.GetObjectMeta(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(9), meta.Size)
	assert.Equal(t, "image/png", meta.ContentType)

	rc, err := b.Download(ctx, key)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "png bytes", string(data))

	url := b.PublicURL(key)
	assert.Equal(t, "/uploads/images/abc/tok.png", url)
	got, ok := b.KeyFromURL(url)
	assert.True(t, ok)
	assert.Equal(t, key, got)

	require.NoError(t, b.Delete(ctx, key))
	assert.Equal(t, vault.ErrObjectNotFound, b.Delete(ctx, key))

	_, err = b.GetObjectMeta(ctx, key)
	assert.Equal(t, vault.ErrObjectNotFound, err)
	_, err = b.Download(ctx, key)
	assert.Equal(t, vault.ErrObjectNotFound, err)
}

func TestMemoryBackend_DeletePrefix(t *testing.T) {
	b := New("")
	ctx := context.Background()
	for _, key := range []string{"images/abc/1.png", "other/abc/2.pdf", "images/abcd/3.png"} {
		require.NoError(t, b.Upload(ctx, strings.NewReader("x"), vault.UploadParams{ObjectKey: key}))
	}

	n, err := b.DeletePrefix(ctx, "images/abc/")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, b.Len())
}
