package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/vault/pkg/vault"
)

func TestFSBackend_BasicOps(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: tmp, URLPrefix: "/uploads"})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, backend.EnsureReady(ctx))
	require.NoError(t, backend.EnsureReady(ctx)) // idempotent

	for _, dir := range []string{"images", "videos", "other"} {
		info, err := os.Stat(filepath.Join(tmp, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	key := "images/abc/tok.png"
	data := []byte("\x89PNG\r\n\x1a\nrest")
	require.NoError(t, backend.Upload(ctx, bytes.NewReader(data), vault.UploadParams{ObjectKey: key, MimeType: "image/png"}))

	meta, err := backend.GetObjectMeta(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), meta.Size)
	assert.Equal(t, "image/png", meta.ContentType)

	rc, err := backend.Download(ctx, key)
	require.NoError(t, err)
	got, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, data, got)

	assert.Equal(t, "/uploads/images/abc/tok.png", backend.PublicURL(key))

	require.NoError(t, backend.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(tmp, key))
	assert.True(t, os.IsNotExist(err))

	// the component folder is pruned, the kind folder stays
	_, err = os.Stat(filepath.Join(tmp, "images", "abc"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(tmp, "images"))
	assert.NoError(t, err)
}

func TestFSBackend_NotFound(t *testing.T) {
	backend, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	ctx := context.Background()

	assert.Equal(t, vault.ErrObjectNotFound, backend.Delete(ctx, "images/x/y.png"))
	_, err = backend.GetObjectMeta(ctx, "images/x/y.png")
	assert.Equal(t, vault.ErrObjectNotFound, err)
	_, err = backend.Download(ctx, "images/x/y.png")
	assert.Equal(t, vault.ErrObjectNotFound, err)
}

func TestFSBackend_RejectsEscapingKeys(t *testing.T) {
	backend, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	err = backend.Upload(context.Background(), bytes.NewReader([]byte("x")), vault.UploadParams{ObjectKey: "../outside.txt"})
	var se *vault.StorageError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, "resolve", se.Op)
}

func TestFSBackend_RequiresBaseDir(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestFSBackend_DeletePrefix(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: tmp})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, backend.EnsureReady(ctx))

	for _, key := range []string{"images/abc/a.png", "images/abc/ab/cd.png", "images/abcd/keep.png"} {
		require.NoError(t, backend.Upload(ctx, bytes.NewReader([]byte("x")), vault.UploadParams{ObjectKey: key}))
	}

	n, err := backend.DeletePrefix(ctx, "images/abc/")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = os.Stat(filepath.Join(tmp, "images", "abc"))
	assert.True(t, os.IsNotExist(err), "emptied component folder is pruned")
	_, err = os.Stat(filepath.Join(tmp, "images", "abcd", "keep.png"))
	assert.NoError(t, err)

	n, err = backend.DeletePrefix(ctx, "videos/abc/")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = backend.DeletePrefix(ctx, "../outside/")
	assert.Error(t, err)
}
