// Package media implements vault.MediaStore over any vault.BlobStore: it
// classifies uploads, lays out object keys per component and resolves
// public URLs back to stored objects for deletion.
package media

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/tendant/vault/pkg/vault"
	"github.com/tendant/vault/pkg/vault/mediatype"
	"github.com/tendant/vault/pkg/vault/objectkey"
)

// Adapter implements vault.MediaStore
type Adapter struct {
	store  vault.BlobStore
	keys   objectkey.Generator
	logger *slog.Logger
}

// Option configures an Adapter
type Option func(*Adapter)

// WithKeyGenerator replaces the default folder layout.
func WithKeyGenerator(g objectkey.Generator) Option {
	return func(a *Adapter) {
		a.keys = g
	}
}

// WithLogger sets the logger used for best-effort deletes.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// New wraps store.
func New(store vault.BlobStore, options ...Option) *Adapter {
	a := &Adapter{
		store:  store,
		keys:   objectkey.NewFolderGenerator(),
		logger: slog.Default(),
	}
	for _, option := range options {
		option(a)
	}
	return a
}

// Store returns the wrapped blob store.
func (a *Adapter) Store() vault.BlobStore {
	return a.store
}

// EnsureReady provisions the backend.
func (a *Adapter) EnsureReady(ctx context.Context) error {
	return a.store.EnsureReady(ctx)
}

// Upload writes the file below the component's folder for its media kind.
// On failure the returned error is a *vault.MediaError and no file is
// reported.
func (a *Adapter) Upload(ctx context.Context, reader io.Reader, componentID, filename, mimeType string) (*vault.StoredFile, error) {
	kind := mediatype.Resolve(mimeType)
	if kind == mediatype.Unknown {
		kind = mediatype.Resolve(filename)
	}

	key := a.keys.GenerateKey(componentID, kind, &objectkey.KeyMetadata{
		FileName:    filename,
		ContentType: mimeType,
	})

	counter := &countingReader{r: reader}
	err := a.store.Upload(ctx, counter, vault.UploadParams{
		ObjectKey: key,
		MimeType:  mimeType,
	})
	if err != nil {
		return nil, &vault.MediaError{Op: "upload", Key: key, Err: err}
	}

	return &vault.StoredFile{
		URL:         a.store.PublicURL(key),
		Path:        key,
		MediaType:   kind,
		ContentType: mimeType,
		Size:        counter.n,
	}, nil
}

// Delete removes the object url points at. It reports false, without
// failing, when the URL is foreign, the object is already gone or the
// backend refuses.
func (a *Adapter) Delete(ctx context.Context, url string) bool {
	key, ok := a.store.KeyFromURL(url)
	if !ok {
		return false
	}
	if err := a.store.Delete(ctx, key); err != nil {
		if errors.Is(err, vault.ErrObjectNotFound) {
			a.logger.DebugContext(ctx, "media already removed", "key", key)
			return false
		}
		a.logger.WarnContext(ctx, "failed to delete media", "key", key, "err", err)
		return false
	}
	return true
}

// Exists reports whether url names a stored object.
func (a *Adapter) Exists(ctx context.Context, url string) (bool, error) {
	key, ok := a.store.KeyFromURL(url)
	if !ok {
		return false, nil
	}
	if _, err := a.store.GetObjectMeta(ctx, key); err != nil {
		if errors.Is(err, vault.ErrObjectNotFound) {
			return false, nil
		}
		return false, &vault.MediaError{Op: "exists", Key: key, Err: err}
	}
	return true, nil
}

// Purge removes every upload filed under componentID, attached or not, and
// returns how many objects were removed. Failures are logged, not returned.
// Keys from a custom generator outside the standard folders are not found.
func (a *Adapter) Purge(ctx context.Context, componentID string) int {
	if strings.TrimSpace(componentID) == "" {
		return 0
	}
	removed := 0
	for _, prefix := range objectkey.ComponentPrefixes(componentID) {
		n, err := a.store.DeletePrefix(ctx, prefix)
		removed += n
		if err != nil {
			a.logger.WarnContext(ctx, "media purge failed", "prefix", prefix, "err", err)
		}
	}
	return removed
}

// Owns reports whether url points into this adapter's storage.
func (a *Adapter) Owns(url string) bool {
	if strings.TrimSpace(url) == "" {
		return false
	}
	_, ok := a.store.KeyFromURL(url)
	return ok
}

// Open returns the object for a storage key, for serving local backends.
func (a *Adapter) Open(ctx context.Context, key string) (io.ReadCloser, *vault.ObjectMeta, error) {
	meta, err := a.store.GetObjectMeta(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	rc, err := a.store.Download(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	return rc, meta, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
