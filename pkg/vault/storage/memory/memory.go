package memory

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/tendant/vault/pkg/vault"
	"github.com/tendant/vault/pkg/vault/urlstrategy"
)

type object struct {
	data        []byte
	contentType string
	updatedAt   time.Time
}

// Backend is an in-memory implementation of the vault.BlobStore interface
type Backend struct {
	urlstrategy.Strategy

	mu      sync.RWMutex
	objects map[string]object
}

// New creates a new in-memory storage backend whose public URLs live under
// prefix (default "/uploads").
func New(prefix string) *Backend {
	if prefix == "" {
		prefix = "/uploads"
	}
	return &Backend{
		Strategy: urlstrategy.New(prefix),
		objects:  make(map[string]object),
	}
}

// EnsureReady has nothing to provision
func (b *Backend) EnsureReady(ctx context.Context) error {
	return nil
}

// Upload stores a copy of the reader's bytes
func (b *Backend) Upload(ctx context.Context, reader io.Reader, params vault.UploadParams) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return &vault.StorageError{Backend: "memory", Key: params.ObjectKey, Op: "upload", Err: err}
	}

	contentType := params.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[params.ObjectKey] = object{data: data, contentType: contentType, updatedAt: time.Now().UTC()}
	return nil
}

// Download returns a reader over a copy of the object
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, vault.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(append([]byte(nil), obj.data...))), nil
}

// GetObjectMeta retrieves metadata for an object in memory
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*vault.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, vault.ErrObjectNotFound
	}
	return &vault.ObjectMeta{
		Key:         objectKey,
		Size:        int64(len(obj.data)),
		ContentType: obj.contentType,
		UpdatedAt:   obj.updatedAt,
	}, nil
}

// Delete deletes content
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[objectKey]; !exists {
		return vault.ErrObjectNotFound
	}
	delete(b.objects, objectKey)
	return nil
}

// DeletePrefix removes every object below prefix
func (b *Backend) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for key := range b.objects {
		if strings.HasPrefix(key, prefix) {
			delete(b.objects, key)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored objects.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}
