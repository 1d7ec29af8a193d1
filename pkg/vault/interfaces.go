package vault

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Provider is a read-only source of components. Each provider stamps its own
// Source on what it returns.
type Provider interface {
	Source() Source
	Components(ctx context.Context) ([]Component, error)
}

// Repository defines persistence for the dynamic store. Reads return raw
// records; the Service normalizes them.
type Repository interface {
	// Component operations
	ListComponents(ctx context.Context, filters ListFilters) ([]Record, error)
	GetComponent(ctx context.Context, id string) (Record, error)
	FindComponentBySlug(ctx context.Context, slug string) (Record, error)
	CreateComponent(ctx context.Context, row *ComponentRow) error
	UpdateComponent(ctx context.Context, row *ComponentRow) error
	DeleteComponent(ctx context.Context, id string) error

	// Content operations, one row per component per section
	ListContent(ctx context.Context, componentID string) ([]*ContentRow, error)
	CreateContent(ctx context.Context, row *ContentRow) error
	UpdateContent(ctx context.Context, row *ContentRow) error
	DeleteContent(ctx context.Context, componentID string) error

	// Tag operations
	GetOrCreateTag(ctx context.Context, name string) (*Tag, error)
	LinkTag(ctx context.Context, componentID string, tagID uuid.UUID) error
	UnlinkTags(ctx context.Context, componentID string) error
	ListComponentTags(ctx context.Context, componentID string) ([]*Tag, error)
	ListTags(ctx context.Context) ([]*Tag, error)

	// Category operations
	ListCategories(ctx context.Context) ([]*CategoryRow, error)
	CreateCategory(ctx context.Context, row *CategoryRow) error
}

// BlobStore defines the interface for media storage backends. Keys are
// slash-separated paths relative to the backend root.
type BlobStore interface {
	// Upload writes the object at params.ObjectKey
	Upload(ctx context.Context, reader io.Reader, params UploadParams) error

	// Download opens an object for reading, or returns ErrObjectNotFound
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete removes an object. Missing objects yield ErrObjectNotFound.
	Delete(ctx context.Context, objectKey string) error

	// DeletePrefix removes every object whose key starts with prefix and
	// reports how many were removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)

	// GetObjectMeta returns metadata, or ErrObjectNotFound
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)

	// EnsureReady provisions the backend (directories, bucket). Idempotent.
	EnsureReady(ctx context.Context) error

	// PublicURL returns the dereferenceable URL for a key
	PublicURL(objectKey string) string

	// KeyFromURL resolves a URL produced by PublicURL back to its key
	KeyFromURL(rawURL string) (string, bool)
}

// MediaStore is the uniform media interface used by callers: upload,
// best-effort delete and exists checks addressed by public URL.
type MediaStore interface {
	Upload(ctx context.Context, reader io.Reader, componentID, filename, mimeType string) (*StoredFile, error)
	Delete(ctx context.Context, url string) bool
	Purge(ctx context.Context, componentID string) int
	Exists(ctx context.Context, url string) (bool, error)
	Owns(url string) bool
	EnsureReady(ctx context.Context) error
}

// EventSink receives component and media lifecycle notifications.
type EventSink interface {
	ComponentCreated(ctx context.Context, component *Component) error
	ComponentUpdated(ctx context.Context, component *Component) error
	ComponentDeleted(ctx context.Context, id string) error
	MediaUploaded(ctx context.Context, componentID string, file *StoredFile) error
	MediaDeleted(ctx context.Context, url string) error
}
