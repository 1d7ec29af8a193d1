package vault

import (
	"context"
	"io"
)

// Service defines the dynamic component store: CRUD over the Repository with
// every read normalized, plus media handling through the MediaStore.
type Service interface {
	// Component operations
	ListComponents(ctx context.Context, filters ListFilters) ([]Component, error)
	GetComponent(ctx context.Context, id string) (*Component, error)
	GetComponentBySlug(ctx context.Context, slug string) (*Component, error)
	CreateComponent(ctx context.Context, req CreateComponentRequest) (*Component, error)
	UpdateComponent(ctx context.Context, id string, req UpdateComponentRequest) (*Component, error)
	DeleteComponent(ctx context.Context, id string) error

	// Category and tag operations
	ListCategories(ctx context.Context) ([]*CategoryRow, error)
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryRow, error)
	ListTags(ctx context.Context) ([]*Tag, error)

	// Media operations
	UploadMedia(ctx context.Context, reader io.Reader, componentID, filename, mimeType string) (*StoredFile, error)
	DeleteMedia(ctx context.Context, url string) bool
	MediaExists(ctx context.Context, url string) (bool, error)

	// Provider: the dynamic store is one of the catalog's sources
	Source() Source
	Components(ctx context.Context) ([]Component, error)
}
