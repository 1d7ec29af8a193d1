package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/tendant/vault/pkg/vault"
	"github.com/tendant/vault/pkg/vault/urlstrategy"
)

// Config options for the Google Cloud Storage backend
type Config struct {
	Bucket    string
	ProjectID string // required only to create the bucket

	// Endpoint points at an emulator such as fake-gcs-server; requests are
	// then sent without authentication.
	Endpoint string

	// CredentialsJSON or CredentialsFile select explicit credentials;
	// otherwise application default credentials are used.
	CredentialsJSON string
	CredentialsFile string

	// PublicURL is the base objects are served from. When empty it is
	// derived from the endpoint or storage.googleapis.com.
	PublicURL string

	CreateBucketIfNotExist bool
}

// Backend is a GCS implementation of the vault.BlobStore interface
type Backend struct {
	urlstrategy.Strategy

	client *storage.Client
	bucket string
	config Config
}

// New creates a GCS backend. The client is created eagerly; the bucket is
// only touched by EnsureReady and object operations.
func New(ctx context.Context, config Config) (*Backend, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	client, err := storage.NewClient(ctx, ClientOptions(config)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &Backend{
		Strategy: urlstrategy.NewCDNStrategy(PublicBaseURL(config)),
		client:   client,
		bucket:   config.Bucket,
		config:   config,
	}, nil
}

// ClientOptions returns the client options implied by config.
func ClientOptions(config Config) []option.ClientOption {
	if endpoint := strings.TrimRight(strings.TrimSpace(config.Endpoint), "/"); endpoint != "" {
		return []option.ClientOption{
			option.WithEndpoint(endpoint + "/storage/v1/"),
			option.WithoutAuthentication(),
		}
	}

	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(config.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(config.CredentialsJSON)))
	case strings.TrimSpace(config.CredentialsFile) != "":
		opts = append(opts, option.WithCredentialsFile(config.CredentialsFile))
	}
	return append(opts, option.WithScopes(storage.ScopeReadWrite))
}

// PublicBaseURL returns the URL objects of the configured bucket are
// reachable under.
func PublicBaseURL(config Config) string {
	if config.PublicURL != "" {
		return strings.TrimRight(config.PublicURL, "/")
	}
	if endpoint := strings.TrimRight(strings.TrimSpace(config.Endpoint), "/"); endpoint != "" {
		return fmt.Sprintf("%s/%s", endpoint, config.Bucket)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s", config.Bucket)
}

// Close releases the underlying client.
func (b *Backend) Close() error {
	return b.client.Close()
}

// EnsureReady verifies the bucket and creates it when allowed.
func (b *Backend) EnsureReady(ctx context.Context) error {
	bucket := b.client.Bucket(b.bucket)
	_, err := bucket.Attrs(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrBucketNotExist) {
		return &vault.StorageError{Backend: "gcs", Key: b.bucket, Op: "bucket_attrs", Err: err}
	}
	if !b.config.CreateBucketIfNotExist {
		return &vault.StorageError{Backend: "gcs", Key: b.bucket, Op: "bucket_attrs", Err: err}
	}

	if err := bucket.Create(ctx, b.config.ProjectID, nil); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict {
			return nil
		}
		return &vault.StorageError{Backend: "gcs", Key: b.bucket, Op: "create_bucket", Err: err}
	}
	return nil
}

// Upload writes an object, setting its content type
func (b *Backend) Upload(ctx context.Context, reader io.Reader, params vault.UploadParams) error {
	w := b.client.Bucket(b.bucket).Object(params.ObjectKey).NewWriter(ctx)
	w.ContentType = params.MimeType

	if _, err := io.Copy(w, reader); err != nil {
		_ = w.Close()
		return &vault.StorageError{Backend: "gcs", Key: params.ObjectKey, Op: "upload", Err: err}
	}
	if err := w.Close(); err != nil {
		return &vault.StorageError{Backend: "gcs", Key: params.ObjectKey, Op: "upload", Err: err}
	}
	return nil
}

// Download opens an object reader
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	r, err := b.client.Bucket(b.bucket).Object(objectKey).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, vault.ErrObjectNotFound
		}
		return nil, &vault.StorageError{Backend: "gcs", Key: objectKey, Op: "download", Err: err}
	}
	return r, nil
}

// GetObjectMeta retrieves object attributes
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*vault.ObjectMeta, error) {
	attrs, err := b.client.Bucket(b.bucket).Object(objectKey).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, vault.ErrObjectNotFound
		}
		return nil, &vault.StorageError{Backend: "gcs", Key: objectKey, Op: "attrs", Err: err}
	}
	return &vault.ObjectMeta{
		Key:         objectKey,
		Size:        attrs.Size,
		ContentType: attrs.ContentType,
		UpdatedAt:   attrs.Updated,
		ETag:        attrs.Etag,
	}, nil
}

// Delete removes an object
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	if err := b.client.Bucket(b.bucket).Object(objectKey).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return vault.ErrObjectNotFound
		}
		return &vault.StorageError{Backend: "gcs", Key: objectKey, Op: "delete", Err: err}
	}
	return nil
}

// DeletePrefix removes every object below prefix. Objects that vanish while
// iterating are not counted.
func (b *Backend) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	bucket := b.client.Bucket(b.bucket)
	it := bucket.Objects(ctx, &storage.Query{Prefix: prefix})

	deleted := 0
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			return deleted, nil
		}
		if err != nil {
			return deleted, &vault.StorageError{Backend: "gcs", Key: prefix, Op: "list_objects", Err: err}
		}
		if err := bucket.Object(attrs.Name).Delete(ctx); err != nil {
			if errors.Is(err, storage.ErrObjectNotExist) {
				continue
			}
			return deleted, &vault.StorageError{Backend: "gcs", Key: attrs.Name, Op: "delete", Err: err}
		}
		deleted++
	}
}
