package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tendant/vault/pkg/vault"
	"github.com/tendant/vault/pkg/vault/urlstrategy"
)

// Backend is a filesystem implementation of the vault.BlobStore interface.
// Files live under BaseDir, which is expected to be served at URLPrefix.
type Backend struct {
	urlstrategy.Strategy

	mu      sync.RWMutex
	baseDir string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir   string // Base directory for storing files, e.g. ./public/uploads
	URLPrefix string // Public path or URL the base directory is served at
}

// New creates a new filesystem storage backend. Directories are created by
// EnsureReady, not here.
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	baseDir, err := filepath.Abs(config.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}
	prefix := config.URLPrefix
	if prefix == "" {
		prefix = "/uploads"
	}

	return &Backend{
		Strategy: urlstrategy.New(prefix),
		baseDir:  baseDir,
	}, nil
}

// BaseDir returns the absolute storage root.
func (b *Backend) BaseDir() string {
	return b.baseDir
}

// EnsureReady creates the base directory and the media folders.
func (b *Backend) EnsureReady(ctx context.Context) error {
	for _, dir := range []string{"", "images", "videos", "other"} {
		if err := os.MkdirAll(filepath.Join(b.baseDir, dir), 0755); err != nil {
			return &vault.StorageError{Backend: "fs", Key: dir, Op: "ensure_ready", Err: err}
		}
	}
	return nil
}

// GetObjectMeta retrieves metadata for an object in the filesystem
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*vault.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	filePath, err := b.path(objectKey)
	if err != nil {
		return nil, err
	}

	// Check if file exists
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, vault.ErrObjectNotFound
	} else if err != nil {
		return nil, &vault.StorageError{Backend: "fs", Key: objectKey, Op: "stat", Err: err}
	}
	if info.IsDir() {
		return nil, vault.ErrObjectNotFound
	}

	// Detect content type
	contentType := "application/octet-stream"
	if file, err := os.Open(filePath); err == nil {
		defer file.Close()
		buffer := make([]byte, 512)
		if n, err := file.Read(buffer); err == nil {
			contentType = http.DetectContentType(buffer[:n])
		}
	}

	return &vault.ObjectMeta{
		Key:         objectKey,
		Size:        info.Size(),
		ContentType: contentType,
		UpdatedAt:   info.ModTime(),
	}, nil
}

// Upload writes content to the filesystem, creating parent directories
func (b *Backend) Upload(ctx context.Context, reader io.Reader, params vault.UploadParams) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	filePath, err := b.path(params.ObjectKey)
	if err != nil {
		return err
	}

	// Create directory structure if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return &vault.StorageError{Backend: "fs", Key: params.ObjectKey, Op: "mkdir", Err: err}
	}

	file, err := os.Create(filePath)
	if err != nil {
		return &vault.StorageError{Backend: "fs", Key: params.ObjectKey, Op: "create", Err: err}
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		_ = os.Remove(filePath)
		return &vault.StorageError{Backend: "fs", Key: params.ObjectKey, Op: "write", Err: err}
	}

	return nil
}

// Download opens a file for reading
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	filePath, err := b.path(objectKey)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, vault.ErrObjectNotFound
	} else if err != nil {
		return nil, &vault.StorageError{Backend: "fs", Key: objectKey, Op: "open", Err: err}
	}
	return file, nil
}

// Delete deletes content from the filesystem
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	filePath, err := b.path(objectKey)
	if err != nil {
		return err
	}

	// Check if file exists
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return vault.ErrObjectNotFound
	}

	if err := os.Remove(filePath); err != nil {
		return &vault.StorageError{Backend: "fs", Key: objectKey, Op: "delete", Err: err}
	}

	// Clean up empty directories
	b.cleanupEmptyDirectories(filepath.Dir(filePath))

	return nil
}

// DeletePrefix removes every file whose key starts with prefix, then prunes
// the component folders left empty.
func (b *Backend) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	root, err := b.path(prefix[:strings.LastIndex(prefix, "/")+1])
	if err != nil {
		return 0, err
	}

	deleted := 0
	dirs := map[string]bool{}
	err = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(b.baseDir, p)
		if err != nil || !strings.HasPrefix(filepath.ToSlash(rel), prefix) {
			return nil
		}
		if err := os.Remove(p); err != nil {
			return err
		}
		deleted++
		dirs[filepath.Dir(p)] = true
		return nil
	})

	ordered := make([]string, 0, len(dirs))
	for dir := range dirs {
		ordered = append(ordered, dir)
	}
	sort.Slice(ordered, func(i, j int) bool { return len(ordered[i]) > len(ordered[j]) })
	for _, dir := range ordered {
		b.cleanupEmptyDirectories(dir)
	}

	if err != nil {
		return deleted, &vault.StorageError{Backend: "fs", Key: prefix, Op: "delete_prefix", Err: err}
	}
	return deleted, nil
}

// path resolves a key below baseDir, rejecting keys that escape it.
func (b *Backend) path(objectKey string) (string, error) {
	p := filepath.Join(b.baseDir, filepath.FromSlash(objectKey))
	if p != b.baseDir && !strings.HasPrefix(p, b.baseDir+string(filepath.Separator)) {
		return "", &vault.StorageError{Backend: "fs", Key: objectKey, Op: "resolve", Err: errors.New("key escapes base directory")}
	}
	return p, nil
}

// cleanupEmptyDirectories removes empty component folders up to, but not
// including, the media-kind folders.
func (b *Backend) cleanupEmptyDirectories(dir string) {
	rel, err := filepath.Rel(b.baseDir, dir)
	if err != nil || rel == "." || !strings.Contains(rel, string(filepath.Separator)) {
		return
	}

	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			b.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}
