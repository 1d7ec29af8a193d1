// Package config turns environment settings into a wired catalog: the
// dynamic store, the blob store behind the media adapter, the draft store
// and the aggregated catalog over the registry.
package config

import (
	"errors"
	"fmt"
	"strings"

	fsstorage "github.com/tendant/vault/pkg/vault/storage/fs"
	gcsstorage "github.com/tendant/vault/pkg/vault/storage/gcs"
	s3storage "github.com/tendant/vault/pkg/vault/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:          "8080",
		Environment:   "development",
		DatabaseType:  DatabaseMemory,
		AutoMigrate:   true,
		Storage:       StorageConfig{Type: StorageNone, URLPrefix: "/uploads"},
		KeyLayout:     "folder",
		MaxUploadSize: 50 << 20,
	}
}

const (
	DatabaseMemory   = "memory"
	DatabasePostgres = "postgres"
)

const (
	StorageNone   = ""
	StorageMemory = "memory"
	StorageFS     = "fs"
	StorageS3     = "s3"
	StorageGCS    = "gcs"
)

// ServerConfig represents server configuration for the vault service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// PublicBaseURL makes media URLs of local backends absolute
	PublicBaseURL string

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"
	DBSchema     string // Postgres search_path, optional
	AutoMigrate  bool

	// Storage configuration. StorageNone leaves uploads disabled.
	Storage   StorageConfig
	KeyLayout string // "folder" or "sharded"

	// Drafts live in Redis when set, in memory otherwise
	RedisURL string
	RedisKey string

	// AdminJWTSecret protects write routes with HS256 bearer tokens
	AdminJWTSecret string

	MaxUploadSize int64
}

// StorageConfig selects one blob store. Only the block matching Type is read.
type StorageConfig struct {
	Type      string
	URLPrefix string // path local backends are served under

	FS  fsstorage.Config
	S3  s3storage.Config
	GCS gcsstorage.Config
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != DatabaseMemory && c.DatabaseType != DatabasePostgres {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == DatabasePostgres && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.Storage.Type {
	case StorageNone, StorageMemory:
	case StorageFS:
		if c.Storage.FS.BaseDir == "" {
			return errors.New("filesystem storage requires a base directory")
		}
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			return errors.New("s3 storage requires a bucket")
		}
	case StorageGCS:
		if c.Storage.GCS.Bucket == "" {
			return errors.New("gcs storage requires a bucket")
		}
	default:
		return fmt.Errorf("unsupported storage type %q", c.Storage.Type)
	}

	if c.MaxUploadSize <= 0 {
		return errors.New("max upload size must be positive")
	}

	return nil
}

// StorageConfigured reports whether uploads have a backend.
func (c *ServerConfig) StorageConfigured() bool {
	return c.Storage.Type != StorageNone
}

// LocalPrefix is the path local backends serve files under, or "" for
// bucket backends that serve their own objects.
func (c *ServerConfig) LocalPrefix() string {
	switch c.Storage.Type {
	case StorageMemory, StorageFS:
		return "/" + strings.Trim(c.Storage.URLPrefix, "/")
	}
	return ""
}

// localURLPrefix is the public base handed to local backends.
func (c *ServerConfig) localURLPrefix() string {
	prefix := c.LocalPrefix()
	if c.PublicBaseURL == "" {
		return prefix
	}
	return strings.TrimSuffix(c.PublicBaseURL, "/") + prefix
}
