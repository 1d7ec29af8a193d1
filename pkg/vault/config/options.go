package config

import (
	"fmt"

	gcsstorage "github.com/tendant/vault/pkg/vault/storage/gcs"
	s3storage "github.com/tendant/vault/pkg/vault/storage/s3"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithPublicBaseURL makes locally served media URLs absolute
func WithPublicBaseURL(base string) Option {
	return func(c *ServerConfig) error {
		c.PublicBaseURL = base
		return nil
	}
}

// WithDatabase configures the database backend
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		if dbType != DatabaseMemory && dbType != DatabasePostgres {
			return fmt.Errorf("database type must be 'memory' or 'postgres', got: %s", dbType)
		}
		if dbType == DatabasePostgres && url == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithAutoMigrate toggles applying migrations at startup
func WithAutoMigrate(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.AutoMigrate = enabled
		return nil
	}
}

// WithMemoryStorage keeps uploads in process memory, served under urlPrefix
func WithMemoryStorage(urlPrefix string) Option {
	return func(c *ServerConfig) error {
		c.Storage.Type = StorageMemory
		if urlPrefix != "" {
			c.Storage.URLPrefix = urlPrefix
		}
		return nil
	}
}

// WithFilesystemStorage stores uploads below baseDir, served under urlPrefix
func WithFilesystemStorage(baseDir, urlPrefix string) Option {
	return func(c *ServerConfig) error {
		if baseDir == "" {
			return fmt.Errorf("filesystem base directory cannot be empty")
		}
		c.Storage.Type = StorageFS
		c.Storage.FS.BaseDir = baseDir
		if urlPrefix != "" {
			c.Storage.URLPrefix = urlPrefix
		}
		return nil
	}
}

// WithS3Storage stores uploads in an S3 bucket
func WithS3Storage(cfg s3storage.Config) Option {
	return func(c *ServerConfig) error {
		if cfg.Bucket == "" {
			return fmt.Errorf("S3 bucket cannot be empty")
		}
		if cfg.Region == "" {
			cfg.Region = "us-east-1"
		}
		c.Storage.Type = StorageS3
		c.Storage.S3 = cfg
		return nil
	}
}

// WithGCSStorage stores uploads in a Google Cloud Storage bucket
func WithGCSStorage(cfg gcsstorage.Config) Option {
	return func(c *ServerConfig) error {
		if cfg.Bucket == "" {
			return fmt.Errorf("GCS bucket cannot be empty")
		}
		c.Storage.Type = StorageGCS
		c.Storage.GCS = cfg
		return nil
	}
}

// WithKeyLayout selects the object key layout ("folder" or "sharded")
func WithKeyLayout(layout string) Option {
	return func(c *ServerConfig) error {
		c.KeyLayout = layout
		return nil
	}
}

// WithRedisDrafts keeps drafts in Redis
func WithRedisDrafts(redisURL, key string) Option {
	return func(c *ServerConfig) error {
		if redisURL == "" {
			return fmt.Errorf("redis URL cannot be empty")
		}
		c.RedisURL = redisURL
		c.RedisKey = key
		return nil
	}
}

// WithAdminSecret requires bearer tokens signed with secret on write routes
func WithAdminSecret(secret string) Option {
	return func(c *ServerConfig) error {
		c.AdminJWTSecret = secret
		return nil
	}
}

// WithMaxUploadSize caps upload bodies
func WithMaxUploadSize(n int64) Option {
	return func(c *ServerConfig) error {
		if n <= 0 {
			return fmt.Errorf("max upload size must be positive, got: %d", n)
		}
		c.MaxUploadSize = n
		return nil
	}
}
