package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// EnvConfig lists the environment variables WithEnv reads. Unset variables
// leave the corresponding setting untouched.
type EnvConfig struct {
	Port          string `env:"PORT" env-description:"HTTP listen port (default 8080)"`
	Environment   string `env:"ENVIRONMENT" env-description:"development, production or testing"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" env-description:"Absolute origin prepended to locally served media URLs"`

	DatabaseURL   string `env:"DATABASE_URL" env-description:"empty or memory for the in-memory store, postgres://... for Postgres"`
	DBSchema      string `env:"DB_SCHEMA" env-description:"Postgres search_path"`
	DBAutoMigrate string `env:"DB_AUTO_MIGRATE" env-description:"Apply embedded migrations at startup (default true)"`

	StorageURL       string `env:"STORAGE_URL" env-description:"memory://, file:///dir, s3://bucket?region=&endpoint=&path_style=&public_url= or gs://bucket?endpoint=&public_url=; empty disables uploads"`
	StorageURLPrefix string `env:"STORAGE_URL_PREFIX" env-description:"Path local backends are served under (default /uploads)"`
	StorageKeyLayout string `env:"STORAGE_KEY_LAYOUT" env-description:"folder or sharded"`
	MaxUploadSize    int64  `env:"MAX_UPLOAD_SIZE" env-description:"Upload limit in bytes"`

	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	AWSRegion          string `env:"AWS_REGION"`

	GCSProjectID       string `env:"GCS_PROJECT_ID"`
	GCSCredentialsFile string `env:"GOOGLE_APPLICATION_CREDENTIALS"`

	RedisURL string `env:"REDIS_URL" env-description:"redis://... for shared drafts; empty keeps drafts in memory"`
	RedisKey string `env:"REDIS_DRAFTS_KEY" env-description:"Hash holding the drafts (default vault:drafts)"`

	AdminJWTSecret string `env:"ADMIN_JWT_SECRET" env-description:"HS256 secret; when set, write routes need a bearer token"`
}

// WithEnv applies environment variable overrides.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env EnvConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("read environment: %w", err)
		}
		return env.apply(c)
	}
}

// EnvDescription renders the variable list for help output.
func EnvDescription() (string, error) {
	header := "Environment variables:"
	return cleanenv.GetDescription(&EnvConfig{}, &header)
}

func (e EnvConfig) apply(c *ServerConfig) error {
	setString(&c.Port, e.Port)
	setString(&c.Environment, e.Environment)
	setString(&c.PublicBaseURL, e.PublicBaseURL)
	setString(&c.DBSchema, e.DBSchema)
	setString(&c.KeyLayout, e.StorageKeyLayout)
	setString(&c.Storage.URLPrefix, e.StorageURLPrefix)
	setString(&c.RedisURL, e.RedisURL)
	setString(&c.RedisKey, e.RedisKey)
	setString(&c.AdminJWTSecret, e.AdminJWTSecret)
	if e.MaxUploadSize > 0 {
		c.MaxUploadSize = e.MaxUploadSize
	}

	if e.DBAutoMigrate != "" {
		v, err := strconv.ParseBool(e.DBAutoMigrate)
		if err != nil {
			return fmt.Errorf("invalid boolean for DB_AUTO_MIGRATE: %w", err)
		}
		c.AutoMigrate = v
	}

	if err := applyDatabaseURL(e.DatabaseURL, c); err != nil {
		return err
	}
	if err := applyStorageURL(e.StorageURL, c); err != nil {
		return err
	}

	switch c.Storage.Type {
	case StorageS3:
		setString(&c.Storage.S3.AccessKeyID, e.AWSAccessKeyID)
		setString(&c.Storage.S3.SecretAccessKey, e.AWSSecretAccessKey)
		if c.Storage.S3.Region == "" {
			c.Storage.S3.Region = e.AWSRegion
		}
	case StorageGCS:
		setString(&c.Storage.GCS.ProjectID, e.GCSProjectID)
		setString(&c.Storage.GCS.CredentialsFile, e.GCSCredentialsFile)
	}
	return nil
}

// applyDatabaseURL detects the database type from the URL scheme
func applyDatabaseURL(dbURL string, c *ServerConfig) error {
	switch {
	case dbURL == "":
		return nil
	case dbURL == "memory":
		c.DatabaseType = DatabaseMemory
		c.DatabaseURL = ""
	case strings.HasPrefix(dbURL, "postgresql://"), strings.HasPrefix(dbURL, "postgres://"):
		c.DatabaseType = DatabasePostgres
		c.DatabaseURL = dbURL
	default:
		return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory' or 'postgresql://...')", redact(dbURL))
	}
	return nil
}

// applyStorageURL configures the blob store from a connection string
func applyStorageURL(storageURL string, c *ServerConfig) error {
	if storageURL == "" {
		return nil
	}
	if storageURL == "memory" || storageURL == "memory://" {
		c.Storage.Type = StorageMemory
		return nil
	}

	u, err := url.Parse(storageURL)
	if err != nil {
		return fmt.Errorf("invalid STORAGE_URL: %w", err)
	}
	q := u.Query()

	switch u.Scheme {
	case "file":
		dir := u.Host + u.Path
		if dir == "" {
			return fmt.Errorf("filesystem path cannot be empty in STORAGE_URL")
		}
		c.Storage.Type = StorageFS
		c.Storage.FS.BaseDir = dir
	case "s3":
		if u.Host == "" {
			return fmt.Errorf("S3 bucket name cannot be empty in STORAGE_URL")
		}
		pathStyle, err := queryBool(q, "path_style", false)
		if err != nil {
			return err
		}
		create, err := queryBool(q, "create_bucket", true)
		if err != nil {
			return err
		}
		c.Storage.Type = StorageS3
		c.Storage.S3.Bucket = u.Host
		c.Storage.S3.Region = q.Get("region")
		c.Storage.S3.Endpoint = q.Get("endpoint")
		c.Storage.S3.UsePathStyle = pathStyle
		c.Storage.S3.PublicURL = q.Get("public_url")
		c.Storage.S3.CreateBucketIfNotExist = create
		if sse := q.Get("sse"); sse != "" {
			c.Storage.S3.EnableSSE = true
			c.Storage.S3.SSEAlgorithm = sse
			c.Storage.S3.SSEKMSKeyID = q.Get("kms_key_id")
		}
	case "gs":
		if u.Host == "" {
			return fmt.Errorf("GCS bucket name cannot be empty in STORAGE_URL")
		}
		create, err := queryBool(q, "create_bucket", true)
		if err != nil {
			return err
		}
		c.Storage.Type = StorageGCS
		c.Storage.GCS.Bucket = u.Host
		c.Storage.GCS.Endpoint = q.Get("endpoint")
		c.Storage.GCS.PublicURL = q.Get("public_url")
		c.Storage.GCS.ProjectID = q.Get("project")
		c.Storage.GCS.CreateBucketIfNotExist = create
	default:
		return fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', 's3://...' or 'gs://...')", storageURL)
	}
	return nil
}

func queryBool(q url.Values, key string, def bool) (bool, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("invalid boolean for STORAGE_URL %s: %w", key, err)
	}
	return v, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// redact hides the password of a connection string
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	return u.Redacted()
}
