package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-chi/jwtauth"
	"github.com/tendant/vault/pkg/vault"
	"github.com/tendant/vault/pkg/vault/api"
	"github.com/tendant/vault/pkg/vault/catalog"
	"github.com/tendant/vault/pkg/vault/drafts"
	"github.com/tendant/vault/pkg/vault/media"
	"github.com/tendant/vault/pkg/vault/objectkey"
	"github.com/tendant/vault/pkg/vault/registry"
	"github.com/tendant/vault/pkg/vault/repo/memory"
	"github.com/tendant/vault/pkg/vault/repo/postgres"
	fsstorage "github.com/tendant/vault/pkg/vault/storage/fs"
	gcsstorage "github.com/tendant/vault/pkg/vault/storage/gcs"
	memorystorage "github.com/tendant/vault/pkg/vault/storage/memory"
	s3storage "github.com/tendant/vault/pkg/vault/storage/s3"
)

// App is the wired catalog a server or CLI runs on.
type App struct {
	Config   *ServerConfig
	Service  vault.Service
	Registry *registry.Registry
	Drafts   drafts.Store
	Catalog  *catalog.Catalog
	Media    *media.Adapter // nil when storage is not configured
	Auth     *jwtauth.JWTAuth

	logger  *slog.Logger
	closers []func() error
}

// Build connects every backend the configuration names. Close releases them.
func (c *ServerConfig) Build(ctx context.Context, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{Config: c, Registry: registry.Default(), logger: logger}

	repo, err := app.buildRepository(ctx)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	adapter, err := app.buildMedia(ctx)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to build storage backend: %w", err)
	}
	app.Media = adapter

	options := []vault.Option{
		vault.WithRepository(repo),
		vault.WithReservedSlugs(app.Registry.SlugOwner),
		vault.WithEventSink(vault.NewLogEventSink(logger)),
		vault.WithLogger(logger),
	}
	if adapter != nil {
		options = append(options, vault.WithMediaStore(adapter))
	} else {
		logger.Warn("storage not configured; uploads are disabled", "hint", "set STORAGE_URL")
	}
	app.Service, err = vault.New(options...)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Drafts, err = app.buildDrafts(ctx)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to build draft store: %w", err)
	}

	app.Catalog, err = catalog.New(
		catalog.WithProviders(app.Registry, drafts.NewProvider(app.Drafts), app.Service),
		catalog.WithCategorySource(app.Service),
		catalog.WithLogger(logger),
	)
	if err != nil {
		app.Close()
		return nil, err
	}

	if c.AdminJWTSecret != "" {
		app.Auth = jwtauth.New("HS256", []byte(c.AdminJWTSecret), nil)
	} else if c.Environment == "production" {
		logger.Warn("ADMIN_JWT_SECRET not set; write routes are unauthenticated")
	}

	return app, nil
}

// Handler returns the HTTP API over the app.
func (a *App) Handler() *api.Handler {
	options := []api.Option{
		api.WithDrafts(a.Drafts),
		api.WithLogger(a.logger),
		api.WithMaxUploadSize(a.Config.MaxUploadSize),
		api.WithHealthInfo(a.HealthInfo()),
	}
	if a.Media != nil {
		options = append(options, api.WithMedia(a.Media))
	}
	if a.Auth != nil {
		options = append(options, api.WithAuth(a.Auth))
	}
	return api.NewHandler(a.Service, a.Catalog, options...)
}

// HealthInfo describes the configured backends.
func (a *App) HealthInfo() api.HealthInfo {
	info := api.HealthInfo{
		Environment: a.Config.Environment,
		Database:    a.Config.DatabaseType,
		Storage:     a.Config.Storage.Type,
		Drafts:      "memory",
	}
	if info.Storage == StorageNone {
		info.Storage = "none"
	}
	if a.Config.RedisURL != "" {
		info.Drafts = "redis"
	}
	return info
}

// Close releases pools and clients in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) buildRepository(ctx context.Context) (vault.Repository, error) {
	c := a.Config
	switch c.DatabaseType {
	case DatabaseMemory:
		a.logger.Warn("database not configured; components are kept in memory and lost on restart", "hint", "set DATABASE_URL")
		return memory.New(), nil
	case DatabasePostgres:
		if c.AutoMigrate {
			if err := postgres.Migrate(ctx, c.DatabaseURL, c.DBSchema); err != nil {
				return nil, err
			}
		}
		pool, err := postgres.Connect(ctx, c.DatabaseURL, c.DBSchema)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error {
			pool.Close()
			return nil
		})
		return postgres.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

func (a *App) buildMedia(ctx context.Context) (*media.Adapter, error) {
	store, err := a.buildBlobStore(ctx)
	if err != nil || store == nil {
		return nil, err
	}

	keys, err := objectkey.New(a.Config.KeyLayout)
	if err != nil {
		return nil, err
	}
	return media.New(store, media.WithKeyGenerator(keys), media.WithLogger(a.logger)), nil
}

func (a *App) buildBlobStore(ctx context.Context) (vault.BlobStore, error) {
	c := a.Config
	switch c.Storage.Type {
	case StorageNone:
		return nil, nil
	case StorageMemory:
		return memorystorage.New(c.localURLPrefix()), nil
	case StorageFS:
		cfg := c.Storage.FS
		cfg.URLPrefix = c.localURLPrefix()
		return fsstorage.New(cfg)
	case StorageS3:
		return s3storage.New(c.Storage.S3)
	case StorageGCS:
		backend, err := gcsstorage.New(ctx, c.Storage.GCS)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, backend.Close)
		return backend, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
}

func (a *App) buildDrafts(ctx context.Context) (drafts.Store, error) {
	if a.Config.RedisURL == "" {
		return drafts.NewMemoryStore(), nil
	}
	client, err := drafts.Connect(ctx, a.Config.RedisURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)
	return drafts.NewRedisStore(client, a.Config.RedisKey), nil
}
