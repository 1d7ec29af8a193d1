package config_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/vault/pkg/vault"
	"github.com/tendant/vault/pkg/vault/config"
	s3storage "github.com/tendant/vault/pkg/vault/storage/s3"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, config.DatabaseMemory, cfg.DatabaseType)
	assert.False(t, cfg.StorageConfigured())
	assert.Equal(t, "", cfg.LocalPrefix())
	assert.True(t, cfg.AutoMigrate)
}

func TestOptionValidation(t *testing.T) {
	tests := []struct {
		name string
		opt  config.Option
	}{
		{"empty port", config.WithPort("")},
		{"unknown database", config.WithDatabase("mysql", "x")},
		{"postgres without url", config.WithDatabase("postgres", "")},
		{"filesystem without dir", config.WithFilesystemStorage("", "")},
		{"s3 without bucket", config.WithS3Storage(s3storage.Config{})},
		{"zero upload size", config.WithMaxUploadSize(0)},
		{"redis without url", config.WithRedisDrafts("", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(tt.opt)
			assert.Error(t, err)
		})
	}
}

func TestWithS3StorageDefaultsRegion(t *testing.T) {
	cfg, err := config.Load(config.WithS3Storage(s3storage.Config{Bucket: "media"}))
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", cfg.Storage.S3.Region)
	assert.Equal(t, "", cfg.LocalPrefix())
}

func TestBuildInMemory(t *testing.T) {
	cfg, err := config.Load(config.WithMemoryStorage("/files"), config.WithAdminSecret("secret"))
	require.NoError(t, err)

	app, err := cfg.Build(context.Background(), nil)
	require.NoError(t, err)
	defer app.Close()

	require.NotNil(t, app.Media)
	require.NotNil(t, app.Auth)

	all, err := app.Catalog.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, app.Registry.Len())

	// registry slugs are reserved for their owners
	c, err := app.Service.CreateComponent(context.Background(), vault.CreateComponentRequest{
		Title: "Burger Menu Button", Description: "d", Category: "Buttons",
	})
	require.NoError(t, err)
	assert.Equal(t, "burger-menu-button-2", c.Slug)

	info := app.HealthInfo()
	assert.Equal(t, "memory", info.Storage)
	assert.Equal(t, "memory", info.Drafts)
}

func TestBuildFilesystemServesUploads(t *testing.T) {
	cfg, err := config.Load(config.WithFilesystemStorage(t.TempDir(), "/uploads"))
	require.NoError(t, err)

	app, err := cfg.Build(context.Background(), nil)
	require.NoError(t, err)
	defer app.Close()
	require.NoError(t, app.Media.EnsureReady(context.Background()))

	c, err := app.Service.CreateComponent(context.Background(), vault.CreateComponentRequest{
		Title: "Ripple", Description: "d", Category: "Buttons",
	})
	require.NoError(t, err)

	stored, err := app.Media.Upload(context.Background(), strings.NewReader("png-bytes"), c.ID, "ripple.png", "image/png")
	require.NoError(t, err)

	handler := app.Handler()
	router := chi.NewRouter()
	router.Mount("/api", handler.Routes())
	router.Handle(cfg.LocalPrefix()+"/*", handler.Files())

	req := httptest.NewRequest(http.MethodGet, stored.URL, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"storage":"fs"`)
}

func TestBuildWithoutStorage(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	app, err := cfg.Build(context.Background(), nil)
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.Media)
	assert.Nil(t, app.Auth)
	_, err = app.Service.UploadMedia(context.Background(), strings.NewReader("x"), "c1", "a.png", "image/png")
	assert.ErrorIs(t, err, vault.ErrStorageNotConfigured)
	assert.Equal(t, "none", app.HealthInfo().Storage)
}
