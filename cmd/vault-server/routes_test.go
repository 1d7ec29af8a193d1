package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/httplog/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/vault/pkg/vault/config"
)

func setupRouterTest(t *testing.T, opts ...config.Option) (http.Handler, *config.App) {
	cfg, err := config.Load(opts...)
	require.NoError(t, err)

	app, err := cfg.Build(context.Background(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })

	return newRouter(app, httplog.NewLogger("vault-test", httplog.Options{Concise: true})), app
}

func TestRouterServesAPI(t *testing.T) {
	router, _ := setupRouterTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/components/slug/glass-card", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source":"registry"`)
}

func TestRouterCORSPreflight(t *testing.T) {
	router, _ := setupRouterTest(t, config.WithEnvironment("development"))

	req := httptest.NewRequest(http.MethodOptions, "/api/components", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterMountsLocalFiles(t *testing.T) {
	router, app := setupRouterTest(t, config.WithMemoryStorage("/uploads"))

	stored, err := app.Media.Upload(context.Background(), strings.NewReader("gif"), "c1", "loop.gif", "image/gif")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, stored.URL, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/gif", w.Header().Get("Content-Type"))

	req = httptest.NewRequest(http.MethodGet, "/uploads/images/c1/missing.gif", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
