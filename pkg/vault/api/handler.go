// Package api exposes the catalog over HTTP with chi. Reads go through the
// aggregated catalog; writes go to the dynamic component service.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/tendant/vault/pkg/vault"
	"github.com/tendant/vault/pkg/vault/catalog"
	"github.com/tendant/vault/pkg/vault/drafts"
	"github.com/tendant/vault/pkg/vault/media"
)

// DefaultMaxUploadSize caps multipart uploads.
const DefaultMaxUploadSize = 50 << 20

// HealthInfo is reported by GET /health.
type HealthInfo struct {
	Environment string `json:"environment"`
	Database    string `json:"database"`
	Storage     string `json:"storage"`
	Drafts      string `json:"drafts"`
}

// Handler serves the component API.
type Handler struct {
	service       vault.Service
	catalog       *catalog.Catalog
	drafts        drafts.Store
	media         *media.Adapter
	auth          *jwtauth.JWTAuth
	logger        *slog.Logger
	maxUploadSize int64
	health        HealthInfo
}

// Option configures a Handler.
type Option func(*Handler)

// WithDrafts enables the /drafts routes.
func WithDrafts(store drafts.Store) Option {
	return func(h *Handler) {
		h.drafts = store
	}
}

// WithMedia enables serving stored files from the adapter's backend.
func WithMedia(adapter *media.Adapter) Option {
	return func(h *Handler) {
		h.media = adapter
	}
}

// WithAuth requires a valid bearer token on every write route.
func WithAuth(auth *jwtauth.JWTAuth) Option {
	return func(h *Handler) {
		h.auth = auth
	}
}

// WithLogger sets the handler logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithMaxUploadSize overrides DefaultMaxUploadSize.
func WithMaxUploadSize(n int64) Option {
	return func(h *Handler) {
		h.maxUploadSize = n
	}
}

// WithHealthInfo sets what GET /health reports.
func WithHealthInfo(info HealthInfo) Option {
	return func(h *Handler) {
		h.health = info
	}
}

// NewHandler creates a handler over service and the aggregated catalog.
func NewHandler(service vault.Service, cat *catalog.Catalog, options ...Option) *Handler {
	h := &Handler{
		service:       service,
		catalog:       cat,
		logger:        slog.Default(),
		maxUploadSize: DefaultMaxUploadSize,
	}
	for _, option := range options {
		option(h)
	}
	return h
}

// Routes returns the API router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", h.Health)

	// Public reads
	r.Get("/components", h.ListComponents)
	r.Get("/components/slug/{slug}", h.GetComponentBySlug)
	r.Get("/components/{id}", h.GetComponent)
	r.Get("/categories", h.ListCategories)
	r.Get("/tags", h.ListTags)
	r.Get("/media/exists", h.MediaExists)

	// Admin writes
	r.Group(func(r chi.Router) {
		if h.auth != nil {
			r.Use(jwtauth.Verifier(h.auth))
			r.Use(jwtauth.Authenticator)
		}

		r.Post("/components", h.CreateComponent)
		r.Put("/components/{id}", h.UpdateComponent)
		r.Delete("/components/{id}", h.DeleteComponent)
		r.Post("/categories", h.CreateCategory)

		r.With(h.limitBody).Post("/media/upload", h.UploadMedia)
		r.Delete("/media", h.DeleteMedia)

		if h.drafts != nil {
			r.Get("/drafts", h.ListDrafts)
			r.Post("/drafts", h.SaveDraft)
			r.Post("/drafts/migrate", h.MigrateDrafts)
			r.Get("/drafts/{id}", h.GetDraft)
			r.Delete("/drafts/{id}", h.DeleteDraft)
		}
	})

	return r
}

func (h *Handler) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
		next.ServeHTTP(w, r)
	})
}
