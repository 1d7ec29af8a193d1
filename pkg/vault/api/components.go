package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/vault/pkg/vault"
	"github.com/tendant/vault/pkg/vault/catalog"
)

// ListComponents handles GET /components?category=&tag=&featured=&source=
func (h *Handler) ListComponents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := catalog.Filters{
		ListFilters: vault.ListFilters{
			Category: q.Get("category"),
			Tag:      q.Get("tag"),
		},
	}
	if v := q.Get("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			h.badRequest(w, r, "Invalid featured filter", err.Error())
			return
		}
		filters.Featured = &featured
	}
	if v := q.Get("source"); v != "" {
		filters.Source = vault.ParseSource(v)
		if filters.Source == "" {
			h.badRequest(w, r, "Invalid source filter", "source must be registry, draft or dynamic")
			return
		}
	}

	components, err := h.catalog.List(r.Context(), filters)
	if err != nil {
		h.writeError(w, r, "Failed to list components", err)
		return
	}
	render.JSON(w, r, components)
}

// GetComponent handles GET /components/{id}
func (h *Handler) GetComponent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := h.catalog.ByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "Failed to get component", err)
		return
	}
	render.JSON(w, r, c)
}

// GetComponentBySlug handles GET /components/slug/{slug}
func (h *Handler) GetComponentBySlug(w http.ResponseWriter, r *http.Request) {
	sl := chi.URLParam(r, "slug")
	c, err := h.catalog.BySlug(r.Context(), sl)
	if err != nil {
		h.writeError(w, r, "Failed to get component", err)
		return
	}
	render.JSON(w, r, c)
}

// CreateComponent handles POST /components. Both field spellings are
// accepted.
func (h *Handler) CreateComponent(w http.ResponseWriter, r *http.Request) {
	var raw vault.Record
	if err := render.DecodeJSON(r.Body, &raw); err != nil {
		h.badRequest(w, r, "Invalid request body", err.Error())
		return
	}

	c, err := h.service.CreateComponent(r.Context(), vault.CreateRequestFromRecord(raw))
	if err != nil {
		h.writeError(w, r, "Failed to create component", err)
		return
	}

	h.logger.InfoContext(r.Context(), "Component created", "id", c.ID, "slug", c.Slug)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, c)
}

// UpdateComponent handles PUT /components/{id}. Updating a component that
// only exists in the registry or the drafts stores an edited copy in the
// dynamic store, which then overrides the original.
func (h *Handler) UpdateComponent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var raw vault.Record
	if err := render.DecodeJSON(r.Body, &raw); err != nil {
		h.badRequest(w, r, "Invalid request body", err.Error())
		return
	}
	patch := vault.PatchFromRecord(raw)

	c, err := h.service.UpdateComponent(r.Context(), id, patch)
	if vault.IsNotFound(err) {
		c, err = h.override(r, id, patch)
	}
	if err != nil {
		h.writeError(w, r, "Failed to update component", err)
		return
	}

	h.logger.InfoContext(r.Context(), "Component updated", "id", c.ID)
	render.JSON(w, r, c)
}

func (h *Handler) override(r *http.Request, id string, patch vault.UpdateComponentRequest) (*vault.Component, error) {
	existing, err := h.catalog.ByID(r.Context(), id)
	if err != nil {
		return nil, err
	}

	req := vault.CreateRequestFromComponent(patch.Apply(*existing))
	if patch.RegenerateSlug && patch.Slug == nil {
		req.Slug = ""
	}
	h.logger.InfoContext(r.Context(), "Overriding component", "id", id, "source", existing.Source)
	return h.service.CreateComponent(r.Context(), req)
}

// DeleteComponent handles DELETE /components/{id}
func (h *Handler) DeleteComponent(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if err := h.service.DeleteComponent(r.Context(), id); err != nil {
		h.writeError(w, r, "Failed to delete component", err)
		return
	}

	h.logger.InfoContext(r.Context(), "Component deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// ListCategories handles GET /categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		h.writeError(w, r, "Failed to list categories", err)
		return
	}
	render.JSON(w, r, categories)
}

// CreateCategory handles POST /categories
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req vault.CreateCategoryRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.badRequest(w, r, "Invalid request body", err.Error())
		return
	}

	row, err := h.service.CreateCategory(r.Context(), req)
	if err != nil {
		h.writeError(w, r, "Failed to create category", err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, row)
}

// ListTags handles GET /tags
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.catalog.Tags(r.Context())
	if err != nil {
		h.writeError(w, r, "Failed to list tags", err)
		return
	}
	render.JSON(w, r, tags)
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "ok",
		"info":   h.health,
	})
}
