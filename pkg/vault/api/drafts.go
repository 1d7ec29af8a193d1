package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/vault/pkg/vault"
	"github.com/tendant/vault/pkg/vault/drafts"
)

// ListDrafts handles GET /drafts
func (h *Handler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	list, err := drafts.NewProvider(h.drafts).Components(r.Context())
	if err != nil {
		h.writeError(w, r, "Failed to list drafts", err)
		return
	}
	render.JSON(w, r, list)
}

// GetDraft handles GET /drafts/{id}
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	c, err := drafts.NewProvider(h.drafts).Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "Failed to get draft", err)
		return
	}
	render.JSON(w, r, c)
}

// SaveDraft handles POST /drafts. The body is stored as sent.
func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	var raw vault.Record
	if err := render.DecodeJSON(r.Body, &raw); err != nil {
		h.badRequest(w, r, "Invalid request body", err.Error())
		return
	}

	id, err := h.drafts.Save(r.Context(), raw)
	if err != nil {
		h.writeError(w, r, "Failed to save draft", err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{"id": id})
}

// DeleteDraft handles DELETE /drafts/{id}
func (h *Handler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.drafts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, "Failed to delete draft", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MigrateDrafts handles POST /drafts/migrate
func (h *Handler) MigrateDrafts(w http.ResponseWriter, r *http.Request) {
	results, err := drafts.Migrate(r.Context(), h.drafts, h.service, h.logger)
	if err != nil {
		h.writeError(w, r, "Failed to migrate drafts", err)
		return
	}
	render.JSON(w, r, results)
}
