package api

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"github.com/tendant/vault/pkg/vault"
)

// UploadMedia handles POST /media/upload (multipart: file, componentId).
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, "Failed to upload media", err)
			return
		}
		h.badRequest(w, r, "Invalid multipart form", err.Error())
		return
	}

	componentID := strings.TrimSpace(r.FormValue("componentId"))
	if componentID == "" {
		componentID = strings.TrimSpace(r.FormValue("component_id"))
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.badRequest(w, r, "Missing file", err.Error())
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	stored, err := h.service.UploadMedia(r.Context(), file, componentID, header.Filename, mimeType)
	if err != nil {
		h.writeError(w, r, "Failed to upload media", err)
		return
	}

	h.logger.InfoContext(r.Context(), "Media uploaded", "component_id", componentID, "url", stored.URL, "size", stored.Size)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, stored)
}

// DeleteMedia handles DELETE /media?url=. Deletion is best effort, so the
// response reports whether anything was removed.
func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	target := strings.TrimSpace(r.URL.Query().Get("url"))
	if target == "" {
		h.badRequest(w, r, "Missing url", "the url query parameter is required")
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"url":     target,
		"deleted": h.service.DeleteMedia(r.Context(), target),
	})
}

// MediaExists handles GET /media/exists?url=
func (h *Handler) MediaExists(w http.ResponseWriter, r *http.Request) {
	target := strings.TrimSpace(r.URL.Query().Get("url"))
	if target == "" {
		h.badRequest(w, r, "Missing url", "the url query parameter is required")
		return
	}
	exists, err := h.service.MediaExists(r.Context(), target)
	if err != nil {
		h.writeError(w, r, "Failed to check media", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"url": target, "exists": exists})
}

// Files serves stored objects for backends that live behind the
// application's own origin (fs and memory). Mount it at the URL prefix the
// backend generates.
func (h *Handler) Files() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.media == nil {
			h.writeError(w, r, "Failed to serve media", vault.ErrStorageNotConfigured)
			return
		}

		key, ok := h.fileKey(r.URL.Path)
		if !ok {
			http.NotFound(w, r)
			return
		}

		rc, meta, err := h.media.Open(r.Context(), key)
		if err != nil {
			if vault.IsNotFound(err) {
				http.NotFound(w, r)
				return
			}
			h.writeError(w, r, "Failed to serve media", err)
			return
		}
		defer rc.Close()

		if meta.ContentType != "" {
			w.Header().Set("Content-Type", meta.ContentType)
		}
		if meta.Size > 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
		}
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		if r.Method == http.MethodHead {
			return
		}
		if _, err := io.Copy(w, rc); err != nil {
			h.logger.WarnContext(r.Context(), "Failed to stream media", "key", key, "err", err)
		}
	})
}

// fileKey resolves a request path to an object key. Stores with an absolute
// public base are matched on the path alone.
func (h *Handler) fileKey(p string) (string, bool) {
	store := h.media.Store()
	if key, ok := store.KeyFromURL(p); ok {
		return key, true
	}
	base, err := url.Parse(store.PublicURL(""))
	if err != nil || base.Host == "" {
		return "", false
	}
	return store.KeyFromURL(base.Scheme + "://" + base.Host + p)
}
