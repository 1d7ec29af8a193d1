package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/vault/pkg/vault"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message string   `json:"message"`
	Error   string   `json:"error"`
	Fields  []string `json:"fields,omitempty"`
}

// writeError maps err onto a status code. Causes of server-side failures are
// logged and replaced with a generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status, resp := h.errorResponse(message, err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), message, "path", r.URL.Path, "status", status, "err", err)
	} else {
		h.logger.WarnContext(r.Context(), message, "path", r.URL.Path, "status", status, "err", err)
	}
	render.Status(r, status)
	render.JSON(w, r, resp)
}

func (h *Handler) errorResponse(message string, err error) (int, ErrorResponse) {
	var (
		validation  *vault.ValidationError
		persistence *vault.PersistenceError
		mediaErr    *vault.MediaError
		tooLarge    *http.MaxBytesError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, ErrorResponse{Message: message, Error: validation.Error(), Fields: validation.Fields}
	case vault.IsNotFound(err):
		return http.StatusNotFound, ErrorResponse{Message: message, Error: err.Error()}
	case errors.Is(err, vault.ErrStorageNotConfigured):
		return http.StatusServiceUnavailable, ErrorResponse{Message: message, Error: err.Error()}
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, ErrorResponse{Message: message, Error: "upload exceeds the size limit"}
	case errors.As(err, &mediaErr):
		return http.StatusBadGateway, ErrorResponse{Message: message, Error: "media storage failed"}
	case errors.As(err, &persistence):
		return http.StatusInternalServerError, ErrorResponse{Message: message, Error: "persistence failure"}
	default:
		return http.StatusInternalServerError, ErrorResponse{Message: message, Error: "internal error"}
	}
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, message, detail string) {
	h.logger.WarnContext(r.Context(), message, "path", r.URL.Path, "detail", detail)
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ErrorResponse{Message: message, Error: detail})
}
