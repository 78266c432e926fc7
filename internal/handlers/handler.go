// Package handlers exposes the storage core over HTTP: album listing,
// ranged audio delivery and cover art. It owns the translation from
// provider results and errors to status codes; the providers stay
// protocol-agnostic.
package handlers

import (
	"errors"
	"net/http"

	"github.com/phonolite/phonolite/internal/logger"
	"github.com/phonolite/phonolite/internal/provider"
)

type Handler struct {
	Manager *provider.Manager
	Logger  *logger.Logger
}

func NewHandler(manager *provider.Manager, log *logger.Logger) *Handler {
	return &Handler{
		Manager: manager,
		Logger:  log.WithComponent("http"),
	}
}

// writeError maps the provider error taxonomy to response codes:
// absent resources turn into 404, bad ranges into 416, operator-level
// layout errors and backend outages surface as loud 5xx.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, provider.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, provider.ErrInvalidRange):
		http.Error(w, "range not satisfiable", http.StatusRequestedRangeNotSatisfiable)
	case errors.Is(err, provider.ErrInvalidLayout):
		h.Logger.Error("storage layout error", "path", r.URL.Path, "error", err)
		http.Error(w, "storage layout error", http.StatusInternalServerError)
	case provider.IsBackendError(err):
		h.Logger.Error("backend error", "path", r.URL.Path, "error", err)
		http.Error(w, "backend unavailable", http.StatusBadGateway)
	default:
		h.Logger.Error("internal error", "path", r.URL.Path, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
