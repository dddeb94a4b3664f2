package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Handler exposes catalog lookup endpoints.
type Handler struct {
	service *Service
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service}
}

// Item handles GET /api/v1/items/{id}.
func (h *Handler) Item(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "id must be a non-negative integer", nil)
		return
	}
	item, err := h.service.Lookup(r.Context(), id)
	if err != nil {
		common.WriteError(w, ToAppError(err))
		return
	}
	common.Data(w, http.StatusOK, item)
}

// ToAppError maps catalog errors onto their HTTP representation.
func ToAppError(err error) error {
	switch {
	case errors.Is(err, ErrItemNotFound):
		return common.NewAppError("ITEM_NOT_FOUND", "item not found", http.StatusNotFound, err)
	case errors.Is(err, ErrUnavailable):
		return common.NewAppError("CATALOG_UNAVAILABLE", "catalog temporarily unavailable", http.StatusServiceUnavailable, err)
	default:
		return err
	}
}
