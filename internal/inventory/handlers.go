package inventory

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Handler exposes read-only stock endpoints.
type Handler struct {
	store Store
}

// NewHandler constructs a Handler over store.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Routes mounts GET /inventory and GET /inventory/{itemID}.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/inventory", h.Levels)
	r.Get("/inventory/{itemID}", h.Item)
}

// Levels handles GET /inventory.
func (h *Handler) Levels(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "inventory not configured", nil)
		return
	}
	levels, err := h.store.Levels(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, levels)
}

// Item handles GET /inventory/{itemID}.
func (h *Handler) Item(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "inventory not configured", nil)
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "itemID"))
	if err != nil || id < 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "itemID must be a non-negative integer", nil)
		return
	}
	qty, err := h.store.Stock(r.Context(), id)
	if errors.Is(err, ErrUnknownItem) {
		common.WriteError(w, common.NewAppError("ITEM_NOT_TRACKED", "item not tracked by inventory", http.StatusNotFound, err))
		return
	}
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, Level{ItemID: id, Quantity: qty})
}
