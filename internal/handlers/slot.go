package handlers

import (
	"net/http"

	"github.com/diewo77/go-lessons/httpx"
	"github.com/diewo77/go-lessons/internal/services"
	"github.com/go-chi/chi/v5"
)

// SlotHandler lets instructors manage their own slots.
type SlotHandler struct {
	slots *services.SlotService
}

func NewSlotHandler(slots *services.SlotService) *SlotHandler {
	return &SlotHandler{slots: slots}
}

func (h *SlotHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.slots.ListMine(r.Context(), caller(r))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *SlotHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateSlotInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	slot, err := h.slots.CreateSlot(r.Context(), caller(r), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, slot)
}

func (h *SlotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.slots.DeleteSlot(r.Context(), caller(r), chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
