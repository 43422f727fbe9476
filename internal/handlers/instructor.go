package handlers

import (
	"net/http"

	"github.com/diewo77/go-lessons/httpx"
	"github.com/diewo77/go-lessons/internal/services"
	"github.com/go-chi/chi/v5"
)

// DirectoryHandler serves the public instructor directory.
type DirectoryHandler struct {
	profiles *services.ProfileService
	slots    *services.SlotService
}

func NewDirectoryHandler(profiles *services.ProfileService, slots *services.SlotService) *DirectoryHandler {
	return &DirectoryHandler{profiles: profiles, slots: slots}
}

// Search lists verified instructors. Query: category, q, limit.
func (h *DirectoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.profiles.SearchInstructors(r.Context(), q.Get("category"), q.Get("q"), queryInt(r, "limit"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *DirectoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.PublicInstructorProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Slots lists the instructor's bookable slots.
func (h *DirectoryHandler) Slots(w http.ResponseWriter, r *http.Request) {
	out, err := h.slots.ListAvailable(r.Context(), chi.URLParam(r, "id"), queryInt(r, "limit"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}
