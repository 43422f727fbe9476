package handlers

import (
	"net/http"

	"github.com/diewo77/go-lessons/httpx"
	"github.com/diewo77/go-lessons/internal/services"
	"github.com/go-chi/chi/v5"
)

// AdminHandler exposes the instructor verification queue.
type AdminHandler struct {
	verification *services.VerificationService
}

func NewAdminHandler(verification *services.VerificationService) *AdminHandler {
	return &AdminHandler{verification: verification}
}

func (h *AdminHandler) Pending(w http.ResponseWriter, r *http.Request) {
	out, err := h.verification.ListPending(r.Context(), caller(r))
	respond(w, r, out, err)
}

func (h *AdminHandler) Decide(w http.ResponseWriter, r *http.Request) {
	var in services.DecisionInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	p, err := h.verification.Decide(r.Context(), caller(r), chi.URLParam(r, "id"), in)
	respond(w, r, p, err)
}
