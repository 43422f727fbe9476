package handlers

import (
	"net/http"

	"github.com/diewo77/go-lessons/httpx"
	"github.com/diewo77/go-lessons/internal/services"
	"github.com/go-chi/chi/v5"
)

type AppointmentHandler struct {
	appointments *services.AppointmentService
}

func NewAppointmentHandler(appointments *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments}
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateAppointmentInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	appt, err := h.appointments.Create(r.Context(), caller(r), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, appt)
}

func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var in statusRequest
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	appt, err := h.appointments.UpdateStatus(r.Context(), caller(r), chi.URLParam(r, "id"), in.Status)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, appt)
}

func (h *AppointmentHandler) StudentList(w http.ResponseWriter, r *http.Request) {
	out, err := h.appointments.ListForStudent(r.Context(), caller(r))
	respond(w, r, out, err)
}

func (h *AppointmentHandler) InstructorList(w http.ResponseWriter, r *http.Request) {
	out, err := h.appointments.ListForInstructor(r.Context(), caller(r))
	respond(w, r, out, err)
}

func (h *AppointmentHandler) StudentTimeline(w http.ResponseWriter, r *http.Request) {
	out, err := h.appointments.StudentTimeline(r.Context(), caller(r))
	respond(w, r, out, err)
}

func (h *AppointmentHandler) InstructorTimeline(w http.ResponseWriter, r *http.Request) {
	out, err := h.appointments.InstructorTimeline(r.Context(), caller(r))
	respond(w, r, out, err)
}

func (h *AppointmentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	out, err := h.appointments.InstructorStats(r.Context(), caller(r))
	respond(w, r, out, err)
}

// respond writes payload as 200 or err.
func respond(w http.ResponseWriter, r *http.Request, payload any, err error) {
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payload)
}
