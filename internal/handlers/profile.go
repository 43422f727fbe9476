package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/go-lessons/httpx"
	"github.com/diewo77/go-lessons/internal/apperr"
	"github.com/diewo77/go-lessons/internal/services"
)

// multipartOverhead leaves room for the form boundaries around the file.
const multipartOverhead = 1 << 20

type ProfileHandler struct {
	profiles  *services.ProfileService
	documents *services.DocumentService
	maxUpload int64
}

func NewProfileHandler(profiles *services.ProfileService, documents *services.DocumentService, maxUpload int64) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, documents: documents, maxUpload: maxUpload}
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context(), caller(r))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in services.ProfileUpdate
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	p, err := h.profiles.UpdateProfile(r.Context(), caller(r), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) UpdateInstructor(w http.ResponseWriter, r *http.Request) {
	var in services.InstructorDataInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	p, err := h.profiles.UpdateInstructorData(r.Context(), caller(r), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// UploadDocument accepts a multipart form with "kind" and "file".
func (h *ProfileHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.WriteError(w, r, apperr.Invalid(apperr.CodePayloadTooLarge, ""))
			return
		}
		httpx.WriteError(w, r, apperr.Invalid(apperr.CodeValidation, "invalid multipart form"))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		httpx.WriteError(w, r, apperr.Validation(map[string]string{"file": "required"}))
		return
	}
	defer file.Close()

	url, err := h.documents.Upload(r.Context(), caller(r), r.FormValue("kind"), file)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"url": url})
}
