package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/diewo77/go-lessons/i18n"
	"github.com/diewo77/go-lessons/internal/apperr"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func JSONError(w http.ResponseWriter, status int, code string, details any) {
	JSON(w, status, ErrorResponse{Error: code, Details: details})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(e *apperr.Error) int {
	switch e.Kind {
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindValidation:
		switch e.Code {
		case apperr.CodePayloadTooLarge:
			return http.StatusRequestEntityTooLarge
		case apperr.CodeUnsupportedMedia:
			return http.StatusUnsupportedMediaType
		}
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err as a localized ErrorResponse. Internal causes are
// logged and never exposed to the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.As(err)
	status := StatusFor(e)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	lang := i18n.LangFromContext(r.Context())
	JSON(w, status, ErrorResponse{
		Error:   e.Code,
		Message: i18n.T(lang, e.Code),
		Details: e.Details,
	})
}

// DecodeJSON reads a JSON body into dst. Unknown fields are ignored so that
// clients may send full objects to whitelisted update endpoints.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperr.Invalid(apperr.CodeValidation, "empty body")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Invalid(apperr.CodeValidation, "empty body")
		}
		return apperr.Invalid(apperr.CodeValidation, "malformed JSON")
	}
	return nil
}
