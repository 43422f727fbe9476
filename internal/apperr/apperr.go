// Package apperr defines the error kinds returned by the service layer.
// Handlers map a Kind to an HTTP status; Code is a stable machine-readable
// identifier that is also the i18n message key.
package apperr

import "errors"

type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	default:
		return "internal"
	}
}

// Stable codes shared with clients.
const (
	CodeUnauthenticated       = "unauthenticated"
	CodeForbidden             = "forbidden"
	CodeNotFound              = "not_found"
	CodeInternal              = "internal_error"
	CodeValidation            = "validation_failed"
	CodeSlotUnavailable       = "slot_unavailable"
	CodeOverlapConflict       = "overlap_conflict"
	CodeSlotInUse             = "slot_in_use"
	CodeInvalidTransition     = "invalid_transition"
	CodeConcurrentUpdate      = "concurrent_update"
	CodeStaleReview           = "stale_review"
	CodeInstructorNotVerified = "instructor_not_verified"
	CodeEmailTaken            = "email_taken"
	CodeInvalidCredentials    = "invalid_credentials"
	CodePayloadTooLarge       = "payload_too_large"
	CodeUnsupportedMedia      = "unsupported_media"
)

// Error is the single error type crossing the service boundary.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	msg := e.Code
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind and Code so callers can compare against the helpers
// below, e.g. errors.Is(err, apperr.SlotUnavailable()).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Code == "" || e.Code == t.Code)
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Unauthenticated() *Error {
	return New(KindUnauthenticated, CodeUnauthenticated, "")
}

func Forbidden() *Error {
	return New(KindForbidden, CodeForbidden, "")
}

func NotFound(what string) *Error {
	return New(KindNotFound, CodeNotFound, what)
}

func Conflict(code, message string) *Error {
	return New(KindConflict, code, message)
}

func SlotUnavailable() *Error {
	return Conflict(CodeSlotUnavailable, "")
}

// Validation wraps field violations (field -> code).
func Validation(details any) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Details: details}
}

// Invalid is a validation error with a specific code and no field details.
func Invalid(code, message string) *Error {
	return New(KindValidation, code, message)
}

// Internal wraps an infrastructure failure.
func Internal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: op, Err: err}
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As extracts an *Error, wrapping foreign errors as Internal.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("unexpected", err)
}
