package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the single error taxonomy shared by every layer. Callers branch on
// the kind, never on a concrete error type.
type Kind string

const (
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindValidation   Kind = "VALIDATION"
	KindNotFound     Kind = "NOT_FOUND"
	KindExternal     Kind = "EXTERNAL"
	KindInternal     Kind = "INTERNAL"
)

type KindError struct {
	kind       Kind
	httpStatus int // hint only; 0 means "use the kind default"
	msg        string
	cause      error
}

func (e *KindError) Error() string {
	if e.cause != nil {
		return string(e.kind) + ": " + e.msg + ": " + e.cause.Error()
	}
	return string(e.kind) + ": " + e.msg
}

func (e *KindError) Unwrap() error { return e.cause }

func (e *KindError) Kind() Kind { return e.kind }

// Message is the user-facing text; never raw upstream payloads.
func (e *KindError) Message() string { return e.msg }

// WithKind tags an error with a kind, keeping the cause chain intact.
func WithKind(err error, kind Kind, msg string) error {
	return &KindError{kind: kind, msg: msg, cause: err}
}

func Kindf(kind Kind, format string, args ...any) error {
	return &KindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// External builds a KindExternal error carrying the upstream HTTP status as a
// hint for the boundary translation.
func External(err error, httpStatus int, msg string) error {
	return &KindError{kind: KindExternal, httpStatus: httpStatus, msg: msg, cause: err}
}

func KindOf(err error) Kind {
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return KindInternal
}

func IsKindErr(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// UserMessage returns the message of the outermost KindError, or empty when
// the error carries no taxonomy tag.
func UserMessage(err error) string {
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.msg
	}
	return ""
}

// HTTPHint maps an error to a response status. External 5xx collapse to 502
// so upstream failures are never mistaken for our own.
func HTTPHint(err error) int {
	var ke *KindError
	if !errors.As(err, &ke) {
		return http.StatusInternalServerError
	}
	if ke.kind == KindExternal {
		status := ke.httpStatus
		if status == 0 || status >= http.StatusInternalServerError {
			return http.StatusBadGateway
		}
		return status
	}
	switch ke.kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
