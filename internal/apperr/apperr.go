// Package apperr carries the failure classes a service can report to a caller.
// Handlers translate a Kind into an HTTP status; anything that is not an *Error
// is an internal failure and is never shown to the caller verbatim.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	// KindMissing is a required input that was not supplied.
	KindMissing Kind = iota + 1
	// KindInvalid is an input that failed schema validation.
	KindInvalid
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(kind Kind, msg string) error { return &Error{Kind: kind, Message: msg} }

func Missing(msg string) error      { return New(KindMissing, msg) }
func Invalid(msg string) error      { return New(KindInvalid, msg) }
func BadRequest(msg string) error   { return New(KindBadRequest, msg) }
func Unauthorized(msg string) error { return New(KindUnauthorized, msg) }
func Forbidden(msg string) error    { return New(KindForbidden, msg) }
func NotFound(msg string) error     { return New(KindNotFound, msg) }
func Conflict(msg string) error     { return New(KindConflict, msg) }

// As returns the *Error inside err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

// Status maps err to the HTTP status returned to the caller.
func Status(err error) int {
	e, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindMissing, KindBadRequest:
		return http.StatusBadRequest
	case KindInvalid:
		return http.StatusNotAcceptable
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
