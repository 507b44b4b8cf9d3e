// Package apperrors defines the error taxonomy shared by services and HTTP handlers.
// Every failure surfaced to a client carries a stable machine-readable Kind.
package apperrors

import (
	"context"
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindUnavailable  Kind = "unavailable"
	KindInternal     Kind = "internal"
)

// HTTPStatus returns the status code a Kind is rendered with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether a client may retry the request unchanged.
func (k Kind) Retryable() bool {
	return k == KindUnavailable
}

// KindFromStatus maps an HTTP status code produced outside the services (router, middleware) to a Kind.
func KindFromStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge:
		return KindValidation
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return KindUnavailable
	default:
		return KindInternal
	}
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error { return New(KindValidation, message) }
func NotFound(message string) *Error   { return New(KindNotFound, message) }
func Forbidden(message string) *Error  { return New(KindForbidden, message) }
func Conflict(message string) *Error   { return New(KindConflict, message) }

func Internal(err error) *Error {
	return Wrap(KindInternal, "internal server error", err)
}

func Unavailable(err error) *Error {
	return Wrap(KindUnavailable, "storage temporarily unavailable", err)
}

// KindOf classifies any error. Unclassified errors are internal, except context
// deadlines which are reported as unavailable.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindUnavailable
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// PublicMessage is the text safe to return to a client. Internal causes are never exposed.
func PublicMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		if ae.Kind == KindInternal {
			return "internal server error"
		}
		return ae.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	return "internal server error"
}
