package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a typed service error carried up to the HTTP layer, which maps
// Kind to a status code and Detail to the response body.
type Error struct {
	Kind   Kind
	Detail string
	Fields []Field
}

// Field is one offending field of a validation error.
type Field struct {
	Name    string `json:"field"`
	Message string `json:"message"`
}

type Kind int

const (
	KindBadRequest Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindValidation
	KindInternal
)

func (e *Error) Error() string { return e.Detail }

func (e *Error) Status() int {
	switch e.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func BadRequest(detail string) *Error {
	return &Error{Kind: KindBadRequest, Detail: detail}
}

func BadRequestf(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Detail: fmt.Sprintf(format, args...)}
}

func Unauthorized(detail string) *Error {
	return &Error{Kind: KindUnauthorized, Detail: detail}
}

func Forbidden(detail string) *Error {
	return &Error{Kind: KindForbidden, Detail: detail}
}

func NotFound(detail string) *Error {
	return &Error{Kind: KindNotFound, Detail: detail}
}

func Conflict(detail string) *Error {
	return &Error{Kind: KindConflict, Detail: detail}
}

// ValidationFailed bundles per-field messages into one 422 error.
func ValidationFailed(fields []Field) *Error {
	return &Error{Kind: KindValidation, Detail: "Erreur de validation.", Fields: fields}
}

// As unwraps err into *Error if possible.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsNotFound reports whether err is a not-found service error.
func IsNotFound(err error) bool {
	e, ok := As(err)
	return ok && e.Kind == KindNotFound
}
