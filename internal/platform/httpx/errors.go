// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrDuplicate  = errors.New("duplicate entry")
	ErrValidation = errors.New("validation failed")
)

// Error is a classified domain failure whose text is safe to show to clients.
type Error struct {
	kind error
	msg  string
}

// Errorf builds an Error of the given kind. kind should be one of the sentinels above.
func Errorf(kind error, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

// StatusOf maps domain errors to HTTP status codes.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps domain errors to {"message": ...} responses.
// Unclassified errors never leak their text to the client.
func RespondError(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	var domainErr *Error
	if status == http.StatusInternalServerError || !errors.As(err, &domainErr) {
		Message(w, status, http.StatusText(status))
		return
	}
	Message(w, status, domainErr.Error())
}
