package apperr

import (
	"errors"
	"net/http"
)

// Error is the tagged application error carried from services and
// repositories up to the HTTP layer. Anything that is not an *Error is
// reported to the caller as a generic 500.
type Error struct {
	Code    int    `json:"-"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// New creates a tagged error with an explicit HTTP status code.
func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, message)
}

// Status returns the HTTP status for err: the tagged code when err is an
// *Error, 500 otherwise.
func Status(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
