package app

import (
	"errors"
	"net/http"
)

// Error is a request-level failure carrying the HTTP status it should
// map to. Anything else that surfaces from below is a 500.
type Error struct {
	Status  int
	Message string
	Details []string
}

func (e *Error) Error() string { return e.Message }

// AsError extracts an *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func BadRequest(msg string, details ...string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg, Details: details}
}

func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Message: msg}
}
