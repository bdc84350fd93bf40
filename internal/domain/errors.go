package domain

import (
	"errors"
	"net/http"
)

// Error codes returned in the error envelope
const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeTokenExpired    = "TOKEN_EXPIRED"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

// Error is a client-facing failure. Status is the HTTP status the API
// answers with; Code is the symbolic kind callers branch on.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *Error) Error() string {
	return e.Message
}

func NewError(status int, code, message string) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

// Kind constructors for the error taxonomy

func Conflict(message string) *Error {
	return NewError(http.StatusConflict, CodeBadRequest, message)
}

func Unprocessable(message string) *Error {
	return NewError(http.StatusUnprocessableEntity, CodeBadRequest, message)
}

func NotFound(message string) *Error {
	return NewError(http.StatusNotFound, CodeBadRequest, message)
}

func Gone(message string) *Error {
	return NewError(http.StatusGone, CodeTokenExpired, message)
}

func BadRequest(message string) *Error {
	return NewError(http.StatusBadRequest, CodeBadRequest, message)
}

func Unauthorized(message string) *Error {
	return NewError(http.StatusUnauthorized, CodeUnauthorized, message)
}

func Forbidden(message string) *Error {
	return NewError(http.StatusForbidden, CodeForbidden, message)
}

// AsError extracts a *Error from err, if there is one
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
