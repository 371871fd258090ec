// Package apierr carries an HTTP status and a stable machine-readable code
// alongside an error, so services can classify failures without knowing
// about the response layer. The response package unwraps it with errors.As
// when it builds the envelope.
package apierr

import (
	"fmt"
	"net/http"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// Validation flags rejected request input.
func Validation(err error) *Error {
	return New(http.StatusBadRequest, "VALIDATION_ERROR", err)
}

// Conflict reports a state collision, such as a job that is already running.
func Conflict(code string, err error) *Error {
	return New(http.StatusConflict, code, err)
}

// Unauthorized rejects a failed credential check.
func Unauthorized(code string, err error) *Error {
	return New(http.StatusUnauthorized, code, err)
}

// Unavailable marks a feature that is switched off or unconfigured.
func Unavailable(code string, err error) *Error {
	return New(http.StatusServiceUnavailable, code, err)
}
