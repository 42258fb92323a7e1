package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeInvalidInput     = "invalid_input"
	CodeUnknownIdentity  = "unknown_identity"
	CodePersistenceError = "persistence_error"
	CodeInvalidSession   = "invalid_session"
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

// Retryable reports whether re-submitting the same request may succeed.
func (e *Error) Retryable() bool {
	return e != nil && e.Code == CodePersistenceError
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func InvalidInput(err error) *Error {
	return New(http.StatusBadRequest, CodeInvalidInput, err)
}

func UnknownIdentity(username string) *Error {
	return New(http.StatusNotFound, CodeUnknownIdentity, fmt.Errorf("unknown identity %q", username))
}

func Persistence(err error) *Error {
	return New(http.StatusServiceUnavailable, CodePersistenceError, err)
}

func InvalidSession(err error) *Error {
	return New(http.StatusUnauthorized, CodeInvalidSession, err)
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
