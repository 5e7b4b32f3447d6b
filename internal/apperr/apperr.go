// Package apperr defines the error taxonomy shared by the reconciler, the
// storage layer and the HTTP handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknown Code = "UNKNOWN"

	// CodeValidation marks malformed input. Normalizers recover from it by
	// defaulting, so it only surfaces from request parsing.
	CodeValidation Code = "VALIDATION"

	// CodeInvalidState marks a violated precondition, e.g. deleting from an
	// empty log.
	CodeInvalidState Code = "INVALID_STATE"

	// CodeInvariantViolation marks an aggregate that disagrees with the event
	// log mid-operation.
	CodeInvariantViolation Code = "INVARIANT_VIOLATION"

	CodeStorageUnavailable   Code = "STORAGE_UNAVAILABLE"
	CodeStorageInconsistency Code = "STORAGE_INCONSISTENCY"
)

// Error is a coded error. Err, when set, is the underlying cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// GetCode extracts the error code from any error.
// Returns CodeUnknown if the error carries none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}

// Message returns the coded message, or a generic one for uncoded errors so
// driver details never reach a client.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "an unexpected error occurred"
}

// HTTPStatus maps a code to the response status handlers should use.
func HTTPStatus(code Code) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeInvalidState, CodeStorageInconsistency:
		return http.StatusConflict
	case CodeStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Response returns the status and JSON body for err. Handlers pass the pair
// straight to c.JSON.
func Response(err error) (int, map[string]any) {
	code := GetCode(err)
	return HTTPStatus(code), map[string]any{
		"error": Message(err),
		"code":  code,
	}
}
