// Package apperr defines the error taxonomy shared by every operation. Each
// error carries a Code for callers, a Message that is safe to show a user, and
// an optional wrapped cause that is only ever logged.
package apperr

import (
	"errors"
	"net/http"
)

// Code classifies a failure.
type Code string

const (
	CodeUnauthorized           Code = "unauthorized"
	CodeNotFound               Code = "not_found"
	CodeNotFoundOrUnauthorized Code = "not_found_or_unauthorized"
	CodeValidation             Code = "validation"
	CodeStorageWrite           Code = "storage_write"
	CodeStorageRead            Code = "storage_read"
	CodeParse                  Code = "parse"
	CodeExtractionConfig       Code = "extraction_config"
	CodeExtractionService      Code = "extraction_service"
	CodeOperationFailed        Code = "operation_failed"
)

// Error is the concrete error type returned across package boundaries.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// New builds an Error.
func New(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Err: cause}
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

// Unauthorized is returned whenever no calling user resolves.
func Unauthorized() *Error {
	return New(CodeUnauthorized, "unauthorized", nil)
}

// NotFound reports a missing or foreign record.
func NotFound(message string) *Error {
	return New(CodeNotFound, message, nil)
}

// Validation reports bad caller input.
func Validation(message string, cause error) *Error {
	return New(CodeValidation, message, cause)
}

// As extracts the *Error from err, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// Boundary keeps taxonomy errors as they are and converts anything else into
// an OperationFailed with message.
func Boundary(err error, message string) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	return New(CodeOperationFailed, message, err)
}

// Message returns the user facing text for err.
func Message(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.Message
	}
	return "unexpected error"
}

// HTTPStatus maps err onto a response status.
func HTTPStatus(err error) int {
	appErr, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound, CodeNotFoundOrUnauthorized:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeParse:
		return http.StatusUnprocessableEntity
	case CodeExtractionConfig:
		return http.StatusServiceUnavailable
	case CodeStorageWrite, CodeStorageRead, CodeExtractionService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
