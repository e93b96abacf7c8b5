// Package clierr defines structured error types for prism operations.
// Errors carry a machine-readable code, a human-readable message,
// and optional details for the CLI, the TUI and JSON consumers.
package clierr

import (
	"errors"
	"fmt"
	"strconv"
)

// Error codes are stable across minor versions.
const (
	TaskNotFound         = "TASK_NOT_FOUND"
	StepNotFound         = "STEP_NOT_FOUND"
	IndexOutOfRange      = "INDEX_OUT_OF_RANGE"
	DecompositionFormat  = "DECOMPOSITION_FORMAT"
	AssistantUnavailable = "ASSISTANT_UNAVAILABLE"
	MalformedStore       = "MALFORMED_STORE"
	StoreNotFound        = "STORE_NOT_FOUND"
	StoreIO              = "STORE_IO"
	BoardNotFound        = "BOARD_NOT_FOUND"
	BoardAlreadyExists   = "BOARD_ALREADY_EXISTS"
	ProjectNotFound      = "PROJECT_NOT_FOUND"
	InvalidCategory      = "INVALID_CATEGORY"
	InvalidInput         = "INVALID_INPUT"
	InvalidDate          = "INVALID_DATE"
	ConfirmationReq      = "CONFIRMATION_REQUIRED"
	NoChanges            = "NO_CHANGES"
	InternalError        = "INTERNAL_ERROR"
)

// Error represents a structured error with a machine-readable code.
type Error struct {
	Code    string
	Message string
	Details map[string]any

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// New creates an Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error that keeps err as its cause.
func Wrap(code string, err error, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg += ": " + err.Error()
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// WithDetails returns the error with the given details map attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// ExitCode returns 2 for InternalError, 1 for all others.
func (e *Error) ExitCode() int {
	if e.Code == InternalError {
		return 2 //nolint:mnd // exit code 2 for internal errors
	}
	return 1
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}

// SilentError signals an exit code without additional output, for
// commands that already told the user what happened.
type SilentError struct {
	Code int
}

// Error implements the error interface.
func (e *SilentError) Error() string { return "exit " + strconv.Itoa(e.Code) }
