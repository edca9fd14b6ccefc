package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the planning core.
type ErrorCode string

// Planning-system assembly error codes
const (
	ErrDuplicateName      ErrorCode = "DUPLICATE_NAME"
	ErrEmptyName          ErrorCode = "EMPTY_NAME"
	ErrInvalidSystem      ErrorCode = "INVALID_SYSTEM"
	ErrDuplicateAggregate ErrorCode = "DUPLICATE_AGGREGATE"
	ErrUnknownType        ErrorCode = "UNKNOWN_TYPE"
)

// Process execution error codes
const (
	ErrActionFailed      ErrorCode = "ACTION_FAILED"
	ErrProcessTerminated ErrorCode = "PROCESS_TERMINATED"
	ErrProcessNotRunning ErrorCode = "PROCESS_NOT_RUNNING"
	ErrBudgetExceeded    ErrorCode = "BUDGET_EXCEEDED"
)

// Persistence error codes
const (
	ErrSnapshotNotFound ErrorCode = "SNAPSHOT_NOT_FOUND"
	ErrSnapshotEncoding ErrorCode = "SNAPSHOT_ENCODING"
	ErrStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
)

// Configuration error codes
const (
	ErrConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	ErrConfigInvalid  ErrorCode = "CONFIG_INVALID"
)

// Error represents a structured error with code, message, and cause.
type Error struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
	Cause     error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewErrorf creates a new Error with a formatted message.
func NewErrorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WrapError wraps an arbitrary error under a code, preserving the chain.
func WrapError(err error, code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Cause: err}
}

// IsErrorCode checks whether err (or anything it wraps) carries the code.
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
