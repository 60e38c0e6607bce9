// Package errcode defines the structured error taxonomy for the voice
// context engine: store read failures (absorbed at tier boundaries), store
// write failures (returned to the caller), and request-level failures.
package errcode

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific error type for engine operations.
type ErrorCode string

const (
	// ErrCodeStoreReadFailed indicates a store adapter could not return data.
	ErrCodeStoreReadFailed ErrorCode = "STORE_READ_FAILED"
	// ErrCodeStoreWriteFailed indicates a summary upsert was rejected or errored.
	ErrCodeStoreWriteFailed ErrorCode = "STORE_WRITE_FAILED"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeContextCanceled indicates the operation was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
)

// EngineError represents a structured error for engine operations.
type EngineError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// New creates an EngineError with the given code and message.
func New(code ErrorCode, message string) *EngineError {
	return &EngineError{Code: code, Message: message}
}

// Wrap creates an EngineError wrapping a cause.
func Wrap(cause error, code ErrorCode, message string) *EngineError {
	return &EngineError{Code: code, Message: message, Cause: cause}
}

// CodeOf extracts the error code from err, or "" if err is not an EngineError.
func CodeOf(err error) ErrorCode {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// IsWriteFailure reports whether err is a store write failure.
func IsWriteFailure(err error) bool {
	return CodeOf(err) == ErrCodeStoreWriteFailed
}
