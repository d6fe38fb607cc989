package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for stringing service errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
	CONFIG_NOT_FOUND         ErrorCode = "CONFIG_NOT_FOUND"
)

// Order and agent error codes
const (
	ORDER_NOT_FOUND ErrorCode = "ORDER_NOT_FOUND"
	ORDER_INVALID   ErrorCode = "ORDER_INVALID"
	AGENT_NOT_FOUND ErrorCode = "AGENT_NOT_FOUND"
	AGENT_INVALID   ErrorCode = "AGENT_INVALID"
)

// Knowledge query error codes
const (
	QUERY_REQUIRED ErrorCode = "QUERY_REQUIRED"
)

// Geocoding error codes
const (
	GEOCODE_FAILED    ErrorCode = "GEOCODE_FAILED"
	GEOCODE_NOT_FOUND ErrorCode = "GEOCODE_NOT_FOUND"
	GEOCODE_TIMEOUT   ErrorCode = "GEOCODE_TIMEOUT"
)

// ETA predictor error codes
const (
	ETA_STORE_FAILED ErrorCode = "ETA_STORE_FAILED"
	ETA_NOT_TRAINED  ErrorCode = "ETA_NOT_TRAINED"
)

// Notification error codes
const (
	NOTIFY_SEND_FAILED ErrorCode = "NOTIFY_SEND_FAILED"
)

// StringingError represents a structured error with error code, message, and
// optional cause. It supports error wrapping and retryability hints for
// error handling logic.
type StringingError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *StringingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
func (e *StringingError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
func (e *StringingError) Is(target error) bool {
	var serr *StringingError
	if errors.As(target, &serr) {
		return e.Code == serr.Code
	}
	return false
}

// NewError creates a new non-retryable StringingError with the given code and message.
func NewError(code ErrorCode, message string) *StringingError {
	return &StringingError{
		Code:    code,
		Message: message,
	}
}

// NewRetryableError creates a new retryable StringingError with the given code
// and message. Use this for transient errors that may succeed on retry
// (e.g., network timeouts).
func NewRetryableError(code ErrorCode, message string) *StringingError {
	return &StringingError{
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// WrapError creates a new non-retryable StringingError that wraps an existing
// error. The wrapped error is accessible via Unwrap() for error chain inspection.
func WrapError(code ErrorCode, message string, cause error) *StringingError {
	return &StringingError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
