package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown  ErrorCode = "UNKNOWN"
	ErrInternal ErrorCode = "INTERNAL"
	ErrConfig   ErrorCode = "CONFIG"

	// Shard errors
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrInvalidName   ErrorCode = "INVALID_NAME"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"
	ErrProtected     ErrorCode = "PROTECTED"
	ErrBackup        ErrorCode = "BACKUP"

	// Manifest errors
	ErrManifestParse ErrorCode = "MANIFEST_PARSE"

	// Package manager errors
	ErrValidation ErrorCode = "VALIDATION"
	ErrActuator   ErrorCode = "ACTUATOR"

	// FileSystem errors
	ErrFilesystem ErrorCode = "FILESYSTEM"
)

// ShardError represents a structured error with code and details
type ShardError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *ShardError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ShardError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *ShardError) Is(target error) bool {
	var targetErr *ShardError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new ShardError with the given code and message
func New(code ErrorCode, message string) *ShardError {
	return &ShardError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new ShardError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *ShardError {
	return &ShardError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a ShardError
func Wrap(err error, code ErrorCode, message string) *ShardError {
	if err == nil {
		return nil
	}
	return &ShardError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *ShardError {
	if err == nil {
		return nil
	}
	return &ShardError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *ShardError) WithDetail(key string, value interface{}) *ShardError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *ShardError) WithDetails(details map[string]interface{}) *ShardError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var shardErr *ShardError
	if errors.As(err, &shardErr) {
		return shardErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a ShardError
func GetErrorCode(err error) ErrorCode {
	var shardErr *ShardError
	if errors.As(err, &shardErr) {
		return shardErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a ShardError
func GetErrorDetails(err error) map[string]interface{} {
	var shardErr *ShardError
	if errors.As(err, &shardErr) {
		return shardErr.Details
	}
	return nil
}

// ItemError ties a failure to the package, tap or shard it concerns.
type ItemError struct {
	Item string
	Op   string
	Err  error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Item, e.Err)
}

func (e ItemError) Unwrap() error {
	return e.Err
}

// Summarize collapses per-item failures of a best-effort batch into one
// error. It returns nil when there are no failures.
func Summarize(code ErrorCode, what string, items []ItemError) *ShardError {
	if len(items) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(items))
	joined := make([]error, 0, len(items))
	for _, it := range items {
		msgs = append(msgs, it.Error())
		joined = append(joined, it)
	}
	return Wrapf(errors.Join(joined...), code, "%d %s failed", len(items), what).
		WithDetail("count", len(items)).
		WithDetail("failures", msgs)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}
