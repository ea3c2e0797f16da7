// Package errors defines the typed errors of the ambient layers: configuration,
// storage, transport and protocol handling. Field validation failures are not
// errors; they are form.ValidationResult values.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeConfig    ErrorType = "config"
	ErrorTypeStorage   ErrorType = "storage"
	ErrorTypeTransport ErrorType = "transport"
	ErrorTypeProtocol  ErrorType = "protocol"
	ErrorTypeInternal  ErrorType = "internal"
)

// AppError is a structured error type with context.
type AppError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Recoverable bool
}

// Error implements the error interface.
func (e *AppError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}
	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")
	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another AppError with the same type and code.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewStorageError creates a storage error.
func NewStorageError(code, message string, cause error) *AppError {
	return &AppError{
		Type:        ErrorTypeStorage,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewTransportError creates a transport error.
func NewTransportError(code, message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeTransport,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewProtocolError creates an error for a malformed client message. The
// session survives it.
func NewProtocolError(code, message string) *AppError {
	return &AppError{
		Type:        ErrorTypeProtocol,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Recoverable
	}

	return false
}

// TypeOf returns the type of an AppError in err's chain, or "" if none.
func TypeOf(err error) ErrorType {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Type
	}

	return ""
}

// Sentinel errors for errors.Is comparisons.
var (
	ErrNotFound      = &AppError{Type: ErrorTypeStorage, Code: "NOT_FOUND", Message: "key not found"}
	ErrUnknownDriver = &AppError{Type: ErrorTypeConfig, Code: "UNKNOWN_DRIVER", Message: "unknown storage driver"}
	ErrBadMessage    = &AppError{Type: ErrorTypeProtocol, Code: "BAD_MESSAGE", Message: "malformed message"}
)
