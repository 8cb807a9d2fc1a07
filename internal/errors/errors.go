package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrTypeStructural marks a source table whose required column structure
	// is absent. Fatal to the pipeline run that observed it.
	ErrTypeStructural ErrorType = "STRUCTURAL"
	// ErrTypeDataQuality marks row-local coercion problems. Never fatal; the
	// offending value becomes null and the row is excluded from aggregation.
	ErrTypeDataQuality ErrorType = "DATA_QUALITY"
	// ErrTypeConnectivity marks an unreachable external registry. Never
	// fatal; the resolver degrades to name-only resolution.
	ErrTypeConnectivity ErrorType = "CONNECTIVITY"

	ErrTypeParsing ErrorType = "PARSING"
	ErrTypeStorage ErrorType = "STORAGE"
	ErrTypeConfig  ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewStructuralError creates a structural error carrying the list of
// semantic fields the source table was missing.
func NewStructuralError(message string, missing []string) *AppError {
	return NewAppError(ErrTypeStructural, message, nil).
		WithContext("missing_fields", missing)
}

// NewConnectivityError creates a registry-connectivity error
func NewConnectivityError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConnectivity, message, cause)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// IsType reports whether err is (or wraps) an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// IsStructural reports whether err represents missing column structure.
func IsStructural(err error) bool {
	return IsType(err, ErrTypeStructural)
}

// MissingFields returns the missing-field list from a structural error, or
// nil when err is not structural or carries none.
func MissingFields(err error) []string {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return nil
	}
	fields, _ := appErr.Context["missing_fields"].([]string)
	return fields
}
