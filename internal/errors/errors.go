// Package errors provides a lightweight structured error type (ExportError)
// for category-based classification across the export pipeline.
//
// Two broad classes matter to callers: configuration-class errors (bad
// config, unresolvable plugin, unreadable output root) abort the target,
// data-class errors (missing row, bad widget parameter, malformed field)
// degrade at the smallest enclosing scope. IsConfiguration draws that line.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of an export error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Data and rendering errors
	CategoryData     ErrorCategory = "data"
	CategoryDatabase ErrorCategory = "database"
	CategoryTemplate ErrorCategory = "template"
	CategoryWidget   ErrorCategory = "widget"

	// Runtime and infrastructure errors
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// ExportError is a structured error with category, severity, and context
type ExportError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for ExportError
type ContextFields map[string]any

// Error implements the error interface
func (e *ExportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *ExportError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *ExportError) WithContext(key string, value any) *ExportError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new ExportError
func New(category ErrorCategory, severity ErrorSeverity, message string) *ExportError {
	return &ExportError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new ExportError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *ExportError {
	return &ExportError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// ConfigError creates a fatal configuration error. Configuration errors
// abort the whole target rather than being degraded in place.
func ConfigError(message string) *ExportError {
	return New(CategoryConfig, SeverityFatal, message)
}

// ValidationError creates a new validation error
func ValidationError(message string) *ExportError {
	return New(CategoryValidation, SeverityFatal, message)
}

// DataError creates a non-fatal data error scoped to one row, widget or field
func DataError(message string) *ExportError {
	return New(CategoryData, SeverityError, message)
}

// IsConfiguration reports whether err is configuration-class: the caller
// must abort the target instead of degrading.
func IsConfiguration(err error) bool {
	ee, ok := err.(*ExportError)
	if !ok {
		return false
	}
	return ee.Category == CategoryConfig || ee.Category == CategoryValidation
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not an ExportError
func GetCategory(err error) ErrorCategory {
	if ee, ok := err.(*ExportError); ok {
		return ee.Category
	}
	return CategoryInternal
}
