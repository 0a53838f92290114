// Package errors provides custom error types for the display-set engine.
// These errors let callers tell structural input problems apart from
// per-group builder failures and from plain lookups that found nothing.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Join is an alias for the standard library errors.Join.
var Join = errors.Join

// As is an alias for the standard library errors.As.
var As = errors.As

// Is is an alias for the standard library errors.Is.
var Is = errors.Is

// Common sentinel errors
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrStructuralInput indicates the shape of an ingestion request was wrong.
	// Nothing is mutated when it is returned.
	ErrStructuralInput = errors.New("structural input error")

	// ErrHandlerNotFound indicates no registered builder claims a SOP class
	ErrHandlerNotFound = errors.New("handler not found")

	// ErrHandlerFailure indicates a builder invocation failed
	ErrHandlerFailure = errors.New("handler failure")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// StructuralInputError is returned when an ingestion request is malformed as
// a whole: empty input, or a batch whose elements are not instance lists.
type StructuralInputError struct {
	Batch   bool
	Message string
}

// Error implements the error interface
func (e *StructuralInputError) Error() string {
	if e.Batch {
		return fmt.Sprintf("structural input error (batch): %s", e.Message)
	}
	return fmt.Sprintf("structural input error: %s", e.Message)
}

// Is implements errors.Is support
func (e *StructuralInputError) Is(target error) bool {
	return target == ErrStructuralInput || target == ErrInvalidInput
}

// NewStructuralInputError creates a new StructuralInputError
func NewStructuralInputError(batch bool, message string) *StructuralInputError {
	return &StructuralInputError{Batch: batch, Message: message}
}

// HandlerNotFoundError records that no builder claimed a group of instances.
// It is informational: the engine skips the group and carries on.
type HandlerNotFoundError struct {
	SeriesInstanceUID string
	SOPClassUID       string
}

// Error implements the error interface
func (e *HandlerNotFoundError) Error() string {
	return fmt.Sprintf("no handler claims SOP class %s (series %s)", e.SOPClassUID, e.SeriesInstanceUID)
}

// Is implements errors.Is support
func (e *HandlerNotFoundError) Is(target error) bool {
	return target == ErrHandlerNotFound
}

// NewHandlerNotFoundError creates a new HandlerNotFoundError
func NewHandlerNotFoundError(seriesUID, sopClassUID string) *HandlerNotFoundError {
	return &HandlerNotFoundError{SeriesInstanceUID: seriesUID, SOPClassUID: sopClassUID}
}

// HandlerError represents a failure scoped to a single group of instances.
// HandlerID is empty when the group was rejected before any builder ran.
type HandlerError struct {
	HandlerID         string
	SeriesInstanceUID string
	Message           string
	Err               error
}

// Error implements the error interface
func (e *HandlerError) Error() string {
	var b strings.Builder
	b.WriteString("handler failure")
	if e.HandlerID != "" {
		fmt.Fprintf(&b, " in %s", e.HandlerID)
	}
	if e.SeriesInstanceUID != "" {
		fmt.Fprintf(&b, " for series %s", e.SeriesInstanceUID)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Unwrap implements errors.Unwrap
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *HandlerError) Is(target error) bool {
	return target == ErrHandlerFailure
}

// NewHandlerError creates a new HandlerError
func NewHandlerError(handlerID, seriesUID string, err error) *HandlerError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &HandlerError{
		HandlerID:         handlerID,
		SeriesInstanceUID: seriesUID,
		Message:           message,
		Err:               err,
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing instance documents
type ParseError struct {
	Format  string // "json", "yaml"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsStructuralInput checks if an error is a structural input error
func IsStructuralInput(err error) bool {
	return errors.Is(err, ErrStructuralInput)
}

// IsHandlerNotFound checks if an error reports an unclaimed group
func IsHandlerNotFound(err error) bool {
	return errors.Is(err, ErrHandlerNotFound)
}

// IsHandlerFailure checks if an error is a per-group builder failure
func IsHandlerFailure(err error) bool {
	return errors.Is(err, ErrHandlerFailure)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapHandler wraps an error as a HandlerError
func WrapHandler(handlerID, seriesUID string, err error) error {
	if err == nil {
		return nil
	}
	return NewHandlerError(handlerID, seriesUID, err)
}
