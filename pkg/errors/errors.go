// Package errors provides custom error types for the traderecon system.
// These errors enable programmatic error checking and carry enough context
// (dataset, column, trade identifier) to produce actionable diagnostics.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the traderecon system
var (
	// ErrSchema indicates that an input dataset does not satisfy the
	// required trade schema
	ErrSchema = errors.New("schema violation")

	// ErrParse indicates that a field value could not be parsed
	ErrParse = errors.New("parse failure")

	// ErrComparison indicates that a matched pair could not be compared
	ErrComparison = errors.New("comparison failure")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrAPIKeyRequired indicates that an API key is required but not provided
	ErrAPIKeyRequired = errors.New("API key required")

	// ErrAnalyzerUnavailable indicates that the analysis collaborator is
	// temporarily unavailable
	ErrAnalyzerUnavailable = errors.New("analyzer unavailable")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// SchemaError reports a structural defect in an input dataset: a missing
// required column, or a duplicate trade identifier when duplicates are
// rejected. Schema errors are fatal and abort the run before any join or
// comparison logic executes.
type SchemaError struct {
	Dataset string // which dataset violated the schema, e.g. "broker"
	Column  string // offending column, empty for non-column violations
	TradeID string // offending trade identifier, empty for column violations
	Message string
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	switch {
	case e.Column != "":
		return fmt.Sprintf("missing column %q in %s trades", e.Column, e.Dataset)
	case e.TradeID != "":
		return fmt.Sprintf("schema violation in %s trades for trade %s: %s", e.Dataset, e.TradeID, e.Message)
	default:
		return fmt.Sprintf("schema violation in %s trades: %s", e.Dataset, e.Message)
	}
}

// Is implements errors.Is support
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// NewSchemaError creates a SchemaError for a missing column.
func NewSchemaError(dataset, column string) *SchemaError {
	return &SchemaError{Dataset: dataset, Column: column}
}

// ParseError reports a field value that could not be parsed into its typed
// form (malformed timestamp, non-numeric quantity or price). A parse error
// is fatal for the affected record's pair only; the engine surfaces it as a
// comparison-error exception rather than aborting the run.
type ParseError struct {
	Dataset string
	TradeID string
	Field   string
	Value   string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.TradeID != "" {
		return fmt.Sprintf("cannot parse %s %q for trade %s in %s trades: %v", e.Field, e.Value, e.TradeID, e.Dataset, e.Err)
	}
	return fmt.Sprintf("cannot parse %s %q in %s trades: %v", e.Field, e.Value, e.Dataset, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ComparisonError reports a matched-by-key pair that could not be compared,
// typically because one side carries a parse error. It is surfaced as a
// high-severity exception and never silently treated as matched.
type ComparisonError struct {
	TradeID string
	Err     error
}

// Error implements the error interface
func (e *ComparisonError) Error() string {
	return fmt.Sprintf("cannot compare trade %s: %v", e.TradeID, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ComparisonError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ComparisonError) Is(target error) bool {
	return target == ErrComparison
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
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
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents an error from the analysis collaborator API
type APIError struct {
	Service    string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Service, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	if e.StatusCode >= 500 {
		return target == ErrAnalyzerUnavailable
	}
	return false
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

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "open", "close"
	Path      string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("IO error during %s: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsSchema checks if an error is a schema error
func IsSchema(err error) bool {
	return errors.Is(err, ErrSchema)
}

// IsParse checks if an error is a parse error
func IsParse(err error) bool {
	return errors.Is(err, ErrParse)
}

// IsComparison checks if an error is a comparison error
func IsComparison(err error) bool {
	return errors.Is(err, ErrComparison)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// IsAnalyzerUnavailable checks if an error indicates the analysis
// collaborator is unavailable
func IsAnalyzerUnavailable(err error) bool {
	return errors.Is(err, ErrAnalyzerUnavailable)
}

// Helper wrapping functions for common patterns

// WrapParse wraps an error as a ParseError
func WrapParse(dataset, tradeID, field, value string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Dataset: dataset, TradeID: tradeID, Field: field, Value: value, Err: err}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}
