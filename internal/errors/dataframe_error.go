// Package errors provides standardized error types for DataFrame adapter operations.
// Every failure carries the operation name and a Kind so callers can branch with
// errors.Is against the predefined sentinels.
package errors

import (
	"fmt"
	"strings"
)

// Kind classifies DataFrameError values
type Kind int

const (
	// KindUnknown is the zero Kind
	KindUnknown Kind = iota
	// KindInvalidPayload means the serialized table could not be decoded
	KindInvalidPayload
	// KindSchemaMissing means the pandas schema sidecar was absent
	KindSchemaMissing
	// KindIndexNotFound means a declared index field has no schema column
	KindIndexNotFound
	// KindIndexOutOfRange means a coordinate fell outside the grid
	KindIndexOutOfRange
	// KindIndexTypeMismatch means appended rows carry a different index signature
	KindIndexTypeMismatch
	// KindDataTypeMismatch means appended rows carry a different data signature
	KindDataTypeMismatch
	// KindStylerUnsupported means rows were appended to or from a styled table
	KindStylerUnsupported
)

// String returns the name of the kind
func (k Kind) String() string {
	switch k {
	case KindInvalidPayload:
		return "InvalidPayload"
	case KindSchemaMissing:
		return "SchemaMissing"
	case KindIndexNotFound:
		return "IndexNotFound"
	case KindIndexOutOfRange:
		return "IndexOutOfRange"
	case KindIndexTypeMismatch:
		return "IndexTypeMismatch"
	case KindDataTypeMismatch:
		return "DataTypeMismatch"
	case KindStylerUnsupported:
		return "StylerUnsupported"
	default:
		return "Unknown"
	}
}

// DataFrameError represents standardized errors across all adapter operations
type DataFrameError struct {
	Op      string // Operation name (e.g., "New", "Cell", "AddRows")
	Kind    Kind   // Error classification
	Column  string // Field name if applicable
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *DataFrameError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s operation failed on column '%s': %s", e.Op, e.Column, e.Message)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying cause for error wrapping support
func (e *DataFrameError) Unwrap() error {
	return e.Cause
}

// Is implements error equality checking for errors.Is().
// A target that only sets Kind (the predefined sentinels) matches any error of that kind.
func (e *DataFrameError) Is(target error) bool {
	df, ok := target.(*DataFrameError)
	if !ok {
		return false
	}
	if df.Op == "" && df.Column == "" && df.Message == "" {
		return e.Kind == df.Kind
	}
	return e.Kind == df.Kind && e.Op == df.Op && e.Column == df.Column && e.Message == df.Message
}

// Predefined kind sentinels for use with errors.Is
var (
	ErrInvalidPayload    = &DataFrameError{Kind: KindInvalidPayload}
	ErrSchemaMissing     = &DataFrameError{Kind: KindSchemaMissing}
	ErrIndexNotFound     = &DataFrameError{Kind: KindIndexNotFound}
	ErrIndexOutOfRange   = &DataFrameError{Kind: KindIndexOutOfRange}
	ErrIndexTypeMismatch = &DataFrameError{Kind: KindIndexTypeMismatch}
	ErrDataTypeMismatch  = &DataFrameError{Kind: KindDataTypeMismatch}
	ErrStylerUnsupported = &DataFrameError{Kind: KindStylerUnsupported}
)

// Common error constructors for consistent error creation

// NewInvalidPayloadError creates an error for undecodable table payloads
func NewInvalidPayloadError(op string, cause error) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Kind:    KindInvalidPayload,
		Message: "cannot decode table payload",
		Cause:   cause,
	}
}

// NewSchemaMissingError creates an error for tables without the schema sidecar
func NewSchemaMissingError(op, key string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Kind:    KindSchemaMissing,
		Message: fmt.Sprintf("table schema is missing (no %q metadata)", key),
	}
}

// NewIndexNotFoundError creates an error for index fields absent from the schema columns
func NewIndexNotFoundError(op, field string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Kind:    KindIndexNotFound,
		Column:  field,
		Message: "index not found",
	}
}

// NewIndexOutOfRangeError creates an error for coordinates outside [0, size)
func NewIndexOutOfRangeError(op, axis string, index, size int) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Kind:    KindIndexOutOfRange,
		Message: fmt.Sprintf("%s index is out of range: %d not in [0, %d)", axis, index, size),
	}
}

// NewIndexTypeMismatchError creates an error listing the received and expected index types
func NewIndexTypeMismatchError(op string, received, expected []string) *DataFrameError {
	return &DataFrameError{
		Op:   op,
		Kind: KindIndexTypeMismatch,
		Message: fmt.Sprintf(
			"appended data must have the same index signature as the original data: received [%s] but expected [%s]",
			strings.Join(received, ", "), strings.Join(expected, ", ")),
	}
}

// NewDataTypeMismatchError creates an error for incompatible data column types
func NewDataTypeMismatchError(op, column, message string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Kind:    KindDataTypeMismatch,
		Column:  column,
		Message: message,
	}
}

// NewStylerUnsupportedError creates an error for appends involving styled tables
func NewStylerUnsupportedError(op string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Kind:    KindStylerUnsupported,
		Message: "appending rows is not supported for styled tables",
	}
}
