package quiver

import (
	"errors"

	dferrors "github.com/paveg/quiver/internal/errors"
)

// Error is the error type returned by all Quiver operations
type Error = dferrors.DataFrameError

// Sentinels for errors.Is; each matches any error of its kind
var (
	ErrInvalidPayload    = dferrors.ErrInvalidPayload
	ErrSchemaMissing     = dferrors.ErrSchemaMissing
	ErrIndexNotFound     = dferrors.ErrIndexNotFound
	ErrIndexOutOfRange   = dferrors.ErrIndexOutOfRange
	ErrIndexTypeMismatch = dferrors.ErrIndexTypeMismatch
	ErrDataTypeMismatch  = dferrors.ErrDataTypeMismatch
	ErrStylerUnsupported = dferrors.ErrStylerUnsupported
)

// IsSchemaMissing reports whether err means the pandas metadata was absent
func IsSchemaMissing(err error) bool {
	return errors.Is(err, ErrSchemaMissing)
}

// IsIndexOutOfRange reports whether err is a coordinate outside the grid
func IsIndexOutOfRange(err error) bool {
	return errors.Is(err, ErrIndexOutOfRange)
}

// IsTypeMismatch reports whether AddRows rejected the operands' index or data types
func IsTypeMismatch(err error) bool {
	return errors.Is(err, ErrIndexTypeMismatch) || errors.Is(err, ErrDataTypeMismatch)
}
