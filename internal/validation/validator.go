// Package validation provides input validation utilities for grid lookups.
// Validators are small structs that can be composed; the convenience functions
// cover the common single-check cases.
package validation

import (
	"github.com/paveg/quiver/internal/errors"
)

// Axis names used in out-of-range messages
const (
	AxisRow    = "row"
	AxisColumn = "column"
)

// Validator interface for input validation
type Validator interface {
	Validate() error
}

// IndexValidator validates index bounds on one axis
type IndexValidator struct {
	index int
	max   int
	op    string
	axis  string
}

// NewIndexValidator creates a validator for index operations
func NewIndexValidator(index, maxIndex int, op, axis string) *IndexValidator {
	return &IndexValidator{
		index: index,
		max:   maxIndex,
		op:    op,
		axis:  axis,
	}
}

// Validate checks if index is within [0, max)
func (v *IndexValidator) Validate() error {
	if v.index < 0 || v.index >= v.max {
		return errors.NewIndexOutOfRangeError(v.op, v.axis, v.index, v.max)
	}
	return nil
}

// CompoundValidator combines multiple validators
type CompoundValidator struct {
	validators []Validator
}

// NewCompoundValidator creates a validator that checks multiple conditions
func NewCompoundValidator(validators ...Validator) *CompoundValidator {
	return &CompoundValidator{
		validators: validators,
	}
}

// Validate runs all validators and returns the first error encountered
func (v *CompoundValidator) Validate() error {
	for _, validator := range v.validators {
		if err := validator.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateIndex is a convenience function for index validation
func ValidateIndex(index, maxIndex int, op, axis string) error {
	return NewIndexValidator(index, maxIndex, op, axis).Validate()
}

// ValidateCoordinate checks a (row, column) pair against the grid size, row first
func ValidateCoordinate(row, col, rows, cols int, op string) error {
	return NewCompoundValidator(
		NewIndexValidator(row, rows, op, AxisRow),
		NewIndexValidator(col, cols, op, AxisColumn),
	).Validate()
}
