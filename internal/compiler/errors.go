package compiler

import (
	"errors"
	"fmt"
)

// ResolveError represents a name that could not be resolved during
// compilation.
//
// Resolution errors include:
//   - Unknown function: a call names a function the dialect table lacks
//   - Unknown metric: a #reference names no metric in the query context
//   - Unknown field: a bare or bracketed name matches no field
//
// Compilation is fail-fast: the first unresolved name aborts the walk
// and surfaces here with the offending source-level name.
type ResolveError struct {
	// Code identifies the error category.
	Code ResolveErrorCode

	// Name is the offending name as written in the formula.
	Name string
}

// ResolveErrorCode categorizes resolution errors.
type ResolveErrorCode string

const (
	// ErrCodeUnknownFunction indicates a call to a function the dialect
	// table does not define.
	ErrCodeUnknownFunction ResolveErrorCode = "UNKNOWN_FUNCTION"

	// ErrCodeUnknownMetric indicates a metric reference that matched
	// nothing in the query context.
	ErrCodeUnknownMetric ResolveErrorCode = "UNKNOWN_METRIC"

	// ErrCodeUnknownField indicates a field reference that matched
	// nothing in the query context.
	ErrCodeUnknownField ResolveErrorCode = "UNKNOWN_FIELD"
)

// Error implements the error interface.
func (e *ResolveError) Error() string {
	switch e.Code {
	case ErrCodeUnknownFunction:
		return fmt.Sprintf("%s: no function named %q", e.Code, e.Name)
	case ErrCodeUnknownMetric:
		return fmt.Sprintf("%s: no metric named %q", e.Code, e.Name)
	case ErrCodeUnknownField:
		return fmt.Sprintf("%s: no field named %q", e.Code, e.Name)
	}
	return fmt.Sprintf("%s: %q", e.Code, e.Name)
}

// NewUnknownFunctionError creates a ResolveError for an unresolved
// function name.
func NewUnknownFunctionError(name string) *ResolveError {
	return &ResolveError{Code: ErrCodeUnknownFunction, Name: name}
}

// NewUnknownMetricError creates a ResolveError for an unresolved
// metric name.
func NewUnknownMetricError(name string) *ResolveError {
	return &ResolveError{Code: ErrCodeUnknownMetric, Name: name}
}

// NewUnknownFieldError creates a ResolveError for an unresolved
// field name.
func NewUnknownFieldError(name string) *ResolveError {
	return &ResolveError{Code: ErrCodeUnknownField, Name: name}
}

// IsUnknownFunction returns true if the error is an unknown-function
// resolution error. Uses errors.As to handle wrapped errors.
func IsUnknownFunction(err error) bool {
	var re *ResolveError
	if errors.As(err, &re) {
		return re.Code == ErrCodeUnknownFunction
	}
	return false
}

// IsUnknownMetric returns true if the error is an unknown-metric
// resolution error. Uses errors.As to handle wrapped errors.
func IsUnknownMetric(err error) bool {
	var re *ResolveError
	if errors.As(err, &re) {
		return re.Code == ErrCodeUnknownMetric
	}
	return false
}

// IsUnknownField returns true if the error is an unknown-field
// resolution error. Uses errors.As to handle wrapped errors.
func IsUnknownField(err error) bool {
	var re *ResolveError
	if errors.As(err, &re) {
		return re.Code == ErrCodeUnknownField
	}
	return false
}
