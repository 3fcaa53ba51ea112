package judgment

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input to a constructor or operator.
//
// Validation failures include:
//   - T, I, or F outside [0,1] or non-finite
//   - Conservation violation: |T+I+F-1| > ConservationEpsilon
//   - Weight problems: length mismatch, negative, non-finite, all-zero
//   - Malformed digest strings where a seal or judgment id is expected
//   - Provenance entries without a source_id
//
// Validation errors are always surfaced to the caller. The protocol never
// corrects a value silently; on invariant violation it refuses to produce
// a judgment.
type ValidationError struct {
	// Code identifies the error category.
	Code ValidationErrorCode

	// Field names the offending field, when one field is at fault.
	Field string

	// Message is a human-readable description.
	Message string
}

// ValidationErrorCode categorizes validation errors.
type ValidationErrorCode string

const (
	// ErrCodeOutOfRange indicates a component outside [0,1] or non-finite.
	ErrCodeOutOfRange ValidationErrorCode = "OUT_OF_RANGE"

	// ErrCodeConservation indicates |T+I+F-1| exceeds the tolerance.
	ErrCodeConservation ValidationErrorCode = "CONSERVATION_VIOLATED"

	// ErrCodeInvalidWeights indicates weights that cannot be normalized.
	ErrCodeInvalidWeights ValidationErrorCode = "INVALID_WEIGHTS"

	// ErrCodeInvalidDigest indicates a seal or id that is not 64 lowercase hex chars.
	ErrCodeInvalidDigest ValidationErrorCode = "INVALID_DIGEST"

	// ErrCodeInvalidProvenance indicates a malformed provenance entry.
	ErrCodeInvalidProvenance ValidationErrorCode = "INVALID_PROVENANCE"

	// ErrCodeInvalidInput indicates an argument outside a component's input domain.
	ErrCodeInvalidInput ValidationErrorCode = "INVALID_INPUT"
)

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsValidationError returns true if the error is a ValidationError.
// Uses errors.As to handle wrapped errors.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConservationError returns true if the error reports a conservation violation.
// Uses errors.As to handle wrapped errors.
func IsConservationError(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code == ErrCodeConservation
	}
	return false
}

func newValidationError(code ValidationErrorCode, field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Code:    code,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}
