package conformance

import (
	"errors"
	"fmt"
)

// ConformanceError is the strict-mode form of a failed verification.
// Routine verification never returns it; MustConform raises it for
// every non-verified status.
type ConformanceError struct {
	// Reason is the verification status that failed.
	Reason Status

	// Message describes the failure.
	Message string
}

// Error implements the error interface.
func (e *ConformanceError) Error() string {
	return fmt.Sprintf("conformance: %s: %s", e.Reason, e.Message)
}

// IsConformanceError returns true if the error is a ConformanceError.
// Uses errors.As to handle wrapped errors.
func IsConformanceError(err error) bool {
	var ce *ConformanceError
	return errors.As(err, &ce)
}
