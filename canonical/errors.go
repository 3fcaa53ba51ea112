package canonical

import (
	"errors"
	"fmt"
)

// EncodingError reports input that has no canonical representation:
// a non-finite numeric field or an unsupported metadata value type.
//
// Encoding errors are fatal. The same input deterministically produces
// the same error, so callers must fix the input rather than retry.
type EncodingError struct {
	// Path locates the offending value, e.g. "judgments[1].T" or
	// "weights[0]".
	Path string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *EncodingError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("canonical encoding: %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("canonical encoding: %s", e.Message)
}

// IsEncodingError returns true if the error is an EncodingError.
// Uses errors.As to handle wrapped errors.
func IsEncodingError(err error) bool {
	var ee *EncodingError
	return errors.As(err, &ee)
}

func newEncodingError(path, format string, args ...any) *EncodingError {
	return &EncodingError{Path: path, Message: fmt.Sprintf(format, args...)}
}
