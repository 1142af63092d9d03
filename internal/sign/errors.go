package sign

import (
	"errors"
	"fmt"
)

// ValidationError reports bad input at a boundary: missing file, non-PDF
// upload, blank signature text and the like. The triggering operation aborts
// without mutating state; the caller re-prompts.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func newValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError marks an operation that referenced an unknown field id.
// Callers treat it as a no-op, never as a fatal condition.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no field with id %s", e.ID)
}

// CompositionError wraps a failure while parsing, stamping or serializing
// the output document. Composition never emits partial output.
type CompositionError struct {
	Op  string
	Err error
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("composition failed during %s: %v", e.Op, e.Err)
}

func (e *CompositionError) Unwrap() error { return e.Err }

// RemoteError wraps a non-2xx response or transport failure from the
// submission or mail APIs. Local session state survives it so the user can
// retry.
type RemoteError struct {
	Op     string
	Status int
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s failed with status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// NewRemoteError builds a RemoteError for the given operation.
func NewRemoteError(op string, status int, err error) *RemoteError {
	return &RemoteError{Op: op, Status: status, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
