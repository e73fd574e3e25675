package authorization

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a referenced patient or request does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput means a required field is missing or empty.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict means a concurrent or repeated review hit a request that
	// already reached a terminal state.
	ErrConflict = errors.New("conflict")
	// ErrCodeCollision is returned by the repository when an insert trips
	// the authorization-code uniqueness constraint.
	ErrCodeCollision = errors.New("authorization code collision")
)

// ValidationError converts an invalid code/service/expiry check into a
// caller-facing failure. It carries the machine-readable reason code.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", ReasonMessage(e.Reason))
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
