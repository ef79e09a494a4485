package fulfillment

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a callback with missing required fields.
	ErrInvalidInput = errors.New("fulfillment: missing required callback field")
	// ErrSignatureMismatch marks a callback that failed authentication.
	// No state is touched when it is returned.
	ErrSignatureMismatch = errors.New("fulfillment: signature verification failed")
	// ErrOrderNotFound marks a callback for an unknown merchant order number.
	ErrOrderNotFound = errors.New("fulfillment: order not found")
	// ErrOrderConflict marks a payment id colliding with a different payment
	// already bound to the order, or vice versa. Flagged for manual review.
	ErrOrderConflict = errors.New("fulfillment: conflicting payment for order")
)

// TransientError wraps store failures that are safe to retry end to end: the
// transaction rolled back and no side effect was applied. Handlers map it to a
// 5xx so the gateway redelivers the callback.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("fulfillment: %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

func transient(op string, err error) error {
	return &TransientError{Op: op, Err: err}
}

// IsTransient reports whether err (anywhere in its chain) is retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
