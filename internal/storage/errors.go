// Package storage holds what the storage backends share with the services
// that drive them.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrFailure is returned when the backing store could not complete an
// operation. Any unit of work that produced it has been rolled back, so the
// caller may retry the whole request.
var ErrFailure = errors.New("storage failure")

// Failure wraps cause so that errors.Is(err, ErrFailure) holds while the
// original error stays available for logging.
func Failure(op string, cause error) error {
	return &failureError{op: op, cause: cause}
}

type failureError struct {
	op    string
	cause error
}

func (e *failureError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrFailure, e.op, e.cause)
}

func (e *failureError) Is(target error) bool { return target == ErrFailure }

func (e *failureError) Unwrap() error { return e.cause }

// IsTimeout reports whether err came from a cancelled or expired context.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
