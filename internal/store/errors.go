package store

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a lookup for an id the store does not hold.
var ErrNotFound = errors.New("record not found")

// Error wraps any store failure with the operation that produced it. The
// resolution engine forwards Message verbatim in user-visible outcomes.
type Error struct {
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a store error with a user-presentable message.
func NewError(op string, err error) *Error {
	return &Error{Op: op, Message: fmt.Sprintf("%s failed: %v", op, err), Err: err}
}

// IsNotFound reports whether err stems from a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
