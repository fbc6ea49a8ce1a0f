package repository

import (
	"errors"
	"fmt"
)

// Sentinel kinds for store errors.
var (
	ErrNotFound   = errors.New("record not found")
	ErrConstraint = errors.New("storage constraint violated")
)

// StorageError wraps a backend failure with the operation that failed.
type StorageError struct {
	Backend   string
	Operation string
	Cause     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StorageError) Unwrap() error { return e.Cause }

func newStorageError(op string, cause error) error {
	return &StorageError{Backend: "sqlite", Operation: op, Cause: cause}
}
