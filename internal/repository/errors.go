package repository

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrRecordNotFound  = errors.New("record not found")
	// ErrDuplicateRecord means the participant already holds a record for the
	// session. Registration is idempotent by rejection, not by overwrite.
	ErrDuplicateRecord = errors.New("participant already checked in for this session")
)

// StorageError wraps an underlying persistence failure. It is fatal for the
// operation that hit it; retrying is the caller's call.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
