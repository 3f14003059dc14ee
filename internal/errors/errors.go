// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrLiveRootMissing = errors.New("live root does not exist")
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigInvalid   = errors.New("invalid configuration")
	ErrDatabaseError   = errors.New("database error")
)

// StoreError represents a persistence failure in the cache or archive.
type StoreError struct {
	Store   string
	Session string
	Op      string
	Err     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error [%s] %s %s: %v", e.Store, e.Op, e.Session, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(store, session, op string, err error) *StoreError {
	return &StoreError{Store: store, Session: session, Op: op, Err: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
