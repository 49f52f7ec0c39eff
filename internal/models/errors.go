package models

import (
	"errors"
	"fmt"
)

// Domain-wide errors
var (
	// ErrBoardNotFound covers both a missing board and one the caller may not see.
	// The two are never distinguished.
	ErrBoardNotFound = errors.New("board not found or access denied")

	// ErrBoardExists indicates a board name already in use on this device
	ErrBoardExists = errors.New("board already exists")

	// ErrInvalidZone indicates a zone name outside the three circles
	ErrInvalidZone = errors.New("invalid zone")

	// ErrInvalidNote indicates a note that breaks a stored-note invariant
	ErrInvalidNote = errors.New("invalid note")

	// ErrNotAuthenticated indicates an operation that needs a signed-in user
	ErrNotAuthenticated = errors.New("not signed in")
)

// StoreError wraps a failure reported by a board store backend
type StoreError struct {
	Op      string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Message == "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap exposes the underlying cause
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err in a StoreError, taking the message from err.
// A nil err yields a nil error.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Message: err.Error(), Err: err}
}
