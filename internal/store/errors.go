package store

import "errors"

var (
	// ErrNotFound booking or session id is unknown.
	ErrNotFound = errors.New("booking not found")

	// ErrInvalidTransition the requested status change has no edge in the
	// state machine.
	ErrInvalidTransition = errors.New("invalid booking status transition")

	// ErrConcurrentModification the row changed between read and write.
	ErrConcurrentModification = errors.New("booking was modified concurrently")
)
