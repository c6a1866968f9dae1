package entity

import "errors"

var (
	// ErrNotFound is returned when a referenced plan, slot or progress record does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvariantViolation is returned when a write would leave more than one current
	// plan for a user or a negative day-span
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrTransientStore wraps infrastructure failures of the persistence layer
	ErrTransientStore = errors.New("store unavailable")

	// ErrInvalidArgument is returned for malformed input
	ErrInvalidArgument = errors.New("invalid argument")
)
