package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: run", ErrNotFound)

	// Configuration / startup errors
	ErrInvalidConfig = errors.New("invalid study configuration")
	ErrEmptySequence = errors.New("trial sequence is empty")

	// Run lifecycle errors
	ErrRunTerminal   = errors.New("run already terminal")
	ErrRunNotStarted = errors.New("run not started")
)

// Error constructors with context
func NewInvalidConfigError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, reason)
}

func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
