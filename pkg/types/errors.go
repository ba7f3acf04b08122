// Package types defines error types
package types

import (
	"errors"
	"fmt"
)

// Predefined errors
var (
	// ErrInterrupted indicates a blocking operation was cut short by cancellation
	ErrInterrupted = errors.New("interrupted")

	// ErrNotOwner indicates a release by someone who does not hold the monitor
	ErrNotOwner = errors.New("monitor not held by caller")

	// ErrInvalidWorkerCount indicates a negative worker count
	ErrInvalidWorkerCount = errors.New("worker count must not be negative")

	// ErrUnknownWorker indicates a worker id outside the launched set
	ErrUnknownWorker = errors.New("unknown worker")

	// ErrAlreadyStarted indicates a second start of a worker or launcher
	ErrAlreadyStarted = errors.New("already started")

	// ErrNotStarted indicates a join on something that was never started
	ErrNotStarted = errors.New("not started")

	// ErrUnknownDemo indicates a demo name that is not registered
	ErrUnknownDemo = errors.New("unknown demo")

	// ErrClassNotFound is the expected failure raised and caught by the checked demo
	ErrClassNotFound = errors.New("class not found")

	// ErrApplication is the unexpected failure that escapes the unchecked demo
	ErrApplication = errors.New("application error")
)

// DemoError represents a failure inside a demonstration routine or worker
type DemoError struct {
	// Operation is the name of the routine where the error occurred
	Operation string

	// Cause is the underlying error
	Cause error

	// Context contains error context information
	Context map[string]interface{}
}

// Error implements the error interface
func (e *DemoError) Error() string {
	return fmt.Sprintf("demo error in %s: %v", e.Operation, e.Cause)
}

// Unwrap returns the underlying error
func (e *DemoError) Unwrap() error {
	return e.Cause
}

// Is checks if the error is a specific error
func (e *DemoError) Is(target error) bool {
	return errors.Is(e.Cause, target)
}

// NewDemoError creates a new demo error
func NewDemoError(operation string, cause error) *DemoError {
	return &DemoError{
		Operation: operation,
		Cause:     cause,
		Context:   make(map[string]interface{}),
	}
}

// WithContext adds error context
func (e *DemoError) WithContext(key string, value interface{}) *DemoError {
	e.Context[key] = value
	return e
}

// IsInterrupted reports whether err stems from an interruption
func IsInterrupted(err error) bool {
	return errors.Is(err, ErrInterrupted)
}
