package client

import (
	"errors"
	"fmt"
)

// ErrTransport matches any *TransportError via errors.Is.
var ErrTransport = errors.New("transport failure")

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassNetwork represents failures where no response body was obtained.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassMalformed represents bodies without a valid envelope.
	ErrorClassMalformed ErrorClass = "malformed"

	// ErrorClassAPI represents application-level error elements. These are
	// returned to the caller as documents, not as errors.
	ErrorClassAPI ErrorClass = "api"
)

// TransportError is returned when no usable response body was obtained.
// It is never cached.
type TransportError struct {
	Action     string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("transport failure for %s (status %d): %v", e.Action, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport failure for %s: %v", e.Action, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
