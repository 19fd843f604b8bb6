// Panic recovery utilities. Array math on malformed inputs can panic deep
// inside gonum; the orchestrator converts such panics into per-file errors so
// one bad export does not abort a whole run.

package errors

import (
	"fmt"
	"runtime/debug"
)

// PanicError is an error created from a recovered panic. It keeps the
// original panic value and the stack trace captured at recovery time.
type PanicError struct {
	// PanicValue is the original value passed to panic()
	PanicValue interface{}

	// StackTrace contains the stack trace at the time of panic
	StackTrace string

	// Operation identifies where the panic was recovered
	Operation string
}

// Error implements the error interface for PanicError.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// String provides detailed information including the stack trace.
func (e *PanicError) String() string {
	return fmt.Sprintf("panic in %s: %v\nStack trace:\n%s",
		e.Operation, e.PanicValue, e.StackTrace)
}

// NewPanicError creates a PanicError for the given operation and panic value.
func NewPanicError(operation string, panicValue interface{}) *PanicError {
	return &PanicError{
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
		Operation:  operation,
	}
}

// Recover converts a panic into an error. Use with defer and a pointer to the
// function's error return value:
//
//	func (e *Engineer) buildOne(path string) (err error) {
//	    defer errors.Recover(&err, "Engineer.buildOne")
//	    // ...
//	}
//
// If the function already set an error, the panic information wraps it.
func Recover(err *error, operation string) {
	if r := recover(); r != nil {
		panicErr := NewPanicError(operation, r)
		if *err != nil {
			*err = fmt.Errorf("panic in %s: %v (original error: %w)", operation, r, *err)
		} else {
			*err = panicErr
		}
	}
}
