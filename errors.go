package stoppable

import (
	"errors"
	"fmt"
)

const Namespace = "stoppable"

var (
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")
	ErrInvalidTask   = errors.New(Namespace + ": task must not be nil")
	ErrTaskPanicked  = errors.New(Namespace + ": task execution panicked")
	// ErrTaskAborted reports a task that ended its goroutine with runtime.Goexit
	// (for example t.FailNow) instead of returning.
	ErrTaskAborted = errors.New(Namespace + ": task execution aborted")
	// ErrStopped is the cancellation cause of the context handed to tasks once the pool stops.
	ErrStopped = errors.New(Namespace + ": pool stopped")
)

// PanicHandler converts a value recovered from a panicking task into the
// error reported by Observe. stack is the goroutine stack at recovery time.
// A nil return is replaced by an error wrapping ErrTaskPanicked.
type PanicHandler func(recovered any, stack []byte) error

// PanicError is the default translation of a task panic.
// It matches ErrTaskPanicked and, when the panic value is an error, that error too.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("%s: %v", ErrTaskPanicked, e.Value) }

func (e *PanicError) Unwrap() []error {
	if err, ok := e.Value.(error); ok {
		return []error{ErrTaskPanicked, err}
	}
	return []error{ErrTaskPanicked}
}

func defaultPanicHandler(recovered any, stack []byte) error {
	return &PanicError{Value: recovered, Stack: stack}
}
