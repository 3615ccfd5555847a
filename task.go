package stoppable

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Task is a unit of work run by a Pool.
// A non-nil error, or a panic, is a failure that stops the pool.
// ctx is canceled with cause ErrStopped once the pool stops; honoring it is
// the only way a running task ends early.
type Task func(ctx context.Context) error

// TaskFunc adapts func(ctx) error to Task.
func TaskFunc(fn func(context.Context) error) Task { return Task(fn) }

// TaskNoContext adapts a context-unaware func() error to Task.
func TaskNoContext(fn func() error) Task {
	return func(context.Context) error { return fn() }
}

// Run executes t inside the fault boundary: a panic is returned as a *PanicError.
// A runtime.Goexit inside t still ends the calling goroutine; only a Pool
// turns it into ErrTaskAborted.
func (t Task) Run(ctx context.Context) error {
	return execTask(ctx, t, defaultPanicHandler)
}

// execTask runs t on the calling goroutine and converts a panic into an error
// through onPanic. Running on the caller's goroutine keeps the worker occupied
// until t really returns.
func execTask(ctx context.Context, t Task, onPanic PanicHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = onPanic(r, debug.Stack())
			if err == nil {
				err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
			}
		}
	}()

	return t(ctx)
}
