package stoppable

import (
	"context"
	"sync/atomic"
)

// stopSignal is the pool-wide "cease starting new work" flag.
// Setting it also cancels the context handed to running tasks.
type stopSignal struct {
	stopped atomic.Bool
	cancel  context.CancelCauseFunc
}

func (s *stopSignal) isStopped() bool { return s.stopped.Load() }

// set raises the signal. Only the call performing the transition returns true.
func (s *stopSignal) set() bool {
	if !s.stopped.CompareAndSwap(false, true) {
		return false
	}
	if s.cancel != nil {
		s.cancel(ErrStopped)
	}
	return true
}

// errorSlot holds the first failure reported to the pool.
// Once populated it is never overwritten or cleared.
type errorSlot struct {
	err atomic.Pointer[error]
}

// trySet stores err unless the slot is already populated.
// It reports whether this call populated the slot. nil is never stored.
func (s *errorSlot) trySet(err error) bool {
	if err == nil {
		return false
	}
	return s.err.CompareAndSwap(nil, &err)
}

// take returns the stored failure, or nil.
func (s *errorSlot) take() error {
	if p := s.err.Load(); p != nil {
		return *p
	}
	return nil
}
