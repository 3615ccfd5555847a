package pool

import "errors"

//go:generate mockgen -destination=../internal/mocks/mockpool/pool.go -package=mockpool github.com/ygrebnov/stoppable/pool Pool

// Pool executes submitted units of work on a set of worker goroutines.
// It knows nothing about task failures: supervision is layered on top of it.
type Pool interface {
	// Submit schedules fn for asynchronous execution. It never blocks.
	// It returns ErrClosed once Close has been called.
	Submit(fn func()) error

	// Close stops accepting work and waits for the worker goroutines to exit.
	// Work submitted before Close is still executed.
	Close()
}

var (
	ErrClosed          = errors.New("pool: closed for submit")
	ErrInvalidCapacity = errors.New("pool: capacity must be greater than zero")
)
