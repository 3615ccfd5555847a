package stoppable

import "sync"

// lifecycleCoordinator runs the Close sequence of a Pool.
// It owns nothing; it orders the steps and runs them exactly once, so
// concurrent Close calls are safe.
type lifecycleCoordinator struct {
	stop      func()
	closePool func()
	detach    func() bool
	release   func()

	once sync.Once
}

func newLifecycleCoordinator(stop, closePool func(), detach func() bool, release func()) *lifecycleCoordinator {
	return &lifecycleCoordinator{stop: stop, closePool: closePool, detach: detach, release: release}
}

// Close executes, in order:
// 1) raise the stop signal so queued tasks are skipped
// 2) close the underlying pool and wait for its workers to exit
// 3) detach from the parent context
// 4) release the context handed to tasks
func (lc *lifecycleCoordinator) Close() {
	lc.once.Do(func() {
		if lc.stop != nil {
			lc.stop()
		}
		if lc.closePool != nil {
			lc.closePool()
		}
		if lc.detach != nil {
			lc.detach()
		}
		if lc.release != nil {
			lc.release()
		}
	})
}
