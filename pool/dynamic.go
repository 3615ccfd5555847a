package pool

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// dynamic starts a new goroutine for every submission.
type dynamic struct {
	mu     sync.RWMutex
	closed bool
	group  errgroup.Group
}

// NewDynamic returns a Pool without a concurrency cap.
func NewDynamic() Pool {
	return &dynamic{}
}

func (p *dynamic) Submit(fn func()) error {
	// read lock keeps group.Go from racing with group.Wait in Close
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	p.group.Go(func() error {
		fn()
		return nil
	})
	return nil
}

func (p *dynamic) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	_ = p.group.Wait()
}
