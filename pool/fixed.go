package pool

import "sync"

// fixed runs submitted work on exactly capacity long-lived goroutines.
type fixed struct {
	queue *Queue[func()]
	wg    sync.WaitGroup
	once  sync.Once
}

// NewFixed starts capacity worker goroutines sharing one unbounded queue.
func NewFixed(capacity uint) (Pool, error) {
	if capacity == 0 {
		return nil, ErrInvalidCapacity
	}

	p := &fixed{queue: NewQueue[func()]()}
	p.wg.Add(int(capacity))
	for i := uint(0); i < capacity; i++ {
		go p.work()
	}
	return p, nil
}

func (p *fixed) work() {
	normalReturn := false
	defer func() {
		if !normalReturn {
			// fn called runtime.Goexit: replace this worker to keep capacity
			p.wg.Add(1)
			go p.work()
		}
		p.wg.Done()
	}()

	for {
		fn, ok := p.queue.Get()
		if !ok {
			normalReturn = true
			return
		}
		fn()
	}
}

func (p *fixed) Submit(fn func()) error { return p.queue.Put(fn) }

// Close lets workers drain the queue, then waits for them to exit.
func (p *fixed) Close() {
	p.once.Do(func() {
		p.queue.Close()
		p.wg.Wait()
	})
}
