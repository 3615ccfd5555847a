package pool

import (
	"sync"
	"sync/atomic"
)

// noCopy may be embedded into structs which must not be copied after first use.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

type node[T any] struct {
	val  T
	next *node[T]
}

// Queue is an unbounded, single-mutex MPMC FIFO queue.
// Put never blocks; Get blocks while the queue is empty and open.
type Queue[T any] struct {
	nc noCopy

	mu     sync.Mutex
	cond   *sync.Cond
	head   *node[T] // sentinel
	tail   *node[T]
	closed bool
	size   atomic.Int64
}

// NewQueue constructs an empty open queue.
func NewQueue[T any]() *Queue[T] {
	s := &node[T]{}
	q := &Queue[T]{head: s, tail: s}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Put appends v to the queue. It returns ErrClosed after Close.
func (q *Queue[T]) Put(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	n := &node[T]{val: v}
	q.tail.next = n
	q.tail = n
	q.size.Add(1)
	q.cond.Signal()
	return nil
}

// Get removes and returns the oldest element.
// The boolean is false once the queue is closed and fully drained.
func (q *Queue[T]) Get() (T, bool) {
	q.mu.Lock()
	for q.head.next == nil && !q.closed {
		q.cond.Wait()
	}

	if q.head.next == nil {
		q.mu.Unlock()
		var zero T
		return zero, false
	}

	n := q.head.next
	q.head.next = n.next
	if q.head.next == nil {
		q.tail = q.head
	}
	q.mu.Unlock()

	q.size.Add(-1)
	return n.val, true
}

// Len returns the number of queued elements.
func (q *Queue[T]) Len() int { return int(q.size.Load()) }

// Close rejects further Puts and wakes all blocked consumers.
// Elements already queued remain available to Get.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
}
