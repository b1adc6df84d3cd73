package hub

import (
	"sync"
)

// queue is a thread-safe FIFO that doubles its capacity when it reaches 70%
// full, up to a hard limit.
type queue[T any] struct {
	mu       sync.Mutex
	cond     *sync.Cond
	buf      []T
	head     int // read position
	tail     int // write position
	count    int
	capacity int
	limit    int
	closed   bool
}

func newQueue[T any](initialCapacity, limit int) *queue[T] {
	if limit < 1 {
		limit = 1
	}
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	if initialCapacity > limit {
		initialCapacity = limit
	}
	q := &queue[T]{
		buf:      make([]T, initialCapacity),
		capacity: initialCapacity,
		limit:    limit,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Send appends an item. It returns ErrClosed after Close and ErrQueueFull
// when the limit is reached.
func (q *queue[T]) Send(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	if q.count >= q.limit {
		return ErrQueueFull
	}

	threshold := (q.capacity * 70) / 100
	if threshold < 1 {
		threshold = 1
	}
	if (q.count+1 >= threshold || q.count == q.capacity) && q.capacity < q.limit {
		q.grow()
	}

	q.buf[q.tail] = item
	q.tail = (q.tail + 1) % q.capacity
	q.count++

	q.cond.Signal()
	return nil
}

// Receive removes the oldest item, blocking until one is available.
// It returns false once the queue is closed and empty.
func (q *queue[T]) Receive() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == 0 && !q.closed {
		q.cond.Wait()
	}

	if q.count == 0 {
		var zero T
		return zero, false
	}
	return q.pop(), true
}

// Close stops accepting items. Receivers get the remaining items, then false.
func (q *queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// Discard drops every buffered item and returns how many were dropped.
func (q *queue[T]) Discard() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := q.count
	for q.count > 0 {
		q.pop()
	}
	return n
}

// Len returns the number of buffered items.
func (q *queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Cap returns the current capacity.
func (q *queue[T]) Cap() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.capacity
}

// pop must be called with lock held and count > 0.
func (q *queue[T]) pop() T {
	item := q.buf[q.head]
	var zero T
	q.buf[q.head] = zero // Clear reference for GC
	q.head = (q.head + 1) % q.capacity
	q.count--
	return item
}

// grow doubles the capacity, bounded by limit. Must be called with lock held.
func (q *queue[T]) grow() {
	newCapacity := min(q.capacity*2, q.limit)
	newBuf := make([]T, newCapacity)

	if q.count > 0 {
		if q.head < q.tail {
			copy(newBuf, q.buf[q.head:q.tail])
		} else {
			// Wrapped: [head...end) + [0...tail)
			n := copy(newBuf, q.buf[q.head:])
			copy(newBuf[n:], q.buf[:q.tail])
		}
	}

	q.buf = newBuf
	q.head = 0
	q.tail = q.count
	q.capacity = newCapacity
}
