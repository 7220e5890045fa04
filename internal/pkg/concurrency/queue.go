package concurrency

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrQueueClosed = errors.New("queue closed")

// Queue is a FIFO of candidates shared by one producer and many workers.
// Pops never block; a worker that finds it empty calls Wait for a bounded
// time and re-checks its own stop conditions.
type Queue struct {
	mu       sync.Mutex
	items    []string
	head     int
	capacity int
	closed   bool
	pushed   int64
	popped   int64

	notEmpty chan struct{}
	notFull  chan struct{}
	done     chan struct{}
}

// NewQueue creates a queue holding at most capacity items; 0 means unbounded.
func NewQueue(capacity int) *Queue {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue{
		capacity: capacity,
		notEmpty: make(chan struct{}, 1),
		notFull:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Push appends item, blocking only while a bounded queue is full.
func (q *Queue) Push(ctx context.Context, item string) error {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return ErrQueueClosed
		}
		if q.capacity == 0 || q.lenLocked() < q.capacity {
			q.items = append(q.items, item)
			q.pushed++
			q.mu.Unlock()
			signal(q.notEmpty)
			return nil
		}
		q.mu.Unlock()

		select {
		case <-q.notFull:
		case <-q.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// TryPop removes the oldest item. ok is false when nothing is available
// right now, which is not the same as the queue being finished.
func (q *Queue) TryPop() (item string, ok bool) {
	q.mu.Lock()
	if q.lenLocked() == 0 {
		q.mu.Unlock()
		return "", false
	}

	item = q.items[q.head]
	q.items[q.head] = ""
	q.head++
	q.popped++
	if q.head > 1024 && q.head*2 >= len(q.items) {
		q.items = append(q.items[:0:0], q.items[q.head:]...)
		q.head = 0
	}
	remaining := q.lenLocked()
	q.mu.Unlock()

	signal(q.notFull)
	if remaining > 0 {
		signal(q.notEmpty)
	}
	return item, true
}

// Wait blocks until an item may be available, the queue closes, or d passes.
func (q *Queue) Wait(d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-q.notEmpty:
	case <-q.done:
	case <-timer.C:
	}
}

// Close marks the end of production. Items already queued can still be popped.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}

// Drained reports whether the queue is closed and empty.
func (q *Queue) Drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && q.lenLocked() == 0
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lenLocked()
}

// Counts returns how many items were pushed and popped so far.
func (q *Queue) Counts() (pushed, popped int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pushed, q.popped
}

func (q *Queue) lenLocked() int {
	return len(q.items) - q.head
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
