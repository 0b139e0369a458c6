// Package queue provides background delivery of activity and notification writes.
package queue

import (
	"context"
	"sync"
)

// MemoryQueue is a bounded in-memory job queue.
type MemoryQueue struct {
	jobs     chan Job
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewMemoryQueue creates a new in-memory queue with the given capacity.
func NewMemoryQueue(capacity int) *MemoryQueue {
	return &MemoryQueue{
		jobs:     make(chan Job, capacity),
		capacity: capacity,
	}
}

// Enqueue adds a job to the queue. Returns error if queue is full or closed.
// Lock is held during the entire operation to prevent race condition with Close().
func (q *MemoryQueue) Enqueue(job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Dequeue returns the next job from the queue, blocking until one is available.
// Returns error if context is cancelled or queue is closed.
func (q *MemoryQueue) Dequeue(ctx context.Context) (Job, error) {
	select {
	case <-ctx.Done():
		return Job{}, ctx.Err()
	case job, ok := <-q.jobs:
		if !ok {
			return Job{}, ErrQueueClosed
		}
		return job, nil
	}
}

// Close closes the queue. Jobs already queued can still be dequeued.
func (q *MemoryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
}

// Len returns the current number of jobs in the queue.
func (q *MemoryQueue) Len() int {
	return len(q.jobs)
}

// Capacity returns the queue capacity.
func (q *MemoryQueue) Capacity() int {
	return q.capacity
}
