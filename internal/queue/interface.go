package queue

import "context"

//go:generate mockgen -destination=mocks/mock_queue.go -package=mocks micasa/internal/queue Queue

// Queue buffers notification and activity jobs between request handlers and
// the background processor.
type Queue interface {
	// Enqueue never blocks. It fails with ErrQueueFull when the buffer is at capacity.
	Enqueue(job Job) error
	// Dequeue waits for the next job or for ctx to end.
	Dequeue(ctx context.Context) (Job, error)
	Close()
	Len() int
	Capacity() int
}

var _ Queue = (*MemoryQueue)(nil)
