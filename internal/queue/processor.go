package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	apperrors "micasa/internal/errors"
	"micasa/internal/models"

	log "github.com/sirupsen/logrus"
)

const (
	// MaxRetries is the maximum number of attempts for a job.
	MaxRetries = 3
	// RetryDelay is the base delay between retries (exponential backoff).
	RetryDelay = 500 * time.Millisecond
	// WriteTimeout bounds a single user document write.
	WriteTimeout = 5 * time.Second
)

// UserWriter applies jobs to user documents. The user repository satisfies it.
type UserWriter interface {
	AppendActivity(ctx context.Context, uid string, entry models.ActivityEntry) error
	PushNotification(ctx context.Context, uid string, n models.Notification) error
}

// Processor drains the queue with a fixed pool of workers.
type Processor struct {
	queue        *MemoryQueue
	writer       UserWriter
	workerCount  int
	retryDelay   time.Duration
	wg           sync.WaitGroup
	shutdownOnce sync.Once
	shutdownCh   chan struct{}
}

// NewProcessor creates a new job processor.
func NewProcessor(queue *MemoryQueue, writer UserWriter, workerCount int) *Processor {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Processor{
		queue:       queue,
		writer:      writer,
		workerCount: workerCount,
		retryDelay:  RetryDelay,
		shutdownCh:  make(chan struct{}),
	}
}

// Start begins processing jobs with the configured number of workers.
func (p *Processor) Start(ctx context.Context) {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	log.WithField("workers", p.workerCount).Info("activity processor started")
}

// Stop closes the queue, lets workers drain what is queued, and waits for them.
func (p *Processor) Stop() {
	p.shutdownOnce.Do(func() {
		close(p.shutdownCh)
		p.queue.Close()
	})
	p.wg.Wait()
	log.Info("activity processor stopped")
}

func (p *Processor) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, ErrQueueClosed) || errors.Is(err, context.Canceled) {
				log.WithField("worker", id).Debug("activity worker shutting down")
				return
			}
			continue
		}
		p.processJob(job)
	}
}

// processJob uses its own timeout so jobs still drain after the server context is cancelled.
func (p *Processor) processJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), WriteTimeout)
	defer cancel()

	err := p.apply(ctx, job)
	if err == nil {
		return
	}

	entry := log.WithFields(log.Fields{"uid": job.UID, "kind": job.Kind, "attempt": job.RetryCount + 1})
	if errors.Is(err, apperrors.ErrUserNotFound) {
		entry.Warn("dropping job for missing user")
		return
	}
	entry.WithError(err).Warn("activity job failed")
	p.handleFailure(job)
}

func (p *Processor) apply(ctx context.Context, job Job) error {
	switch job.Kind {
	case JobActivity:
		return p.writer.AppendActivity(ctx, job.UID, job.Activity)
	case JobNotification:
		return p.writer.PushNotification(ctx, job.UID, job.Notification)
	default:
		log.WithField("kind", job.Kind).Error("unknown job kind")
		return nil
	}
}

func (p *Processor) handleFailure(job Job) {
	job.RetryCount++

	if job.RetryCount >= MaxRetries {
		log.WithFields(log.Fields{"uid": job.UID, "kind": job.Kind}).Error("max retries reached, dropping job")
		return
	}

	delay := p.retryDelay * time.Duration(1<<uint(job.RetryCount-1))

	// Waits on shutdownCh rather than a request context so pending retries
	// are abandoned promptly on shutdown.
	go func() {
		select {
		case <-p.shutdownCh:
			log.WithField("uid", job.UID).Warn("shutdown during retry delay, dropping job")
		case <-time.After(delay):
			if err := p.queue.Enqueue(job); err != nil {
				log.WithError(err).WithField("uid", job.UID).Error("failed to re-enqueue job")
			}
		}
	}()
}

// Enqueue adds job to the queue, logging instead of failing when it cannot be queued.
func Enqueue(q Queue, job Job) {
	if q == nil {
		return
	}
	if err := q.Enqueue(job); err != nil {
		log.WithError(err).WithFields(log.Fields{"uid": job.UID, "kind": job.Kind}).Warn("activity job not queued")
	}
}
