package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	apperrors "micasa/internal/errors"
	"micasa/internal/models"

	"github.com/stretchr/testify/assert"
)

// fakeWriter records writes and fails the first failures[uid] attempts.
type fakeWriter struct {
	mu            sync.Mutex
	activity      map[string][]models.ActivityEntry
	notifications map[string][]models.Notification
	calls         map[string]int
	failures      map[string]int
	errs          map[string]error
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{
		activity:      make(map[string][]models.ActivityEntry),
		notifications: make(map[string][]models.Notification),
		calls:         make(map[string]int),
		failures:      make(map[string]int),
		errs:          make(map[string]error),
	}
}

func (w *fakeWriter) fail(uid string) error {
	w.calls[uid]++
	if err, ok := w.errs[uid]; ok {
		return err
	}
	if w.failures[uid] > 0 {
		w.failures[uid]--
		return assert.AnError
	}
	return nil
}

func (w *fakeWriter) AppendActivity(_ context.Context, uid string, entry models.ActivityEntry) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.fail(uid); err != nil {
		return err
	}
	w.activity[uid] = append(w.activity[uid], entry)
	return nil
}

func (w *fakeWriter) PushNotification(_ context.Context, uid string, n models.Notification) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.fail(uid); err != nil {
		return err
	}
	w.notifications[uid] = append(w.notifications[uid], n)
	return nil
}

func (w *fakeWriter) counts(uid string) (activity, notifications, calls int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.activity[uid]), len(w.notifications[uid]), w.calls[uid]
}

func TestNewProcessor(t *testing.T) {
	q := NewMemoryQueue(10)
	writer := newFakeWriter()

	processor := NewProcessor(q, writer, 0)

	assert.Equal(t, q, processor.queue)
	assert.Equal(t, 1, processor.workerCount)
	assert.Equal(t, RetryDelay, processor.retryDelay)
}

func TestProcessor_StartStop(t *testing.T) {
	processor := NewProcessor(NewMemoryQueue(10), newFakeWriter(), 3)
	processor.Start(context.Background())

	done := make(chan struct{})
	go func() {
		processor.Stop()
		processor.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() timed out")
	}
}

func TestProcessor_ProcessJob(t *testing.T) {
	t.Run("applies activity and notification jobs", func(t *testing.T) {
		q := NewMemoryQueue(10)
		writer := newFakeWriter()
		processor := NewProcessor(q, writer, 2)

		_ = q.Enqueue(testJob("u1"))
		_ = q.Enqueue(NotificationJob("u1", models.NotificationReview, "New review", "rated 5", 3))

		processor.Start(context.Background())
		assert.Eventually(t, func() bool {
			a, n, _ := writer.counts("u1")
			return a == 1 && n == 1
		}, time.Second, 10*time.Millisecond)
		processor.Stop()
	})

	t.Run("retries transient failures", func(t *testing.T) {
		q := NewMemoryQueue(10)
		writer := newFakeWriter()
		writer.failures["u1"] = 2
		processor := NewProcessor(q, writer, 1)
		processor.retryDelay = time.Millisecond

		_ = q.Enqueue(testJob("u1"))

		processor.Start(context.Background())
		assert.Eventually(t, func() bool {
			a, _, calls := writer.counts("u1")
			return a == 1 && calls == 3
		}, time.Second, 10*time.Millisecond)
		processor.Stop()
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		q := NewMemoryQueue(10)
		writer := newFakeWriter()
		writer.failures["u1"] = MaxRetries + 5
		processor := NewProcessor(q, writer, 1)
		processor.retryDelay = time.Millisecond

		_ = q.Enqueue(testJob("u1"))

		processor.Start(context.Background())
		assert.Eventually(t, func() bool {
			_, _, calls := writer.counts("u1")
			return calls == MaxRetries
		}, time.Second, 10*time.Millisecond)

		time.Sleep(50 * time.Millisecond)
		processor.Stop()

		a, _, calls := writer.counts("u1")
		assert.Equal(t, 0, a)
		assert.Equal(t, MaxRetries, calls)
	})

	t.Run("does not retry a missing user", func(t *testing.T) {
		q := NewMemoryQueue(10)
		writer := newFakeWriter()
		writer.errs["gone"] = apperrors.ErrUserNotFound
		processor := NewProcessor(q, writer, 1)
		processor.retryDelay = time.Millisecond

		_ = q.Enqueue(testJob("gone"))

		processor.Start(context.Background())
		time.Sleep(100 * time.Millisecond)
		processor.Stop()

		_, _, calls := writer.counts("gone")
		assert.Equal(t, 1, calls)
	})
}

func TestProcessor_DrainsQueuedJobsOnStop(t *testing.T) {
	q := NewMemoryQueue(100)
	writer := newFakeWriter()
	processor := NewProcessor(q, writer, 4)

	for i := 0; i < 20; i++ {
		_ = q.Enqueue(testJob("u1"))
	}

	processor.Start(context.Background())
	processor.Stop()

	a, _, _ := writer.counts("u1")
	assert.Equal(t, 20, a)
}

func TestProcessor_Backoff(t *testing.T) {
	delays := []time.Duration{
		RetryDelay * time.Duration(1<<0),
		RetryDelay * time.Duration(1<<1),
	}

	assert.Equal(t, 500*time.Millisecond, delays[0])
	assert.Equal(t, time.Second, delays[1])
}
