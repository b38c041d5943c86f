// Package queue provides the pending-job FIFO consumed by the single
// orchestrator worker.
package queue

import (
	"context"
	"errors"
	"sync"
)

// ErrFull is returned when the queue is at capacity.
var ErrFull = errors.New("queue is full")

// Queue is a thread-safe FIFO of job ids. Enqueue and status reads
// are concurrent; Dequeue blocks on an internal wake signal instead
// of polling, so an idle worker consumes no CPU.
type Queue struct {
	mu       sync.Mutex
	ids      []string
	capacity int
	wake     chan struct{}
}

// New creates a queue. capacity <= 0 means unbounded.
func New(capacity int) *Queue {
	return &Queue{
		capacity: capacity,
		wake:     make(chan struct{}, 1),
	}
}

// Enqueue appends id and wakes the worker. Returns the 0-based
// position the job was queued at.
func (q *Queue) Enqueue(id string) (int, error) {
	q.mu.Lock()
	if q.capacity > 0 && len(q.ids) >= q.capacity {
		q.mu.Unlock()
		return 0, ErrFull
	}
	pos := len(q.ids)
	q.ids = append(q.ids, id)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return pos, nil
}

// Dequeue blocks until a job id is available or ctx is canceled.
func (q *Queue) Dequeue(ctx context.Context) (string, error) {
	for {
		q.mu.Lock()
		if len(q.ids) > 0 {
			id := q.ids[0]
			q.ids = q.ids[1:]
			q.mu.Unlock()
			return id, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-q.wake:
		}
	}
}

// Position returns the 0-based count of jobs ahead of id, or -1 when
// the job is no longer pending (already dequeued or never enqueued).
func (q *Queue) Position(id string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, queued := range q.ids {
		if queued == id {
			return i
		}
	}
	return -1
}

// Len returns the number of pending jobs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ids)
}
