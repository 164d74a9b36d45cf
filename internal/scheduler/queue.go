package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// errQueueClosed is returned by Dequeue once a closed queue is drained.
var errQueueClosed = errors.New("queue closed")

// queue is a bounded in-memory FIFO with context-aware operations.
type queue[T any] struct {
	ch      chan T
	closeMu sync.Mutex
	closed  bool
}

func newQueue[T any](capacity int) *queue[T] {
	return &queue[T]{ch: make(chan T, capacity)}
}

// Enqueue pushes item or returns when ctx ends.
func (q *queue[T]) Enqueue(ctx context.Context, item T) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("enqueue canceled: %w", err)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("enqueue canceled: %w", ctx.Err())
	case q.ch <- item:
		return nil
	}
}

// Dequeue pops the next item. After Close it keeps returning queued items
// until the queue is empty, then errQueueClosed.
func (q *queue[T]) Dequeue(ctx context.Context) (T, error) {
	var zero T
	select {
	case <-ctx.Done():
		return zero, fmt.Errorf("dequeue canceled: %w", ctx.Err())
	case item, ok := <-q.ch:
		if !ok {
			return zero, errQueueClosed
		}
		return item, nil
	}
}

// Close stops further Enqueue calls. It is safe to call more than once.
func (q *queue[T]) Close() {
	q.closeMu.Lock()
	defer q.closeMu.Unlock()
	if q.closed {
		return
	}
	close(q.ch)
	q.closed = true
}
