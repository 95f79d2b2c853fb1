// Package queue provides a typed, fixed-capacity FIFO channel between a
// producer context and a consumer activity. Producers never block: a send
// against a full queue drops the item and counts it. Sizing the capacity is
// the caller's admission policy; losing a stale duplicate is preferred over
// stalling a time-critical producer.
package queue

import (
	"sync/atomic"
	"time"
)

// Queue is a bounded FIFO. Capacity is fixed at creation.
type Queue[T any] struct {
	ch      chan T
	dropped atomic.Uint64
}

// New creates a queue with the given capacity. Capacity must be >= 1.
func New[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue[T]{ch: make(chan T, capacity)}
}

// TrySend enqueues v without blocking. Returns false (and counts the drop)
// if the queue is full.
func (q *Queue[T]) TrySend(v T) bool {
	select {
	case q.ch <- v:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Receive dequeues the oldest item, waiting at most timeout. A negative
// timeout blocks indefinitely; only purely event-driven consumers may use
// it. Returns false on timeout.
func (q *Queue[T]) Receive(timeout time.Duration) (T, bool) {
	if timeout < 0 {
		v := <-q.ch
		return v, true
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case v := <-q.ch:
		return v, true
	case <-t.C:
		var zero T
		return zero, false
	}
}

// TryReceive dequeues the oldest item without waiting. Used by consumers
// that drain a queue opportunistically between other work.
func (q *Queue[T]) TryReceive() (T, bool) {
	select {
	case v := <-q.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Len reports the number of queued items.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}

// Dropped reports how many sends were discarded against a full queue.
func (q *Queue[T]) Dropped() uint64 {
	return q.dropped.Load()
}
