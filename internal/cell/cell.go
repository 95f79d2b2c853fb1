// Package cell provides a mutex-guarded shared value with bounded lock
// acquisition. A reader or writer that cannot take the lock within its
// timeout proceeds with stale data instead of blocking; time-critical
// activities must never stall on bookkeeping writers.
package cell

import "time"

// Cell holds a single value shared between one writer activity and any
// number of reader activities. The lock is a capacity-1 semaphore channel
// so acquisition can be bounded by a timeout.
type Cell[T any] struct {
	sem   chan struct{}
	value T
	clone func(T) T
}

// Option configures a Cell.
type Option[T any] func(*Cell[T])

// WithClone installs a deep-copy function applied on both Read and Write.
// Required for values that hold slices or other shared backing storage, so
// a reader's copy is never aliased to the writer's.
func WithClone[T any](fn func(T) T) Option[T] {
	return func(c *Cell[T]) { c.clone = fn }
}

// New creates a Cell holding initial.
func New[T any](initial T, opts ...Option[T]) *Cell[T] {
	c := &Cell[T]{
		sem:   make(chan struct{}, 1),
		value: initial,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Read copies the current value out under the lock. It returns false if the
// lock could not be acquired within timeout; the caller must treat its
// previous copy as still valid (stale-but-valid, not an error).
func (c *Cell[T]) Read(timeout time.Duration) (T, bool) {
	if !c.acquire(timeout) {
		var zero T
		return zero, false
	}
	v := c.value
	if c.clone != nil {
		v = c.clone(v)
	}
	c.release()
	return v, true
}

// Write replaces the value under the lock. It returns false if the lock
// could not be acquired within timeout; the write is skipped, not queued.
func (c *Cell[T]) Write(v T, timeout time.Duration) bool {
	if !c.acquire(timeout) {
		return false
	}
	if c.clone != nil {
		v = c.clone(v)
	}
	c.value = v
	c.release()
	return true
}

// acquire takes the semaphore, waiting at most timeout. A timeout <= 0
// degenerates to a single non-blocking attempt.
func (c *Cell[T]) acquire(timeout time.Duration) bool {
	select {
	case c.sem <- struct{}{}:
		return true
	default:
	}
	if timeout <= 0 {
		return false
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case c.sem <- struct{}{}:
		return true
	case <-t.C:
		return false
	}
}

func (c *Cell[T]) release() {
	<-c.sem
}
