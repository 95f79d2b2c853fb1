// Package trend aggregates sensor samples into a rolling average. The
// buffer is owned exclusively by the aggregator activity; producers hand
// samples over a queue and never touch it directly.
package trend

// Rolling is a fixed-capacity circular buffer over the most recent samples.
// Allocated once at startup; it never grows.
type Rolling struct {
	buf   []float64
	head  int // next write position
	count int
}

// NewRolling creates a buffer holding the last capacity samples.
func NewRolling(capacity int) *Rolling {
	if capacity < 1 {
		capacity = 1
	}
	return &Rolling{buf: make([]float64, capacity)}
}

// Push records a sample, evicting the oldest once the buffer is full.
func (r *Rolling) Push(v float64) {
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Average returns the mean over the populated slots, or 0 when empty.
func (r *Rolling) Average() float64 {
	if r.count == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < r.count; i++ {
		sum += r.buf[i]
	}
	return sum / float64(r.count)
}

// Count returns the number of populated slots (<= capacity).
func (r *Rolling) Count() int {
	return r.count
}
