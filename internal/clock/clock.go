// Package clock abstracts monotonic time so timing logic can be tested
// without real sleeps. The daemon never uses wall-clock time for scheduling
// decisions; time.Time values carry Go's monotonic reading.
package clock

import "time"

// Clock supplies the current time and a sleep primitive.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// Real is the system clock.
type Real struct{}

// Now returns the current time.
func (Real) Now() time.Time { return time.Now() }

// Sleep pauses the calling goroutine for d.
func (Real) Sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
