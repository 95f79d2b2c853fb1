package clock

import (
	"sync"
	"time"
)

// Fake is a test clock. Sleep advances the fake time instantly and records
// the requested duration, so a timing loop can be run through many cycles
// in microseconds of real time. Not safe for use by more than one sleeping
// goroutine at a time.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	Sleeps []time.Duration

	// AfterSleep, if set, is called (outside the lock) after each Sleep
	// with the 1-based sleep count. Tests use it to stop a loop after a
	// fixed number of cycles.
	AfterSleep func(n int)
}

// NewFake creates a Fake starting at the given time.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake current time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Sleep advances the fake time by d without blocking.
func (f *Fake) Sleep(d time.Duration) {
	f.mu.Lock()
	if d > 0 {
		f.now = f.now.Add(d)
	}
	f.Sleeps = append(f.Sleeps, d)
	n := len(f.Sleeps)
	hook := f.AfterSleep
	f.mu.Unlock()
	if hook != nil {
		hook(n)
	}
}

// Advance moves the fake time forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
