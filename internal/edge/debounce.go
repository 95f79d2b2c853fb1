// Package edge contains the debounced button-edge detector and its
// correlation against the remotely announced dosing window. Pure logic with
// injectable time; no GPIO, MQTT, or sleeping.
package edge

import "time"

// Event marks one accepted physical edge.
type Event struct {
	ObservedAt time.Time
}

// Debouncer coalesces edges arriving within the debounce interval into the
// first one. Contact bounce on a mechanical button produces bursts of
// transitions; only the first edge of a burst is real.
//
// Accept is called from the GPIO event callback only; it is not safe for
// concurrent callers.
type Debouncer struct {
	interval time.Duration
	last     time.Time
	seen     bool
}

// NewDebouncer creates a debouncer. Edges closer than interval to the last
// accepted edge are rejected.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Accept reports whether an edge observed at now should be kept. The first
// edge is always accepted; the rejection clock restarts only on accepted
// edges, so a long bounce train collapses into exactly one event.
func (d *Debouncer) Accept(now time.Time) bool {
	if d.seen && now.Sub(d.last) < d.interval {
		return false
	}
	d.seen = true
	d.last = now
	return true
}
