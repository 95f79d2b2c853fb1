package edge

import "time"

// WindowState is the dosing window announced by the controller. OpenedAt
// and Duration are only meaningful while Open is true, and are captured in
// the same cell write as the open transition so an edge firing concurrently
// can never observe a torn pair.
type WindowState struct {
	Open     bool
	OpenedAt time.Time
	Duration time.Duration
}

// Expired reports whether an open window has outlived its duration plus the
// margin without an explicit close. Guards against a lost close message
// leaving the window open forever and turning unrelated later edges into
// false positives.
func (w WindowState) Expired(now time.Time, margin time.Duration) bool {
	return w.Open && now.Sub(w.OpenedAt) > w.Duration+margin
}

// Classification is the outcome of correlating an edge against the window.
type Classification int

const (
	Miss Classification = iota
	Success
)

// String returns the classification name for logs and payloads.
func (c Classification) String() string {
	if c == Success {
		return "SUCCESS"
	}
	return "MISS"
}

// Correlator classifies accepted edges against the window state.
type Correlator struct {
	// Tolerance widens the acceptance bound past the window duration to
	// absorb transport and scheduling latency on the open announcement.
	Tolerance time.Duration
}

// Classify returns the classification and the edge's offset from the window
// open. A closed window is always a Miss; a negative offset (edge predates
// the recorded open) is a Miss.
func (c Correlator) Classify(e Event, w WindowState) (Classification, time.Duration) {
	if !w.Open {
		return Miss, 0
	}
	offset := e.ObservedAt.Sub(w.OpenedAt)
	if offset < 0 || offset > w.Duration+c.Tolerance {
		return Miss, offset
	}
	return Success, offset
}
