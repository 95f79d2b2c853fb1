package edge

import (
	"testing"
	"time"
)

func TestFirstEdgeAccepted(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if !d.Accept(now) {
		t.Error("first edge should be accepted")
	}
}

func TestEdgesWithinIntervalCoalesce(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if !d.Accept(now) {
		t.Fatal("first edge should be accepted")
	}
	if d.Accept(now.Add(10 * time.Millisecond)) {
		t.Error("edge 10ms after an accepted edge should be rejected")
	}
}

func TestEdgesBeyondIntervalAccepted(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if !d.Accept(now) {
		t.Fatal("first edge should be accepted")
	}
	if !d.Accept(now.Add(25 * time.Millisecond)) {
		t.Error("edge 25ms after an accepted edge should be accepted")
	}
}

func TestBounceTrainCollapsesToOne(t *testing.T) {
	// The rejection clock restarts only on accepted edges: a train of
	// bounces every 5ms must produce exactly one event, not one per lull.
	d := NewDebouncer(20 * time.Millisecond)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	accepted := 0
	for i := 0; i < 4; i++ {
		if d.Accept(now.Add(time.Duration(i) * 5 * time.Millisecond)) {
			accepted++
		}
	}
	if accepted != 1 {
		t.Errorf("expected 1 accepted edge from bounce train, got %d", accepted)
	}

	// 20ms after the accepted edge (not the last bounce) a new edge is
	// real again.
	if !d.Accept(now.Add(21 * time.Millisecond)) {
		t.Error("edge past the interval from the accepted edge should be accepted")
	}
}
