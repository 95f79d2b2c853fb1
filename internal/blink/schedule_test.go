package blink

import (
	"testing"
	"time"
)

func TestFromMillis(t *testing.T) {
	s := FromMillis([]int64{100, 250, 0})
	want := []time.Duration{100 * time.Millisecond, 250 * time.Millisecond, 0}
	if len(s.Intervals) != len(want) {
		t.Fatalf("expected %d intervals, got %d", len(want), len(s.Intervals))
	}
	for i, d := range want {
		if s.Intervals[i] != d {
			t.Errorf("interval %d: expected %v, got %v", i, d, s.Intervals[i])
		}
	}
}

func TestFromMillisDropsNegative(t *testing.T) {
	s := FromMillis([]int64{100, -5, 200})
	if len(s.Intervals) != 2 {
		t.Fatalf("expected 2 intervals, got %d", len(s.Intervals))
	}
}

func TestFromMillisEmpty(t *testing.T) {
	if !FromMillis(nil).Empty() {
		t.Error("nil input should produce an empty schedule")
	}
	if !FromMillis([]int64{}).Empty() {
		t.Error("empty input should produce an empty schedule")
	}
}

func TestCloneIndependence(t *testing.T) {
	orig := FromMillis([]int64{10, 20})
	clone := orig.Clone()
	clone.Intervals[0] = 99 * time.Millisecond
	if orig.Intervals[0] != 10*time.Millisecond {
		t.Error("mutating the clone changed the original")
	}
}

func TestEqual(t *testing.T) {
	a := FromMillis([]int64{10, 20})
	b := FromMillis([]int64{10, 20})
	c := FromMillis([]int64{10, 30})
	d := FromMillis([]int64{10})

	if !a.Equal(b) {
		t.Error("identical schedules should be equal")
	}
	if a.Equal(c) {
		t.Error("different intervals should not be equal")
	}
	if a.Equal(d) {
		t.Error("different lengths should not be equal")
	}
	if !(Schedule{}).Equal(Schedule{}) {
		t.Error("empty schedules should be equal")
	}
}
