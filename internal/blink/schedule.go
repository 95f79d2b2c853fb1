// Package blink drives an output line through alternating high/low phases
// whose lengths come from a remotely updated schedule. Each channel is an
// independent self-scheduling loop; a late wake on one channel never delays
// another.
package blink

import "time"

// Schedule is an ordered sequence of phase lengths for one output channel.
// An empty schedule means the channel is idle with its output held low.
type Schedule struct {
	Intervals []time.Duration
}

// Clone returns a deep copy so a reader never aliases the writer's slice.
func (s Schedule) Clone() Schedule {
	if len(s.Intervals) == 0 {
		return Schedule{}
	}
	out := make([]time.Duration, len(s.Intervals))
	copy(out, s.Intervals)
	return Schedule{Intervals: out}
}

// Empty reports whether the schedule has no intervals.
func (s Schedule) Empty() bool {
	return len(s.Intervals) == 0
}

// Equal reports whether two schedules have identical intervals.
func (s Schedule) Equal(other Schedule) bool {
	if len(s.Intervals) != len(other.Intervals) {
		return false
	}
	for i, v := range s.Intervals {
		if other.Intervals[i] != v {
			return false
		}
	}
	return true
}

// FromMillis builds a schedule from millisecond interval values, dropping
// negative entries. Used at the ingestion boundary.
func FromMillis(ms []int64) Schedule {
	if len(ms) == 0 {
		return Schedule{}
	}
	intervals := make([]time.Duration, 0, len(ms))
	for _, m := range ms {
		if m < 0 {
			continue
		}
		intervals = append(intervals, time.Duration(m)*time.Millisecond)
	}
	return Schedule{Intervals: intervals}
}
