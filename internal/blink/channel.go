package blink

import (
	"log"
	"time"

	"github.com/sweeney/reef-guardian/internal/cell"
	"github.com/sweeney/reef-guardian/internal/clock"
)

// Output drives a single physical output line. Implementations must be fast
// and non-blocking from the channel's perspective; slow rendering belongs to
// the implementation, not here.
type Output interface {
	Set(on bool) error
}

// Channel is the self-scheduling loop for one output line. It keeps a local
// copy of the shared schedule and re-reads the cell on every wake, so a
// lock timeout degrades to running the cached copy instead of stalling the
// output.
//
// Wake deadlines are computed by adding the interval to the previous
// deadline, not to the current time, so processing jitter does not
// accumulate drift over many cycles.
type Channel struct {
	name        string
	sched       *cell.Cell[Schedule]
	out         Output
	clk         clock.Clock
	idlePoll    time.Duration
	lockTimeout time.Duration

	cached   Schedule
	cursor   int
	high     bool
	deadline time.Time
	running  bool
	stop     <-chan struct{}
}

// maxSleepSlice bounds any single real sleep. Schedule intervals are not
// bounded at ingestion, so without the cap a long phase would hold the
// loop past a stop request for the full remaining phase.
const maxSleepSlice = 250 * time.Millisecond

// NewChannel creates a channel reading its schedule from sched and driving
// out. idlePoll is the cell re-poll interval while idle; lockTimeout bounds
// each cell read.
func NewChannel(name string, sched *cell.Cell[Schedule], out Output, clk clock.Clock, idlePoll, lockTimeout time.Duration) *Channel {
	return &Channel{
		name:        name,
		sched:       sched,
		out:         out,
		clk:         clk,
		idlePoll:    idlePoll,
		lockTimeout: lockTimeout,
	}
}

// Run steps the channel until stop is closed, then holds the output low.
func (c *Channel) Run(stop <-chan struct{}) {
	c.stop = stop
	for {
		select {
		case <-stop:
			c.setOutput(false)
			return
		default:
		}
		c.Step()
	}
}

// Step performs one wake cycle: refresh the schedule copy, toggle or idle,
// and sleep until the next deadline. Exported so tests can drive the state
// machine without a goroutine.
func (c *Channel) Step() {
	c.refresh()

	if c.cached.Empty() {
		if c.running {
			c.running = false
			c.high = false
			c.setOutput(false)
		}
		c.clk.Sleep(c.idlePoll)
		return
	}

	if !c.running {
		// IDLE -> RUNNING: first phase is high. The deadline is anchored
		// before touching the output so output latency is jitter, not
		// schedule skew.
		c.running = true
		c.cursor = 0
		c.high = true
		c.deadline = c.clk.Now().Add(c.cached.Intervals[0])
		c.setOutput(true)
		c.sleepUntilDeadline()
		return
	}

	// Wake at the end of the current phase: toggle and advance.
	c.high = !c.high
	c.setOutput(c.high)
	c.cursor = (c.cursor + 1) % len(c.cached.Intervals)
	c.deadline = c.deadline.Add(c.cached.Intervals[c.cursor])
	c.sleepUntilDeadline()
}

// refresh re-reads the schedule cell. A lock timeout keeps the cached copy.
// A replacement that shrank the schedule below the current cursor clamps
// the cursor to 0 rather than indexing out of bounds on a stale position.
func (c *Channel) refresh() {
	s, ok := c.sched.Read(c.lockTimeout)
	if !ok {
		return
	}
	c.cached = s
	if c.cursor >= len(c.cached.Intervals) {
		c.cursor = 0
	}
}

// sleepUntilDeadline sleeps in bounded slices, re-checking stop between
// them. The deadline itself is untouched, so slicing does not disturb the
// drift-free cadence.
func (c *Channel) sleepUntilDeadline() {
	for {
		remaining := c.deadline.Sub(c.clk.Now())
		if remaining <= 0 {
			return
		}
		if remaining > maxSleepSlice {
			c.clk.Sleep(maxSleepSlice)
			if c.stopped() {
				return
			}
			continue
		}
		c.clk.Sleep(remaining)
		return
	}
}

// stopped reports whether Run's stop channel is closed. Step-driven tests
// have no stop channel; they never sleep for real.
func (c *Channel) stopped() bool {
	if c.stop == nil {
		return false
	}
	select {
	case <-c.stop:
		return true
	default:
		return false
	}
}

func (c *Channel) setOutput(on bool) {
	if err := c.out.Set(on); err != nil {
		log.Printf("blink %s: output set error: %v", c.name, err)
	}
}
