//go:build linux

// Package rt pins activity goroutines to OS threads and assigns them
// static scheduling priorities, so the kernel enforces the
// urgent > dispatch > background ordering instead of relying on the Go
// scheduler's fairness alone. Best-effort: callers log and continue when
// the process lacks the privilege.
package rt

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// PinFIFO locks the calling goroutine to its OS thread and moves the
// thread into SCHED_FIFO at the given priority (1..99). Must be called
// from the activity goroutine itself, before it enters its loop.
func PinFIFO(priority int) error {
	runtime.LockOSThread()
	attr := &unix.SchedAttr{
		Size:     unix.SizeofSchedAttr,
		Policy:   unix.SCHED_FIFO,
		Priority: uint32(priority),
	}
	if err := unix.SchedSetAttr(0, attr, 0); err != nil {
		return fmt.Errorf("sched_setattr fifo %d: %w", priority, err)
	}
	return nil
}

// PinBackground locks the calling goroutine to its OS thread and lowers
// the thread's nice value, keeping bookkeeping work out of the way of the
// default-priority threads.
func PinBackground(nice int) error {
	runtime.LockOSThread()
	if err := unix.Setpriority(unix.PRIO_PROCESS, 0, nice); err != nil {
		return fmt.Errorf("setpriority nice %d: %w", nice, err)
	}
	return nil
}
