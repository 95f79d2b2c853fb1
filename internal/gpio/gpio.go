// Package gpio provides the guardian's output lines and button input with
// hardware abstraction. The real implementation uses the Linux GPIO
// character device; the fake implementation allows testing without
// hardware.
package gpio

import "time"

// Line drives a single output line. Set must be fast and non-blocking; the
// blink channels call it on their wake path.
type Line interface {
	Set(on bool) error
}

// Board owns the guardian's GPIO lines. Button edges are delivered to the
// edge handler supplied at construction; the handler runs in the event
// callback context and must only hand the timestamp off, never execute
// logic.
type Board interface {
	// Line returns the named output line (LineRed, LineGreen, LineBlue,
	// LineDistress).
	Line(name string) Line

	// Close releases GPIO resources.
	Close() error
}

// EdgeHandler receives the observation time of each raw button edge.
type EdgeHandler func(t time.Time)

// Output line names.
const (
	LineRed      = "red"
	LineGreen    = "green"
	LineBlue     = "blue"
	LineDistress = "distress"
)

// Pins holds BCM pin numbers for the board.
type Pins struct {
	Red      int
	Green    int
	Blue     int
	Distress int
	Button   int
}

// DefaultPins returns the wiring used on the reference board.
func DefaultPins() Pins {
	return Pins{
		Red:      17,
		Green:    27,
		Blue:     22,
		Distress: 24,
		Button:   4,
	}
}
