//go:build linux

package gpio

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealBoard drives actual hardware through the Linux GPIO character device.
type RealBoard struct {
	chip   *gpiocdev.Chip
	lines  map[string]*gpiocdev.Line
	button *gpiocdev.Line
}

// NewRealBoard requests the output lines and the button line. Button edges
// invoke onEdge with the observation time; debouncing happens in the
// consumer, not here.
func NewRealBoard(pins Pins, onEdge EdgeHandler) (*RealBoard, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	b := &RealBoard{
		chip:  chip,
		lines: make(map[string]*gpiocdev.Line),
	}

	outputs := []struct {
		name string
		pin  int
	}{
		{LineRed, pins.Red},
		{LineGreen, pins.Green},
		{LineBlue, pins.Blue},
		{LineDistress, pins.Distress},
	}
	for _, o := range outputs {
		line, err := chip.RequestLine(o.pin, gpiocdev.AsOutput(0))
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", o.name, o.pin, err)
		}
		b.lines[o.name] = line
	}

	// Rising edges only; the event callback stamps the time and hands it
	// off. The kernel event timestamp is not used because the rest of the
	// daemon works in time.Time and callback latency is well inside the
	// debounce granularity.
	button, err := chip.RequestLine(pins.Button,
		gpiocdev.AsInput,
		gpiocdev.WithPullDown,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) {
			onEdge(time.Now())
		}))
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("request button pin %d: %w", pins.Button, err)
	}
	b.button = button

	return b, nil
}

// Line returns the named output line. Unknown names return a line whose Set
// always fails, so a miswired caller logs instead of panicking.
func (b *RealBoard) Line(name string) Line {
	if l, ok := b.lines[name]; ok {
		return realLine{l}
	}
	return badLine{name}
}

// Close drives all outputs low and releases GPIO resources.
func (b *RealBoard) Close() error {
	var errs []error
	for name, line := range b.lines {
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("lower %s: %w", name, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	if b.button != nil {
		if err := b.button.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button: %w", err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

type realLine struct {
	line *gpiocdev.Line
}

func (l realLine) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	return l.line.SetValue(v)
}

type badLine struct {
	name string
}

func (l badLine) Set(bool) error {
	return fmt.Errorf("gpio: unknown line %q", l.name)
}
