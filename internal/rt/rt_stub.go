//go:build !linux

package rt

import "errors"

// ErrUnsupported is returned on platforms without priority scheduling
// support; the activity set still runs, just without OS-level tiers.
var ErrUnsupported = errors.New("rt: priority scheduling not supported on this platform")

// PinFIFO is not available on non-Linux platforms.
func PinFIFO(int) error {
	return ErrUnsupported
}

// PinBackground is not available on non-Linux platforms.
func PinBackground(int) error {
	return ErrUnsupported
}
