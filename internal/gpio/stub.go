//go:build !linux

package gpio

import "errors"

// RealWatcher is not available on non-Linux platforms.
type RealWatcher struct{}

// NewRealWatcher returns an error on non-Linux platforms.
func NewRealWatcher(chipName string, pins Pins, h Handlers) (*RealWatcher, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Levels is not implemented on non-Linux platforms.
func (w *RealWatcher) Levels() (bool, bool, bool, error) {
	return false, false, false, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (w *RealWatcher) Close() error {
	return nil
}
