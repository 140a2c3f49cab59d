package gpio

import "errors"

// FakeWatcher is a test double that delivers scripted edges synchronously.
type FakeWatcher struct {
	h Handlers

	left, right, slide bool

	// Interrupts counts accelerometer interrupts delivered.
	Interrupts int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Levels()
	ReadError error
}

// NewFakeWatcher creates a FakeWatcher bound to h. Like the real watcher, it
// delivers the initial (all low) levels before returning.
func NewFakeWatcher(h Handlers) *FakeWatcher {
	f := &FakeWatcher{h: h}
	f.notify(h.Left, false)
	f.notify(h.Right, false)
	f.notify(h.Switch, false)
	return f
}

// SetLeft drives the left button line to level.
func (f *FakeWatcher) SetLeft(level bool) {
	f.left = level
	f.notify(f.h.Left, level)
}

// SetRight drives the right button line to level.
func (f *FakeWatcher) SetRight(level bool) {
	f.right = level
	f.notify(f.h.Right, level)
}

// SetSwitch drives the slide switch line to level.
func (f *FakeWatcher) SetSwitch(level bool) {
	f.slide = level
	f.notify(f.h.Switch, level)
}

// Interrupt asserts the accelerometer interrupt line.
func (f *FakeWatcher) Interrupt() {
	f.Interrupts++
	if f.h.Interrupt != nil && !f.Closed {
		f.h.Interrupt()
	}
}

func (f *FakeWatcher) notify(set func(bool), level bool) {
	if set != nil && !f.Closed {
		set(level)
	}
}

// Levels returns the levels last driven.
func (f *FakeWatcher) Levels() (bool, bool, bool, error) {
	if f.ReadError != nil {
		return false, false, false, f.ReadError
	}
	if f.Closed {
		return false, false, false, errors.New("watcher closed")
	}
	return f.left, f.right, f.slide, nil
}

// Close marks the watcher as closed. Later edges are not delivered.
func (f *FakeWatcher) Close() error {
	f.Closed = true
	return nil
}
