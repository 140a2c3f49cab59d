// Package gpio delivers edge notifications from the buttons, slide switch and
// accelerometer interrupt line.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Handlers receive notifications from the watcher's event goroutine.
// Each handler must only write its own cell and return promptly.
type Handlers struct {
	Left      func(level bool)
	Right     func(level bool)
	Switch    func(level bool)
	Interrupt func()
}

// Watcher delivers edge notifications until closed.
type Watcher interface {
	// Levels reads the current raw levels of the three digital inputs.
	Levels() (left, right, slide bool, err error)

	// Close stops notifications and releases GPIO resources.
	Close() error
}

// Pins holds line offsets (BCM numbering).
type Pins struct {
	Left      int
	Right     int
	Switch    int
	Interrupt int
}

// DefaultPins matches the reference wiring harness.
var DefaultPins = Pins{
	Left:      17,
	Right:     27,
	Switch:    22,
	Interrupt: 23,
}
