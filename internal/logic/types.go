// Package logic contains the pure gesture decoding engine.
// This package has NO external dependencies (no GPIO, I2C, MQTT, OS, or time.Sleep).
// Time is always injected: Ticks for the decision core, time.Time for bookkeeping.
package logic

import "time"

// Ticks is a monotonic millisecond counter supplied by the caller on every poll.
// It wraps at 2^32; elapsed time is always computed as now - since in uint32
// arithmetic so comparisons stay correct across the overflow.
type Ticks uint32

// Gesture is the single outcome of one poll cycle.
type Gesture int

const (
	None Gesture = iota
	OrientationChanged
	Shaken
	DoubleTapped
	SlideSwitchedOn
	SlideSwitchedOff
	LeftPressed
	RightPressed
	LeftClicked
	RightClicked
	LeftReleased
	RightReleased
	BothClicked
	BothPressed
	BothReleased
	LeftHeldRightClicked
	RightHeldLeftClicked
	LeftDoubleClicked
	RightDoubleClicked

	numGestures
)

var gestureNames = [numGestures]string{
	None:                 "none",
	OrientationChanged:   "orientation changed",
	Shaken:               "shaken",
	DoubleTapped:         "double tapped",
	SlideSwitchedOn:      "slide switch turned on",
	SlideSwitchedOff:     "slide switch turned off",
	LeftPressed:          "left button pressed",
	RightPressed:         "right button pressed",
	LeftClicked:          "left button clicked",
	RightClicked:         "right button clicked",
	LeftReleased:         "left button released",
	RightReleased:        "right button released",
	BothClicked:          "both buttons clicked",
	BothPressed:          "both buttons pressed",
	BothReleased:         "both buttons released",
	LeftHeldRightClicked: "right button clicked while left button pressed",
	RightHeldLeftClicked: "left button clicked while right button pressed",
	LeftDoubleClicked:    "left button double clicked",
	RightDoubleClicked:   "right button double clicked",
}

var gestureCodes = [numGestures]string{
	None:                 "NONE",
	OrientationChanged:   "ORIENTATION_CHANGED",
	Shaken:               "SHAKEN",
	DoubleTapped:         "DOUBLE_TAPPED",
	SlideSwitchedOn:      "SLIDE_SWITCHED_ON",
	SlideSwitchedOff:     "SLIDE_SWITCHED_OFF",
	LeftPressed:          "LEFT_PRESSED",
	RightPressed:         "RIGHT_PRESSED",
	LeftClicked:          "LEFT_CLICKED",
	RightClicked:         "RIGHT_CLICKED",
	LeftReleased:         "LEFT_RELEASED",
	RightReleased:        "RIGHT_RELEASED",
	BothClicked:          "BOTH_CLICKED",
	BothPressed:          "BOTH_PRESSED",
	BothReleased:         "BOTH_RELEASED",
	LeftHeldRightClicked: "LEFT_HELD_RIGHT_CLICKED",
	RightHeldLeftClicked: "RIGHT_HELD_LEFT_CLICKED",
	LeftDoubleClicked:    "LEFT_DOUBLE_CLICKED",
	RightDoubleClicked:   "RIGHT_DOUBLE_CLICKED",
}

// String returns a human-readable description of the gesture.
func (g Gesture) String() string {
	if g < 0 || g >= numGestures {
		return "unknown"
	}
	return gestureNames[g]
}

// Code returns the stable upper-case identifier used in MQTT payloads.
func (g Gesture) Code() string {
	if g < 0 || g >= numGestures {
		return "UNKNOWN"
	}
	return gestureCodes[g]
}

// Gestures returns every gesture except None, in declaration order.
func Gestures() []Gesture {
	out := make([]Gesture, 0, numGestures-1)
	for g := OrientationChanged; g < numGestures; g++ {
		out = append(out, g)
	}
	return out
}

// Orientation is the dominant gravity-aligned axis reported by the
// accelerometer's 6D detection interrupt.
type Orientation int

const (
	OrientationUnknown Orientation = iota
	ZUp
	ZDown
	YUp
	YDown
	XUp
	XDown
)

// String returns a human-readable description of the orientation.
func (o Orientation) String() string {
	switch o {
	case ZUp:
		return "Z UP"
	case ZDown:
		return "Z DOWN"
	case YUp:
		return "Y UP"
	case YDown:
		return "Y DOWN"
	case XUp:
		return "X UP"
	case XDown:
		return "X DOWN"
	}
	return "UNKNOWN"
}

// Code returns the stable upper-case identifier used in MQTT payloads.
func (o Orientation) Code() string {
	switch o {
	case ZUp:
		return "Z_UP"
	case ZDown:
		return "Z_DOWN"
	case YUp:
		return "Y_UP"
	case YDown:
		return "Y_DOWN"
	case XUp:
		return "X_UP"
	case XDown:
		return "X_DOWN"
	}
	return "UNKNOWN"
}

// Event is a recognized gesture to be published.
type Event struct {
	Timestamp   time.Time
	Ticks       Ticks
	Gesture     Gesture
	Orientation Orientation
}

// GestureCounts tracks how many times each gesture was recognized since startup.
// The None slot is never incremented.
type GestureCounts [numGestures]int

// Of returns the count for a single gesture.
func (c GestureCounts) Of(g Gesture) int {
	if g < 0 || g >= numGestures {
		return 0
	}
	return c[g]
}

// Total returns the sum of all gesture counts.
func (c GestureCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    GestureCounts
}
