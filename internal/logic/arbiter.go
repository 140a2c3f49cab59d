package logic

// Arbitration thresholds.
const (
	// TapIgnoreThreshold is the filtered acceleration (m/s^2) above which
	// taps are ignored.
	TapIgnoreThreshold = 16.0
	// TapIgnoreMs is how long taps are ignored after button, switch or
	// strong motion activity.
	TapIgnoreMs Ticks = 250
	// ShakeThreshold is the filtered acceleration (m/s^2) that must be
	// exceeded to recognize a shake.
	ShakeThreshold = 22.0
	// ShakeResetMs is the minimum time between two Shaken gestures.
	ShakeResetMs Ticks = 500
)

// Polarity configures the raw level each physical input reads when active.
type Polarity struct {
	SwitchOn      bool
	ButtonPressed bool
}

// DefaultPolarity matches the Circuit Playground wiring: buttons and the
// slide switch read high when active.
var DefaultPolarity = Polarity{SwitchOn: true, ButtonPressed: true}

// Arbiter merges switch, button and accelerometer activity into one Gesture
// per poll. It is not safe for concurrent use: Update and the queries belong
// to the poll loop. Only the Left, Right and Slide latches and AccelInterrupt
// may be touched from notification goroutines.
type Arbiter struct {
	sensor Sensor

	Left  EdgeLatch
	Right EdgeLatch
	Slide EdgeLatch

	accelInt interruptFlag

	slide *Switch
	left  *Button
	right *Button
	accel AccelFilter

	tapIgnoreStart Ticks
	lastShake      Ticks
	orientation    Orientation

	busErrors uint64
}

// NewArbiter creates an Arbiter reading accelerometer state from sensor.
func NewArbiter(sensor Sensor, p Polarity) *Arbiter {
	a := &Arbiter{
		sensor: sensor,
		slide:  NewSwitch(p.SwitchOn),
		left:   NewButton(p.ButtonPressed),
		right:  NewButton(p.ButtonPressed),
	}
	a.Left.Set(!p.ButtonPressed)
	a.Right.Set(!p.ButtonPressed)
	return a
}

// AccelInterrupt marks an accelerometer interrupt as pending. It is the
// handler bound to the sensor's interrupt line.
func (a *Arbiter) AccelInterrupt() {
	a.accelInt.raise()
}

// snapshot is the latched input state taken once at the start of Update.
type snapshot struct {
	interrupted bool
	left        bool
	right       bool
	slide       bool
}

func (a *Arbiter) snapshot() snapshot {
	return snapshot{
		interrupted: a.accelInt.take(),
		left:        a.Left.Level(),
		right:       a.Right.Level(),
		slide:       a.Slide.Level(),
	}
}

// Update evaluates one poll cycle and returns the recognized gesture, or None.
func (a *Arbiter) Update(now Ticks) Gesture {
	in := a.snapshot()

	if g, done := a.accelerometer(in, now); done {
		return g
	}

	if a.left.InputPending(in.left) || a.right.InputPending(in.right) {
		// Button activity, even mid-debounce, preempts taps
		a.tapIgnoreStart = now
	}

	switch a.slide.Update(in.slide, now) {
	case SwitchedOn:
		a.tapIgnoreStart = now
		return SlideSwitchedOn
	case SwitchedOff:
		a.tapIgnoreStart = now
		return SlideSwitchedOff
	}

	return a.buttons(in, now)
}

// accelerometer handles the interrupt and new-sample paths. done is true when
// the cycle must end here, including a None return while being shaken.
func (a *Arbiter) accelerometer(in snapshot, now Ticks) (Gesture, bool) {
	src := AccelSource{Interrupted: in.interrupted}
	if in.interrupted {
		src.ClickSrc = a.readByte(a.sensor.ClickSource)
		src.MotionSrc = a.readByte(a.sensor.MotionSource)
	} else {
		src.Status = a.readByte(a.sensor.Status)
	}

	ev := DecodeAccel(src)
	switch ev.Kind {
	case AccelDoubleTap:
		if now-a.tapIgnoreStart > TapIgnoreMs {
			return DoubleTapped, true
		}
		// A suppressed tap is dropped; the same interrupt may still carry
		// an orientation change.
		if a.changeOrientation(ev.Orientation) {
			return OrientationChanged, true
		}

	case AccelOrientation:
		if a.changeOrientation(ev.Orientation) {
			return OrientationChanged, true
		}

	case AccelNewSample:
		x, y, z, err := a.sensor.Acceleration()
		if err != nil {
			a.busErrors++
			return None, false
		}
		a.accel.Add(x, y, z)
		mag := a.accel.Magnitude()

		if mag > TapIgnoreThreshold {
			a.tapIgnoreStart = now
		}
		if mag > ShakeThreshold {
			if now-a.lastShake >= ShakeResetMs {
				a.lastShake = now
				return Shaken, true
			}
			// Ignore everything else while being shaken
			return None, true
		}
	}

	return None, false
}

func (a *Arbiter) changeOrientation(o Orientation) bool {
	if o == OrientationUnknown || o == a.orientation {
		return false
	}
	a.orientation = o
	return true
}

// readByte returns 0 on a failed read so the caller sees "no flags set".
func (a *Arbiter) readByte(read func() (byte, error)) byte {
	v, err := read()
	if err != nil {
		a.busErrors++
		return 0
	}
	return v
}

// buttons evaluates both buttons and applies the single and dual tables.
func (a *Arbiter) buttons(in snapshot, now Ticks) Gesture {
	left := a.left.Update(in.left, now)
	right := a.right.Update(in.right, now)

	if left == ButtonNone && right == ButtonNone {
		return None
	}

	// Button transitions are never taps
	a.tapIgnoreStart = now

	leftHeld := a.left.Pressed() && a.left.Duration(now) > ClickedCutoffMs
	rightHeld := a.right.Pressed() && a.right.Duration(now) > ClickedCutoffMs

	switch {
	case right == ButtonNone:
		return single(left, rightHeld, leftGestures)
	case left == ButtonNone:
		return single(right, leftHeld, rightGestures)
	}
	return dual(left, right)
}

// sideGestures names the gestures of one button, with the cross qualifiers
// used when the other button is held.
type sideGestures struct {
	clicked, heldClicked, pressed, released, doubleClicked Gesture
}

var (
	leftGestures = sideGestures{
		clicked:       LeftClicked,
		heldClicked:   RightHeldLeftClicked,
		pressed:       LeftPressed,
		released:      LeftReleased,
		doubleClicked: LeftDoubleClicked,
	}
	rightGestures = sideGestures{
		clicked:       RightClicked,
		heldClicked:   LeftHeldRightClicked,
		pressed:       RightPressed,
		released:      RightReleased,
		doubleClicked: RightDoubleClicked,
	}
)

// single maps the event of the only button that reported one.
func single(in ButtonInput, otherHeld bool, s sideGestures) Gesture {
	switch in {
	case Click:
		if otherHeld {
			return s.heldClicked
		}
		return s.clicked
	case LongPress:
		if otherHeld {
			return BothPressed
		}
		return s.pressed
	case Release:
		return s.released
	case DoubleClick:
		return s.doubleClicked
	}
	return None
}

// dual resolves simultaneous events: matching kinds combine, otherwise the
// right button wins and the left event is dropped.
func dual(left, right ButtonInput) Gesture {
	if left == right {
		switch right {
		case LongPress:
			return BothPressed
		case Release:
			return BothReleased
		case Click:
			return BothClicked
		}
	}
	return single(right, false, rightGestures)
}

// Orientation returns the last orientation reported by the accelerometer.
func (a *Arbiter) Orientation() Orientation {
	return a.orientation
}

// BothPressed reports whether both buttons are currently held down.
func (a *Arbiter) BothPressed() bool {
	return a.left.Pressed() && a.right.Pressed()
}

// LeftPressed reports whether the left button is held down.
func (a *Arbiter) LeftPressed() bool {
	return a.left.Pressed()
}

// RightPressed reports whether the right button is held down.
func (a *Arbiter) RightPressed() bool {
	return a.right.Pressed()
}

// SwitchOn reports whether the slide switch is in its on position.
func (a *Arbiter) SwitchOn() bool {
	return a.slide.On()
}

// Duration returns the shorter of the two button state durations.
func (a *Arbiter) Duration(now Ticks) Ticks {
	l, r := a.LeftDuration(now), a.RightDuration(now)
	if l < r {
		return l
	}
	return r
}

// LeftDuration returns how long the left button has been in its current state.
func (a *Arbiter) LeftDuration(now Ticks) Ticks {
	return a.left.Duration(now)
}

// RightDuration returns how long the right button has been in its current state.
func (a *Arbiter) RightDuration(now Ticks) Ticks {
	return a.right.Duration(now)
}

// BusErrors returns the number of failed sensor reads since construction.
func (a *Arbiter) BusErrors() uint64 {
	return a.busErrors
}
