package logic

import "math"

// AccelDecay is the EWMA weight kept from the previous filtered value.
const AccelDecay = 0.6

// LIS3DH status and source register bits.
const (
	statusZYXDA    = 0x08 // new data available on all three axes
	clickDoubleTap = 0x60 // DCLICK and IA in CLICK_SRC
	motionAxes     = 0x3F // XL..ZH in INT1_SRC
)

// Sensor is the accelerometer bus driver consulted by the arbiter.
// Read failures are reported as errors and treated as "no new data".
type Sensor interface {
	// Status returns the status register.
	Status() (byte, error)
	// ClickSource returns the click source bitfield.
	ClickSource() (byte, error)
	// MotionSource returns the INT1 motion source bitfield.
	MotionSource() (byte, error)
	// Acceleration returns the latest sample in m/s^2.
	Acceleration() (x, y, z float64, err error)
}

// AccelFilter smooths 3-axis samples with a one-pole exponential filter.
type AccelFilter struct {
	x, y, z float64
}

// Add folds a new sample into the filtered vector.
func (f *AccelFilter) Add(x, y, z float64) {
	f.x = f.x*AccelDecay + x*(1-AccelDecay)
	f.y = f.y*AccelDecay + y*(1-AccelDecay)
	f.z = f.z*AccelDecay + z*(1-AccelDecay)
}

// Magnitude returns the Euclidean norm of the filtered vector.
func (f *AccelFilter) Magnitude() float64 {
	return math.Sqrt(f.x*f.x + f.y*f.y + f.z*f.z)
}

// AccelKind classifies the accelerometer flags seen in one poll.
type AccelKind int

const (
	AccelNone AccelKind = iota
	AccelNewSample
	AccelDoubleTap
	AccelOrientation
)

// AccelSource is the raw flag state read from the driver in one poll.
// ClickSrc and MotionSrc are only meaningful when Interrupted is set.
type AccelSource struct {
	Interrupted bool
	Status      byte
	ClickSrc    byte
	MotionSrc   byte
}

// AccelEvent is the decoded classification of an AccelSource.
// Orientation carries the motion-source axis of an interrupt even when Kind is
// AccelDoubleTap, so a suppressed tap can fall through to it.
type AccelEvent struct {
	Kind        AccelKind
	Orientation Orientation
}

// DecodeAccel classifies raw accelerometer flags. A latched interrupt takes
// priority over the new-sample status bit.
func DecodeAccel(src AccelSource) AccelEvent {
	if src.Interrupted {
		ev := AccelEvent{Orientation: OrientationFor(src.MotionSrc)}
		switch {
		case src.ClickSrc&clickDoubleTap != 0:
			ev.Kind = AccelDoubleTap
		case ev.Orientation != OrientationUnknown:
			ev.Kind = AccelOrientation
		}
		return ev
	}

	if src.Status&statusZYXDA != 0 {
		return AccelEvent{Kind: AccelNewSample}
	}
	return AccelEvent{}
}

// OrientationFor maps INT1_SRC axis bits to an orientation. The first set bit
// in the order ZH, ZL, YH, YL, XH, XL wins.
func OrientationFor(motionSrc byte) Orientation {
	if motionSrc&motionAxes == 0 {
		return OrientationUnknown
	}
	switch {
	case motionSrc&0x20 != 0:
		return ZUp
	case motionSrc&0x10 != 0:
		return ZDown
	case motionSrc&0x08 != 0:
		return YUp
	case motionSrc&0x04 != 0:
		return YDown
	case motionSrc&0x02 != 0:
		return XUp
	case motionSrc&0x01 != 0:
		return XDown
	}
	return OrientationUnknown
}
