package accel

import "errors"

// FakeSensor is a test double that returns scripted register values.
type FakeSensor struct {
	// StatusReg, ClickSrc and MotionSrc are returned as-is by the
	// corresponding reads.
	StatusReg byte
	ClickSrc  byte
	MotionSrc byte

	// Samples contains scripted (x, y, z) readings in m/s^2.
	// Each call to Acceleration() consumes the next sample.
	Samples []Sample

	// index tracks current position in Samples
	index int

	// ReadError, if set, will be returned by every read.
	ReadError error
}

// Sample is a single 3-axis reading in m/s^2.
type Sample struct {
	X, Y, Z float64
}

// NewFakeSensor creates a FakeSensor with the given samples.
func NewFakeSensor(samples []Sample) *FakeSensor {
	return &FakeSensor{Samples: samples}
}

// Status returns the scripted status register.
func (f *FakeSensor) Status() (byte, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	return f.StatusReg, nil
}

// ClickSource returns the scripted click source.
func (f *FakeSensor) ClickSource() (byte, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	return f.ClickSrc, nil
}

// MotionSource returns the scripted motion source.
func (f *FakeSensor) MotionSource() (byte, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	return f.MotionSrc, nil
}

// Acceleration returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeSensor) Acceleration() (float64, float64, float64, error) {
	if f.ReadError != nil {
		return 0, 0, 0, f.ReadError
	}

	if len(f.Samples) == 0 {
		return 0, 0, 0, errors.New("no samples configured")
	}

	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return s.X, s.Y, s.Z, nil
}

// Reset resets the sensor to the beginning of samples.
func (f *FakeSensor) Reset() {
	f.index = 0
}
