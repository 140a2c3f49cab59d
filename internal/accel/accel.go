// Package accel drives the LIS3DH accelerometer over I2C.
// The real implementation uses periph.io host drivers.
// The fake implementation allows testing without hardware.
package accel

// DefaultAddr is the LIS3DH address on the Circuit Playground (SDO high).
const DefaultAddr = 0x19

// LIS3DH registers.
const (
	regWhoAmI      = 0x0F
	regCtrl1       = 0x20
	regCtrl2       = 0x21
	regCtrl3       = 0x22
	regCtrl4       = 0x23
	regCtrl5       = 0x24
	regStatus      = 0x27
	regOutXL       = 0x28
	regInt1Cfg     = 0x30
	regInt1Src     = 0x31
	regInt1Ths     = 0x32
	regInt1Dur     = 0x33
	regClickCfg    = 0x38
	regClickSrc    = 0x39
	regClickThs    = 0x3A
	regTimeLimit   = 0x3B
	regTimeLatency = 0x3C
	regTimeWindow  = 0x3D

	// autoIncrement makes multi-byte reads advance the register address.
	autoIncrement = 0x80
)

// whoAmI is the LIS3DH device ID.
const whoAmI = 0x33

const (
	standardGravity = 9.80665
	// lsbPerG is the scale of the left-justified output at +/-2 g.
	lsbPerG = 16380
)

// setting is one register write of the configuration sequence.
type setting struct {
	reg, value byte
}

// configuration enables 400Hz sampling on all axes, routes double-tap and 6D
// orientation detection to INT1, and leaves interrupts unlatched.
var configuration = []setting{
	{regCtrl1, 0x77}, // X, Y, Z enabled, ODR 400Hz normal mode
	{regCtrl2, 0xC4}, // HPF auto-reset on interrupt, enabled for CLICK
	{regCtrl3, 0xC0}, // CLICK and IA1 routed to INT1
	{regCtrl4, 0x00}, // +/-2 g
	{regCtrl5, 0x00}, // no interrupt latching
	{regInt1Dur, 0x7F},
	{regInt1Cfg, 0xFF}, // 6D orientation detection on all axes
	{regInt1Ths, 0x32},
	{regClickCfg, 0x2A}, // double tap on any axis
	{regClickThs, 0x48},
	{regTimeLimit, 0x06},
	{regTimeLatency, 0x50},
	{regTimeWindow, 0x70},
}
