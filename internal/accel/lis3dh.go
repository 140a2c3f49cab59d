package accel

import (
	"encoding/binary"
	"fmt"
	"io"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// conn is the register transport. *i2c.Dev satisfies it.
type conn interface {
	Tx(w, r []byte) error
}

// LIS3DH reads status, source and sample registers from the accelerometer.
type LIS3DH struct {
	dev conn
	bus io.Closer
}

// Open initializes the host drivers and opens the LIS3DH on the named I2C bus
// ("" selects the first available bus).
func Open(busName string, addr uint16) (*LIS3DH, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host drivers: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}

	return newLIS3DH(&i2c.Dev{Bus: bus, Addr: addr}, bus), nil
}

func newLIS3DH(dev conn, bus io.Closer) *LIS3DH {
	return &LIS3DH{dev: dev, bus: bus}
}

// Configure verifies the device ID and writes the one-time register setup.
func (d *LIS3DH) Configure() error {
	id, err := d.readRegister(regWhoAmI)
	if err != nil {
		return err
	}
	if id != whoAmI {
		return fmt.Errorf("unexpected device id %#02x (want %#02x)", id, whoAmI)
	}

	for _, s := range configuration {
		if err := d.writeRegister(s.reg, s.value); err != nil {
			return err
		}
	}
	return nil
}

// Status returns STATUS_REG.
func (d *LIS3DH) Status() (byte, error) {
	return d.readRegister(regStatus)
}

// ClickSource returns CLICK_SRC. Reading it clears the click interrupt.
func (d *LIS3DH) ClickSource() (byte, error) {
	return d.readRegister(regClickSrc)
}

// MotionSource returns INT1_SRC. Reading it clears the INT1 interrupt.
func (d *LIS3DH) MotionSource() (byte, error) {
	return d.readRegister(regInt1Src)
}

// Acceleration reads OUT_X_L..OUT_Z_H and converts to m/s^2.
func (d *LIS3DH) Acceleration() (x, y, z float64, err error) {
	var buf [6]byte
	if err := d.dev.Tx([]byte{regOutXL | autoIncrement}, buf[:]); err != nil {
		return 0, 0, 0, fmt.Errorf("read acceleration: %w", err)
	}
	x = toMS2(buf[0:2])
	y = toMS2(buf[2:4])
	z = toMS2(buf[4:6])
	return x, y, z, nil
}

// Close releases the I2C bus.
func (d *LIS3DH) Close() error {
	if d.bus == nil {
		return nil
	}
	return d.bus.Close()
}

func (d *LIS3DH) readRegister(reg byte) (byte, error) {
	var r [1]byte
	if err := d.dev.Tx([]byte{reg}, r[:]); err != nil {
		return 0, fmt.Errorf("read register %#02x: %w", reg, err)
	}
	return r[0], nil
}

func (d *LIS3DH) writeRegister(reg, value byte) error {
	if err := d.dev.Tx([]byte{reg, value}, nil); err != nil {
		return fmt.Errorf("write register %#02x: %w", reg, err)
	}
	return nil
}

func toMS2(b []byte) float64 {
	raw := int16(binary.LittleEndian.Uint16(b))
	return float64(raw) / lsbPerG * standardGravity
}
