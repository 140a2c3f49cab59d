package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML configuration file. Every field is a
// pointer so that absent keys leave the flag defaults alone.
type fileConfig struct {
	Poll      *time.Duration `yaml:"poll"`
	Broker    *string        `yaml:"broker"`
	Heartbeat *time.Duration `yaml:"heartbeat"`
	Chip      *string        `yaml:"chip"`
	Pins      struct {
		Left      *int `yaml:"left"`
		Right     *int `yaml:"right"`
		Switch    *int `yaml:"switch"`
		Interrupt *int `yaml:"interrupt"`
	} `yaml:"pins"`
	I2C struct {
		Bus  *string `yaml:"bus"`
		Addr *uint16 `yaml:"addr"`
	} `yaml:"i2c"`
	HTTP     *string `yaml:"http"`
	WSBroker *string `yaml:"ws_broker"`
}

func loadConfigFile(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &fc, nil
}

// apply copies file values into cfg, skipping any setting whose flag was
// given on the command line.
func (fc *fileConfig) apply(cfg *config, explicit map[string]bool) {
	setDuration := func(name string, dst *time.Duration, v *time.Duration) {
		if v != nil && !explicit[name] {
			*dst = *v
		}
	}
	setString := func(name string, dst *string, v *string) {
		if v != nil && !explicit[name] {
			*dst = *v
		}
	}
	setInt := func(name string, dst *int, v *int) {
		if v != nil && !explicit[name] {
			*dst = *v
		}
	}

	setDuration("poll", &cfg.poll, fc.Poll)
	setString("broker", &cfg.broker, fc.Broker)
	setDuration("heartbeat", &cfg.heartbeat, fc.Heartbeat)
	setString("chip", &cfg.chip, fc.Chip)
	setInt("pin-left", &cfg.pins.Left, fc.Pins.Left)
	setInt("pin-right", &cfg.pins.Right, fc.Pins.Right)
	setInt("pin-switch", &cfg.pins.Switch, fc.Pins.Switch)
	setInt("pin-int", &cfg.pins.Interrupt, fc.Pins.Interrupt)
	setString("i2c-bus", &cfg.i2cBus, fc.I2C.Bus)
	if fc.I2C.Addr != nil && !explicit["i2c-addr"] {
		cfg.i2cAddr = *fc.I2C.Addr
	}
	setString("http", &cfg.httpAddr, fc.HTTP)
	setString("ws-broker", &cfg.wsBroker, fc.WSBroker)
}

// explicitFlags returns the names of the flags set on the command line.
func explicitFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func (c config) validate() error {
	if c.poll <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.poll)
	}
	if c.i2cAddr > 0x7F {
		return fmt.Errorf("i2c address %#x out of range", c.i2cAddr)
	}
	pins := map[int]string{}
	for _, p := range []struct {
		name string
		pin  int
	}{
		{"left", c.pins.Left},
		{"right", c.pins.Right},
		{"switch", c.pins.Switch},
		{"interrupt", c.pins.Interrupt},
	} {
		if other, dup := pins[p.pin]; dup {
			return fmt.Errorf("pin %d used for both %s and %s", p.pin, other, p.name)
		}
		pins[p.pin] = p.name
	}
	return nil
}
