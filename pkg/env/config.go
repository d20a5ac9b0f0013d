// Package env assembles a bridge from command line flags, environment
// variables and an optional YAML file.
package env

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/atx.go/pkg/atx"
	"github.com/robotalks/atx.go/pkg/gpio"
)

// GPIO backends.
const (
	GPIOSim  = "sim"
	GPIORpio = "rpio"
)

// Config provides the options to setup a bridge.
type Config struct {
	// ID identifies the bridge in MQTT topics.
	ID          string
	Description string

	// TransportURL selects where commands come from.
	// e.g. serial:///dev/ttyGS0, mqtt://host:port/topic-prefix/, ws://host/path, stdio:
	TransportURL string

	// GPIO is the backend driving the lines: sim or rpio.
	GPIO      string
	ActiveLow bool

	// MQTTBrokerURL enables telemetry when not empty.
	// e.g. mqtt://host:port/topic-prefix/
	MQTTBrokerURL string

	// ConfigFile is an optional YAML file overriding Layout and Durations.
	ConfigFile string

	Layout    atx.Layout
	Durations atx.Durations
}

var defaultConfig = Config{
	Description:  "ATX control bridge",
	TransportURL: "stdio:",
	GPIO:         GPIOSim,
	Layout:       atx.DefaultLayout,
	Durations:    atx.DefaultDurations,
}

func init() {
	if val := os.Getenv("ATX_TRANSPORT"); val != "" {
		defaultConfig.TransportURL = val
	}
	if val := os.Getenv("ATX_GPIO"); val != "" {
		defaultConfig.GPIO = val
	}
	if val := os.Getenv("ATX_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("ATX_ID"); val != "" {
		defaultConfig.ID = val
	} else {
		defaultConfig.ID = MachineID()
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Bridge ID")
	flag.StringVar(&defaultConfig.Description, "desc", defaultConfig.Description, "Bridge description")
	flag.StringVar(&defaultConfig.TransportURL, "transport", defaultConfig.TransportURL, "Command transport URL")
	flag.StringVar(&defaultConfig.GPIO, "gpio", defaultConfig.GPIO, "GPIO backend: sim or rpio")
	flag.BoolVar(&defaultConfig.ActiveLow, "active-low", defaultConfig.ActiveLow, "Drive asserted lines low")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL for telemetry")
	flag.StringVar(&defaultConfig.ConfigFile, "config", defaultConfig.ConfigFile, "YAML file with pin layout and durations")
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

type fileLines struct {
	Reset *int `yaml:"reset"`
	Power *int `yaml:"power"`
}

type fileDurations struct {
	ResetMs      *int64 `yaml:"reset_ms"`
	PowerShortMs *int64 `yaml:"power_short_ms"`
	PowerLongMs  *int64 `yaml:"power_long_ms"`
}

type fileConfig struct {
	ID          string        `yaml:"id"`
	Description string        `yaml:"description"`
	Targets     []fileLines   `yaml:"targets"`
	Indicator   *int          `yaml:"indicator"`
	Durations   fileDurations `yaml:"durations"`
}

func setPin(dst *gpio.Pin, src *int) {
	if src != nil {
		*dst = gpio.Pin(*src)
	}
}

func setMs(dst *time.Duration, src *int64) {
	if src != nil {
		*dst = time.Duration(*src) * time.Millisecond
	}
}

// Apply merges a YAML document into the config. Absent keys keep
// their current values.
func (c *Config) Apply(data []byte) error {
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return err
	}
	if len(f.Targets) > atx.NumTargets {
		return fmt.Errorf("at most %d targets, got %d", atx.NumTargets, len(f.Targets))
	}
	if f.ID != "" {
		c.ID = f.ID
	}
	if f.Description != "" {
		c.Description = f.Description
	}
	for i, lines := range f.Targets {
		setPin(&c.Layout.Targets[i].Reset, lines.Reset)
		setPin(&c.Layout.Targets[i].Power, lines.Power)
	}
	setPin(&c.Layout.Indicator, f.Indicator)
	setMs(&c.Durations.Reset, f.Durations.ResetMs)
	setMs(&c.Durations.PowerShort, f.Durations.PowerShortMs)
	setMs(&c.Durations.PowerLong, f.Durations.PowerLongMs)
	return nil
}

// LoadFile applies ConfigFile if specified.
func (c *Config) LoadFile() error {
	if c.ConfigFile == "" {
		return nil
	}
	data, err := os.ReadFile(c.ConfigFile)
	if err != nil {
		return err
	}
	if err := c.Apply(data); err != nil {
		return fmt.Errorf("%s: %w", c.ConfigFile, err)
	}
	return nil
}

// Validate checks the config without changing it.
func (c *Config) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("bridge id must be specified")
	}
	if c.TransportURL == "" {
		return fmt.Errorf("transport URL must be specified")
	}
	switch c.GPIO {
	case GPIOSim, GPIORpio:
	default:
		return fmt.Errorf("unknown GPIO backend %q", c.GPIO)
	}
	used := make(map[gpio.Pin]string)
	claim := func(pin gpio.Pin, use string) error {
		if !pin.IsValid() {
			return fmt.Errorf("%s: pin %d out of range 0..%d", use, int(pin), int(gpio.MaxPin))
		}
		if prev, ok := used[pin]; ok {
			return fmt.Errorf("%v assigned to both %s and %s", pin, prev, use)
		}
		used[pin] = use
		return nil
	}
	for i, lines := range c.Layout.Targets {
		if err := claim(lines.Reset, fmt.Sprintf("target %d reset", i+1)); err != nil {
			return err
		}
		if err := claim(lines.Power, fmt.Sprintf("target %d power", i+1)); err != nil {
			return err
		}
	}
	if err := claim(c.Layout.Indicator, "indicator"); err != nil {
		return err
	}
	for _, kind := range atx.Kinds {
		if d := c.Durations.Of(kind); d <= 0 {
			return fmt.Errorf("%v duration must be positive, got %v", kind, d)
		}
	}
	return nil
}
