package sh

import (
	"flag"
	"os"
	"time"

	"github.com/robotalks/atx.go/pkg/atx"
)

// Config provides the options to reach a bridge from the host.
type Config struct {
	// Device is the serial device of the bridge.
	Device string
	// LongPress overrides the long press duration the bridge is set up with.
	LongPress time.Duration
}

var defaultConfig = Config{
	Device:    "/dev/ttyACM0",
	LongPress: atx.DefaultDurations.PowerLong,
}

func init() {
	if val := os.Getenv("ATX_DEVICE"); val != "" {
		defaultConfig.Device = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Device, "dev", defaultConfig.Device, "Serial device of the bridge.")
	flag.DurationVar(&defaultConfig.LongPress, "long-press", defaultConfig.LongPress, "Long press duration of the bridge.")
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Durations gets the hold durations expected from the bridge.
func (c *Config) Durations() atx.Durations {
	d := atx.DefaultDurations
	if c.LongPress > 0 {
		d.PowerLong = c.LongPress
	}
	return d
}
