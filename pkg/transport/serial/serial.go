// Package serial provides a Transport over a serial port, e.g. the USB
// CDC ACM device a host sees for the bridge.
package serial

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/goburrow/serial"
)

// Defaults for the bridge serial line: 115200 8N1.
const (
	DefaultBaudRate    = 115200
	DefaultReadTimeout = 10 * time.Millisecond
)

// DefaultConfig creates the serial config for address.
func DefaultConfig(address string) *serial.Config {
	return &serial.Config{
		Address:  address,
		BaudRate: DefaultBaudRate,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  DefaultReadTimeout,
	}
}

// ConfigFromURL parses serial:///dev/ttyACM0?baud=115200&timeout=10ms.
func ConfigFromURL(u *url.URL) (*serial.Config, error) {
	address := u.Path
	if address == "" {
		address = u.Opaque
	}
	if address == "" {
		return nil, fmt.Errorf("serial device path missing in %q", u.String())
	}
	conf := DefaultConfig(address)
	q := u.Query()
	if val := q.Get("baud"); val != "" {
		baud, err := strconv.Atoi(val)
		if err != nil || baud <= 0 {
			return nil, fmt.Errorf("invalid baud rate %q", val)
		}
		conf.BaudRate = baud
	}
	if val := q.Get("parity"); val != "" {
		switch val {
		case "N", "E", "O":
			conf.Parity = val
		default:
			return nil, fmt.Errorf("invalid parity %q", val)
		}
	}
	if val := q.Get("timeout"); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %v", val, err)
		}
		conf.Timeout = timeout
	}
	return conf, nil
}

// Transport implements transport.Transport on a serial port.
type Transport struct {
	serial.Port
}

// Open opens the serial port.
func Open(conf *serial.Config) (*Transport, error) {
	port, err := serial.Open(conf)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", conf.Address, err)
	}
	return &Transport{Port: port}, nil
}

// Poll implements Transport. Reads return after the configured timeout
// when no data arrives.
func (t *Transport) Poll() bool {
	return true
}

// Read implements io.Reader. A read timeout yields 0 bytes.
func (t *Transport) Read(p []byte) (int, error) {
	n, err := t.Port.Read(p)
	if err == serial.ErrTimeout {
		err = nil
	}
	return n, err
}
