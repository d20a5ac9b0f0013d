// Package rpio drives output lines through /dev/gpiomem on a Raspberry Pi.
package rpio

import (
	"sync"

	"github.com/stianeikeland/go-rpio/v4"

	"github.com/robotalks/atx.go/pkg/gpio"
)

// Backend implements gpio.Backend using go-rpio.
type Backend struct {
	// ActiveLow inverts the level for relay boards driven low.
	ActiveLow bool

	openOnce sync.Once
	opened   bool
	openErr  error
}

// New creates the backend. Memory is mapped on the first Output call.
func New(activeLow bool) *Backend {
	return &Backend{ActiveLow: activeLow}
}

type line struct {
	pin       rpio.Pin
	activeLow bool
}

// Output implements gpio.Backend.
func (b *Backend) Output(pin gpio.Pin) (gpio.Line, error) {
	b.openOnce.Do(func() {
		b.openErr = rpio.Open()
		b.opened = b.openErr == nil
	})
	if b.openErr != nil {
		return nil, b.openErr
	}
	l := &line{pin: rpio.Pin(pin), activeLow: b.ActiveLow}
	l.pin.Output()
	l.Set(false)
	return l, nil
}

// Close implements gpio.Backend.
func (b *Backend) Close() error {
	if !b.opened {
		return nil
	}
	return rpio.Close()
}

func (l *line) Set(active bool) error {
	if active != l.activeLow {
		l.pin.High()
	} else {
		l.pin.Low()
	}
	return nil
}
