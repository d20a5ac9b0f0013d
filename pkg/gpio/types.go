// Package gpio abstracts the digital output lines used for actuation.
package gpio

import (
	"errors"
	"fmt"
)

// Pin identifies an output line by its GPIO number.
type Pin int

// MaxPin is the highest GPIO number accepted.
const MaxPin Pin = 27

// IsValid checks the pin number is in range.
func (p Pin) IsValid() bool {
	return p >= 0 && p <= MaxPin
}

// String implements fmt.Stringer.
func (p Pin) String() string {
	return fmt.Sprintf("GPIO%d", int(p))
}

// Line is a single digital output.
type Line interface {
	// Set drives the line to its active (true) or inactive (false) level.
	Set(active bool) error
}

// Backend configures pins as outputs.
type Backend interface {
	// Output configures the pin as an output at inactive level.
	Output(Pin) (Line, error)
	// Close releases the hardware.
	Close() error
}

var (
	// ErrPinClaimed indicates the pin is already owned.
	ErrPinClaimed = errors.New("pin already claimed")
	// ErrUnknownPin indicates the pin is not owned by the bank.
	ErrUnknownPin = errors.New("unknown pin")
)
