package gpio

import (
	"fmt"

	"github.com/golang/glog"
)

// Bank owns a set of output lines. A Bank is meant to be handed over
// to exactly one execution context, which then owns every line in it.
type Bank struct {
	backend Backend
	lines   map[Pin]Line
}

// NewBank creates an empty Bank on the backend.
func NewBank(backend Backend) *Bank {
	return &Bank{backend: backend, lines: make(map[Pin]Line)}
}

// Claim configures pins as outputs and adds them to the bank.
func (b *Bank) Claim(pins ...Pin) error {
	for _, pin := range pins {
		if !pin.IsValid() {
			return fmt.Errorf("%v: %w", pin, ErrUnknownPin)
		}
		if _, ok := b.lines[pin]; ok {
			return fmt.Errorf("%v: %w", pin, ErrPinClaimed)
		}
		line, err := b.backend.Output(pin)
		if err != nil {
			return fmt.Errorf("configure %v: %w", pin, err)
		}
		b.lines[pin] = line
	}
	return nil
}

// Line gets a claimed line.
func (b *Bank) Line(pin Pin) (Line, error) {
	line, ok := b.lines[pin]
	if !ok {
		return nil, fmt.Errorf("%v: %w", pin, ErrUnknownPin)
	}
	return line, nil
}

// Len returns the number of claimed lines.
func (b *Bank) Len() int {
	return len(b.lines)
}

// Close deasserts all lines and releases the backend.
func (b *Bank) Close() error {
	for pin, line := range b.lines {
		if err := line.Set(false); err != nil {
			glog.Warningf("deassert %v: %v", pin, err)
		}
	}
	return b.backend.Close()
}
