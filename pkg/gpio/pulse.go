package gpio

import (
	"fmt"
	"time"
)

// Pulser performs timed actuations. The delay is blocking and
// occupies the calling goroutine for the full duration.
type Pulser struct {
	Sleep func(time.Duration)
}

// NewPulser creates a Pulser using time.Sleep.
func NewPulser() *Pulser {
	return &Pulser{Sleep: time.Sleep}
}

// Actuate asserts the line, holds it for d, then deasserts it.
// An error from the line is not recoverable by the caller.
func (p *Pulser) Actuate(line Line, d time.Duration) error {
	if err := line.Set(true); err != nil {
		return fmt.Errorf("assert: %w", err)
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	sleep(d)
	if err := line.Set(false); err != nil {
		return fmt.Errorf("deassert: %w", err)
	}
	return nil
}
