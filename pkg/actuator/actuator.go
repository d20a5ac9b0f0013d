// Package actuator implements the command processing loop which owns
// all output lines.
package actuator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/atx.go/pkg/atx"
	"github.com/robotalks/atx.go/pkg/gpio"
	"github.com/robotalks/atx.go/pkg/multicore"
)

// State of the actuator.
type State int32

// States.
const (
	Idle State = iota
	Busy
)

// String implements fmt.Stringer.
func (s State) String() string {
	if s == Busy {
		return "busy"
	}
	return "idle"
}

// Report describes one processed command word.
type Report struct {
	Code       atx.Code
	Action     atx.Action
	Recognized bool
	Started    time.Time
	Finished   time.Time
}

// Observer is notified after each command is processed, before the
// acknowledgment is written. It must not block.
type Observer interface {
	CommandProcessed(Report)
}

// ObserverFunc is the func form of Observer.
type ObserverFunc func(Report)

// CommandProcessed implements Observer.
func (f ObserverFunc) CommandProcessed(r Report) {
	f(r)
}

// Actuator consumes command words, performs the actions and acknowledges.
type Actuator struct {
	Table    *atx.Table
	Pulser   *gpio.Pulser
	Observer Observer

	bank      *gpio.Bank
	indicator gpio.Line
	state     int32
	processed uint64
}

// New creates an Actuator which takes ownership of bank. All lines of the
// layout are claimed from the bank.
func New(bank *gpio.Bank, layout atx.Layout, table *atx.Table) (*Actuator, error) {
	if err := bank.Claim(layout.ActuationPins()...); err != nil {
		return nil, err
	}
	if err := bank.Claim(layout.Indicator); err != nil {
		return nil, fmt.Errorf("indicator: %w", err)
	}
	indicator, err := bank.Line(layout.Indicator)
	if err != nil {
		return nil, err
	}
	for _, action := range table.Actions() {
		if _, err := bank.Line(action.Line); err != nil {
			return nil, fmt.Errorf("%v: %w", action.Code, err)
		}
	}
	return &Actuator{
		Table:     table,
		Pulser:    gpio.NewPulser(),
		bank:      bank,
		indicator: indicator,
	}, nil
}

// State gets the current state.
func (a *Actuator) State() State {
	return State(atomic.LoadInt32(&a.state))
}

// Processed returns the number of command words processed.
func (a *Actuator) Processed() uint64 {
	return atomic.LoadUint64(&a.processed)
}

// Run implements multicore.Task. It only returns when ctx is canceled or
// an output line fails, and releases the lines on return.
func (a *Actuator) Run(ctx context.Context, fifo *multicore.FIFO) error {
	defer a.bank.Close()
	for {
		if err := a.indicator.Set(false); err != nil {
			return fmt.Errorf("indicator: %w", err)
		}
		word, err := fifo.ReadBlocking(ctx)
		if err != nil {
			return err
		}
		atomic.StoreInt32(&a.state, int32(Busy))
		if err := a.indicator.Set(true); err != nil {
			return fmt.Errorf("indicator: %w", err)
		}
		if err := a.Process(atx.Code(word)); err != nil {
			return err
		}
		atomic.StoreInt32(&a.state, int32(Idle))
		if err := fifo.WriteBlocking(ctx, uint32(atx.AckToken)); err != nil {
			return err
		}
	}
}

// Process resolves the code and performs the action synchronously.
// Unrecognized codes are absorbed without side effect.
func (a *Actuator) Process(code atx.Code) error {
	r := Report{Code: code, Started: time.Now()}
	r.Action, r.Recognized = a.Table.Resolve(code)
	if r.Recognized {
		glog.V(2).Infof("actuate %v", r.Action)
		line, err := a.bank.Line(r.Action.Line)
		if err != nil {
			return err
		}
		if err := a.Pulser.Actuate(line, r.Action.Duration); err != nil {
			return fmt.Errorf("%v on %v: %w", r.Action.Kind, r.Action.Line, err)
		}
	} else {
		glog.V(2).Infof("ignore unrecognized command %v", code)
	}
	r.Finished = time.Now()
	atomic.AddUint64(&a.processed, 1)
	if o := a.Observer; o != nil {
		o.CommandProcessed(r)
	}
	return nil
}
