package atx

import (
	"fmt"
	"sort"
	"time"

	"github.com/robotalks/atx.go/pkg/gpio"
)

// Target is one of the controlled machines, 1 to NumTargets.
type Target int

// NumTargets is the number of controllable machines.
const NumTargets = 4

// IsValid checks the target number.
func (t Target) IsValid() bool {
	return t >= 1 && t <= NumTargets
}

// Kind is the action performed on a target.
type Kind int

// Action kinds.
const (
	Reset Kind = iota
	PowerShort
	PowerLong
)

// Kinds lists all action kinds.
var Kinds = []Kind{Reset, PowerShort, PowerLong}

func (k Kind) suffix() string {
	switch k {
	case Reset:
		return "RS"
	case PowerShort:
		return "PS"
	case PowerLong:
		return "PL"
	}
	return "??"
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Reset:
		return "reset"
	case PowerShort:
		return "power-short"
	case PowerLong:
		return "power-long"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type entryKey struct {
	target Target
	kind   Kind
}

// codes must list each code exactly once; the compiler rejects
// duplicate constant keys.
var codes = map[Code]entryKey{
	S1RS: {1, Reset}, S1PS: {1, PowerShort}, S1PL: {1, PowerLong},
	S2RS: {2, Reset}, S2PS: {2, PowerShort}, S2PL: {2, PowerLong},
	S3RS: {3, Reset}, S3PS: {3, PowerShort}, S3PL: {3, PowerLong},
	S4RS: {4, Reset}, S4PS: {4, PowerShort}, S4PL: {4, PowerLong},
}

// Lines are the output lines wired to a target.
type Lines struct {
	Reset gpio.Pin
	Power gpio.Pin
}

// Layout assigns output lines to targets.
type Layout struct {
	Targets   [NumTargets]Lines
	Indicator gpio.Pin
}

// DefaultLayout follows the reference board wiring.
var DefaultLayout = Layout{
	Targets: [NumTargets]Lines{
		{Reset: 2, Power: 3},
		{Reset: 4, Power: 5},
		{Reset: 6, Power: 7},
		{Reset: 8, Power: 9},
	},
	Indicator: 25,
}

// ActuationPins lists the reset and power pins of all targets.
func (l Layout) ActuationPins() []gpio.Pin {
	pins := make([]gpio.Pin, 0, 2*NumTargets)
	for _, lines := range l.Targets {
		pins = append(pins, lines.Reset, lines.Power)
	}
	return pins
}

// Durations are the hold times per action kind.
type Durations struct {
	Reset      time.Duration
	PowerShort time.Duration
	PowerLong  time.Duration
}

// DefaultDurations are the standard ATX press durations.
var DefaultDurations = Durations{
	Reset:      100 * time.Millisecond,
	PowerShort: 100 * time.Millisecond,
	PowerLong:  5000 * time.Millisecond,
}

// Of gets the duration of an action kind.
func (d Durations) Of(kind Kind) time.Duration {
	switch kind {
	case Reset:
		return d.Reset
	case PowerShort:
		return d.PowerShort
	case PowerLong:
		return d.PowerLong
	}
	return 0
}

// Max gets the longest duration.
func (d Durations) Max() time.Duration {
	max := d.Reset
	for _, v := range []time.Duration{d.PowerShort, d.PowerLong} {
		if v > max {
			max = v
		}
	}
	return max
}

// Action is what a recognized code does.
type Action struct {
	Code     Code
	Target   Target
	Kind     Kind
	Line     gpio.Pin
	Duration time.Duration
}

// String implements fmt.Stringer.
func (a Action) String() string {
	return fmt.Sprintf("%v: target %d %v on %v for %v", a.Code, a.Target, a.Kind, a.Line, a.Duration)
}

// Table resolves command codes into actions. It is read-only once built.
type Table struct {
	actions map[Code]Action
}

// NewTable builds a Table for the layout and durations.
func NewTable(layout Layout, durations Durations) *Table {
	t := &Table{actions: make(map[Code]Action, len(codes))}
	for code, key := range codes {
		lines := layout.Targets[key.target-1]
		line := lines.Power
		if key.kind == Reset {
			line = lines.Reset
		}
		t.actions[code] = Action{
			Code:     code,
			Target:   key.target,
			Kind:     key.kind,
			Line:     line,
			Duration: durations.Of(key.kind),
		}
	}
	return t
}

// DefaultTable builds the table from DefaultLayout and DefaultDurations.
func DefaultTable() *Table {
	return NewTable(DefaultLayout, DefaultDurations)
}

// Resolve looks up the action for a code. It is defined for every
// 32-bit value; ok is false for unrecognized codes.
func (t *Table) Resolve(code Code) (action Action, ok bool) {
	action, ok = t.actions[code]
	return
}

// Actions lists all actions ordered by target and kind.
func (t *Table) Actions() []Action {
	actions := make([]Action, 0, len(t.actions))
	for _, a := range t.actions {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool {
		if actions[i].Target != actions[j].Target {
			return actions[i].Target < actions[j].Target
		}
		return actions[i].Kind < actions[j].Kind
	})
	return actions
}
