package gpio

import (
	"sync"
	"time"

	"github.com/golang/glog"
)

// Transition records a level change on a simulated line.
type Transition struct {
	Pin    Pin
	Active bool
	At     time.Time
}

// Sim is an in-memory Backend which records every level change.
type Sim struct {
	// Fault, if set, is consulted before each level change and
	// a non-nil result fails the change.
	Fault func(pin Pin, active bool) error

	lock    sync.Mutex
	levels  map[Pin]bool
	history []Transition
}

// NewSim creates a simulated backend.
func NewSim() *Sim {
	return &Sim{levels: make(map[Pin]bool)}
}

type simLine struct {
	sim *Sim
	pin Pin
}

// Output implements Backend.
func (s *Sim) Output(pin Pin) (Line, error) {
	s.lock.Lock()
	s.levels[pin] = false
	s.lock.Unlock()
	return &simLine{sim: s, pin: pin}, nil
}

// Close implements Backend.
func (s *Sim) Close() error {
	return nil
}

// Level gets the current level of a pin.
func (s *Sim) Level(pin Pin) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.levels[pin]
}

// History returns a copy of the recorded transitions.
func (s *Sim) History() []Transition {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]Transition(nil), s.history...)
}

// HistoryOf returns the recorded transitions of one pin.
func (s *Sim) HistoryOf(pin Pin) (res []Transition) {
	for _, t := range s.History() {
		if t.Pin == pin {
			res = append(res, t)
		}
	}
	return
}

func (l *simLine) Set(active bool) error {
	if fault := l.sim.Fault; fault != nil {
		if err := fault(l.pin, active); err != nil {
			return err
		}
	}
	l.sim.lock.Lock()
	defer l.sim.lock.Unlock()
	if l.sim.levels[l.pin] == active {
		return nil
	}
	l.sim.levels[l.pin] = active
	l.sim.history = append(l.sim.history, Transition{Pin: l.pin, Active: active, At: time.Now()})
	if glog.V(2) {
		glog.Infof("%v -> %v", l.pin, active)
	}
	return nil
}
