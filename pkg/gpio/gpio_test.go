package gpio

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBankClaim(t *testing.T) {
	bank := NewBank(NewSim())
	require.NoError(t, bank.Claim(2, 3))
	require.Equal(t, 2, bank.Len())

	err := bank.Claim(3)
	require.True(t, errors.Is(err, ErrPinClaimed))
	err = bank.Claim(MaxPin + 1)
	require.True(t, errors.Is(err, ErrUnknownPin))

	_, err = bank.Line(2)
	require.NoError(t, err)
	_, err = bank.Line(4)
	require.True(t, errors.Is(err, ErrUnknownPin))
}

func TestPulserActuate(t *testing.T) {
	sim := NewSim()
	line, err := sim.Output(5)
	require.NoError(t, err)

	var slept []time.Duration
	p := &Pulser{Sleep: func(d time.Duration) {
		require.True(t, sim.Level(5), "line must be active while holding")
		slept = append(slept, d)
	}}
	require.NoError(t, p.Actuate(line, 100*time.Millisecond))
	require.NoError(t, p.Actuate(line, 100*time.Millisecond))

	require.Equal(t, []time.Duration{100 * time.Millisecond, 100 * time.Millisecond}, slept)
	require.False(t, sim.Level(5))
	hist := sim.HistoryOf(5)
	require.Len(t, hist, 4)
	for n, tr := range hist {
		require.Equal(t, n%2 == 0, tr.Active)
	}
}

func TestPulserHoldsForDuration(t *testing.T) {
	sim := NewSim()
	line, _ := sim.Output(7)
	require.NoError(t, NewPulser().Actuate(line, 20*time.Millisecond))
	hist := sim.HistoryOf(7)
	require.Len(t, hist, 2)
	require.True(t, hist[1].At.Sub(hist[0].At) >= 20*time.Millisecond)
}

func TestPulserFault(t *testing.T) {
	errFault := errors.New("fault")
	sim := NewSim()
	sim.Fault = func(pin Pin, active bool) error {
		if !active {
			return errFault
		}
		return nil
	}
	line, _ := sim.Output(2)
	p := &Pulser{Sleep: func(time.Duration) {}}
	err := p.Actuate(line, time.Millisecond)
	require.True(t, errors.Is(err, errFault))
}

func TestBankCloseDeassertsRemaining(t *testing.T) {
	sim := NewSim()
	bank := NewBank(sim)
	require.NoError(t, bank.Claim(2, 3))
	for _, pin := range []Pin{2, 3} {
		line, err := bank.Line(pin)
		require.NoError(t, err)
		require.NoError(t, line.Set(true))
	}
	sim.Fault = func(pin Pin, active bool) error {
		if pin == 2 && !active {
			return errors.New("stuck")
		}
		return nil
	}
	require.NoError(t, bank.Close())
	require.True(t, sim.Level(2))
	require.False(t, sim.Level(3))
}
