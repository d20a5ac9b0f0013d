// Package bridge assembles the gateway on core 0 and the actuator on
// core 1 around a shared mailbox.
package bridge

import (
	"github.com/golang/glog"

	"github.com/robotalks/atx.go/pkg/actuator"
	"github.com/robotalks/atx.go/pkg/atx"
	fx "github.com/robotalks/atx.go/pkg/framework"
	"github.com/robotalks/atx.go/pkg/gateway"
	"github.com/robotalks/atx.go/pkg/gpio"
	"github.com/robotalks/atx.go/pkg/multicore"
	"github.com/robotalks/atx.go/pkg/transport"
)

// Bridge connects a transport to the ATX lines of up to four targets.
type Bridge struct {
	Multicore *multicore.Multicore
	Gateway   *gateway.Gateway
	Actuator  *actuator.Actuator
}

// New creates a Bridge. The bank is owned by the actuator from now on
// and is closed when core 1 stops.
func New(t transport.Transport, bank *gpio.Bank, layout atx.Layout, table *atx.Table) (*Bridge, error) {
	a, err := actuator.New(bank, layout, table)
	if err != nil {
		return nil, err
	}
	m := multicore.New()
	if err := m.Spawn(a.Run); err != nil {
		return nil, err
	}
	return &Bridge{
		Multicore: m,
		Gateway:   gateway.New(t, m.FIFO()),
		Actuator:  a,
	}, nil
}

// AddToLoop implements LoopAdder.
func (b *Bridge) AddToLoop(loop *fx.Loop) {
	for _, action := range b.Actuator.Table.Actions() {
		glog.V(1).Infof("command %v", action)
	}
	loop.AddRunnable(
		fx.NamedRun("core0", fx.RunFunc(b.Gateway.Run)),
		b.Multicore.Core1(),
	)
}
