// Package gateway polls the host transport, frames command words, hands
// them to the actuator and echoes what it received.
package gateway

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/atx.go/pkg/atx"
	"github.com/robotalks/atx.go/pkg/multicore"
	"github.com/robotalks/atx.go/pkg/transport"
)

// BufferSize is the largest chunk taken from the transport in one read.
const BufferSize = 64

// DefaultIdleInterval is the wait between polls of an idle transport.
const DefaultIdleInterval = time.Millisecond

// Gateway is the core 0 loop.
type Gateway struct {
	Transport    transport.Transport
	FIFO         *multicore.FIFO
	IdleInterval time.Duration

	buf            [BufferSize]byte
	dispatched     uint64
	unexpectedAcks uint64
}

// New creates a Gateway.
func New(t transport.Transport, fifo *multicore.FIFO) *Gateway {
	return &Gateway{Transport: t, FIFO: fifo, IdleInterval: DefaultIdleInterval}
}

// Dispatched returns the number of frames sent to the actuator.
func (g *Gateway) Dispatched() uint64 {
	return atomic.LoadUint64(&g.dispatched)
}

// UnexpectedAcks returns the number of acknowledgments other than AckToken.
func (g *Gateway) UnexpectedAcks() uint64 {
	return atomic.LoadUint64(&g.unexpectedAcks)
}

// Run implements Runnable. It only returns when ctx is done.
func (g *Gateway) Run(ctx context.Context) error {
	interval := g.IdleInterval
	if interval <= 0 {
		interval = DefaultIdleInterval
	}
	for {
		handled, err := g.PollOnce(ctx)
		if err != nil {
			return err
		}
		if handled {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// PollOnce takes at most one chunk from the transport and handles it.
// It reports whether a chunk was handled. Only a done ctx fails it.
func (g *Gateway) PollOnce(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !g.Transport.Poll() {
		return false, nil
	}
	n, err := g.Transport.Read(g.buf[:])
	if err != nil {
		glog.V(2).Infof("transport read: %v", err)
		return false, nil
	}
	if n <= 0 {
		return false, nil
	}
	chunk := g.buf[:n]
	atx.Normalize(chunk)
	if code, ok := atx.DecodeFrame(chunk); ok {
		if err := g.dispatch(ctx, code); err != nil {
			return false, err
		}
	} else {
		glog.V(2).Infof("skip %d byte chunk", n)
	}
	g.echo(chunk)
	return true, nil
}

func (g *Gateway) dispatch(ctx context.Context, code atx.Code) error {
	glog.V(2).Infof("dispatch %v", code)
	if err := g.FIFO.WriteBlocking(ctx, uint32(code)); err != nil {
		return err
	}
	atomic.AddUint64(&g.dispatched, 1)
	ack, err := g.FIFO.ReadBlocking(ctx)
	if err != nil {
		return err
	}
	if atx.Code(ack) != atx.AckToken {
		atomic.AddUint64(&g.unexpectedAcks, 1)
		glog.Warningf("unexpected ack 0x%x for %v", ack, code)
	}
	return nil
}

func (g *Gateway) echo(p []byte) {
	for len(p) > 0 {
		n, err := g.Transport.Write(p)
		if err != nil {
			glog.Warningf("echo aborted with %d bytes left: %v", len(p), err)
			return
		}
		if n <= 0 {
			glog.Warningf("echo stalled with %d bytes left", len(p))
			return
		}
		p = p[n:]
	}
}
