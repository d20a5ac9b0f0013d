// Package client sends commands to a bridge from the host side.
package client

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/atx.go/pkg/atx"
	"github.com/robotalks/atx.go/pkg/transport/serial"
)

// ErrNoEcho is returned when the bridge did not echo a command in time.
var ErrNoEcho = errors.New("no echo")

// Client sends command frames and waits for the echo. The echo comes back
// after the action completed, so Timeout must exceed the longest hold.
// Port.Read returns 0 bytes when nothing arrived within a short timeout.
type Client struct {
	Port    io.ReadWriter
	Timeout time.Duration
}

// New creates a Client waiting up to the longest of durations plus a second.
func New(port io.ReadWriter, durations atx.Durations) *Client {
	return &Client{Port: port, Timeout: durations.Max() + time.Second}
}

// Open opens a serial port at the bridge line settings.
func Open(address string, durations atx.Durations) (*Client, io.Closer, error) {
	conf := serial.DefaultConfig(address)
	conf.Timeout = 100 * time.Millisecond
	port, err := serial.Open(conf)
	if err != nil {
		return nil, nil, err
	}
	return New(port, durations), port, nil
}

// Send writes the command and waits for its echo.
func (c *Client) Send(code atx.Code) error {
	frame := code.Bytes()
	glog.V(2).Infof("send %v", code)
	for p := frame; len(p) > 0; {
		n, err := c.Port.Write(p)
		if err != nil {
			return fmt.Errorf("send %v: %w", code, err)
		}
		if n == 0 {
			return fmt.Errorf("send %v: %w", code, io.ErrShortWrite)
		}
		p = p[n:]
	}
	echo, err := c.readEcho(len(frame))
	if err != nil {
		return fmt.Errorf("%v: %w", code, err)
	}
	if !bytes.Equal(echo, frame) {
		return fmt.Errorf("%v: unexpected echo %q", code, echo)
	}
	return nil
}

func (c *Client) readEcho(size int) ([]byte, error) {
	deadline := time.Now().Add(c.Timeout)
	echo := make([]byte, 0, size)
	buf := make([]byte, size)
	for len(echo) < size {
		n, err := c.Port.Read(buf[:size-len(echo)])
		if err != nil {
			return echo, err
		}
		echo = append(echo, buf[:n]...)
		if n == 0 && time.Now().After(deadline) {
			return echo, ErrNoEcho
		}
	}
	return echo, nil
}
