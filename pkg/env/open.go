package env

import (
	"fmt"
	"log"
	"net/url"

	"github.com/robotalks/atx.go/pkg/atx"
	"github.com/robotalks/atx.go/pkg/gpio"
	"github.com/robotalks/atx.go/pkg/gpio/rpio"
	"github.com/robotalks/atx.go/pkg/transport"
	"github.com/robotalks/atx.go/pkg/transport/mqtt"
	"github.com/robotalks/atx.go/pkg/transport/serial"
	"github.com/robotalks/atx.go/pkg/transport/stream"
	"github.com/robotalks/atx.go/pkg/transport/websocket"
)

// OpenTransport opens the command transport selected by TransportURL.
func (c *Config) OpenTransport() (transport.Conn, error) {
	u, err := url.Parse(c.TransportURL)
	if err != nil {
		return nil, fmt.Errorf("invalid transport URL: %v", err)
	}
	switch u.Scheme {
	case "stdio":
		return stream.Stdio(), nil
	case "serial":
		conf, err := serial.ConfigFromURL(u)
		if err != nil {
			return nil, err
		}
		tr, err := serial.Open(conf)
		if err != nil {
			return nil, err
		}
		return tr, nil
	case "mqtt", "tcp", "ssl":
		q, err := mqtt.NewQueueFromURL(c.TransportURL)
		if err != nil {
			return nil, err
		}
		tr := mqtt.NewTransport(q, c.ID)
		if err := q.Connect(); err != nil {
			return nil, fmt.Errorf("connect %s: %w", u.Host, err)
		}
		return tr, nil
	case "ws", "wss":
		origin := "http://" + u.Host
		if u.Scheme == "wss" {
			origin = "https://" + u.Host
		}
		tr, err := websocket.Dial(c.TransportURL, origin)
		if err != nil {
			return nil, err
		}
		return tr, nil
	default:
		return nil, fmt.Errorf("unknown transport URL scheme: %q", u.Scheme)
	}
}

// MustOpenTransport opens the transport and fails on error.
func (c *Config) MustOpenTransport() transport.Conn {
	conn, err := c.OpenTransport()
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}

// NewBackend creates the GPIO backend.
func (c *Config) NewBackend() (gpio.Backend, error) {
	switch c.GPIO {
	case GPIOSim:
		return gpio.NewSim(), nil
	case GPIORpio:
		return rpio.New(c.ActiveLow), nil
	default:
		return nil, fmt.Errorf("unknown GPIO backend %q", c.GPIO)
	}
}

// NewTable builds the action table from Layout and Durations.
func (c *Config) NewTable() *atx.Table {
	return atx.NewTable(c.Layout, c.Durations)
}

// Load applies the config file and validates the result.
func (c *Config) Load() error {
	if err := c.LoadFile(); err != nil {
		return err
	}
	return c.Validate()
}

// MustLoad loads the config and fails on error.
func (c *Config) MustLoad() *Config {
	if err := c.Load(); err != nil {
		log.Fatalln(err)
	}
	return c
}
