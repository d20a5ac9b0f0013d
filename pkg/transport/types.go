// Package transport provides the host-facing byte streams the gateway
// reads commands from.
package transport

import "io"

// Transport is a byte stream delivering data in chunks. A Read returns at
// most one chunk, and returns 0 bytes when nothing is available.
type Transport interface {
	io.ReadWriter
	// Poll indicates new data may be available for Read.
	Poll() bool
}

// Conn is a Transport owning a connection which must be closed.
type Conn interface {
	Transport
	io.Closer
}
