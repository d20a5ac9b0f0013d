// Package stream adapts a plain io.ReadWriter, e.g. stdin/stdout, as a Transport.
package stream

import (
	"io"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/atx.go/pkg/transport"
)

// ReadSize is the most bytes taken from the stream in one read.
const ReadSize = 64

// Transport wraps an io.ReadWriter. A background reader turns each Read on
// the underlying stream into one chunk, so Read on the Transport never blocks.
type Transport struct {
	*transport.ChunkQueue

	rw io.ReadWriter
}

// New creates a Transport with io.ReadWriter and starts reading.
func New(rw io.ReadWriter) *Transport {
	t := &Transport{ChunkQueue: transport.NewChunkQueue(4), rw: rw}
	go t.receive()
	return t
}

type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

// Stdio creates a Transport on stdin and stdout.
func Stdio() *Transport {
	return New(stdio{})
}

func (t *Transport) receive() {
	defer t.ChunkQueue.Close()
	buf := make([]byte, ReadSize)
	for {
		n, err := t.rw.Read(buf)
		if n > 0 && !t.Push(append([]byte(nil), buf[:n]...)) {
			return
		}
		if err != nil {
			glog.V(2).Infof("stream receive stopped: %v", err)
			return
		}
	}
}

// Write implements io.Writer.
func (t *Transport) Write(p []byte) (int, error) {
	return t.rw.Write(p)
}

// Close stops receiving and closes the underlying stream if possible.
func (t *Transport) Close() error {
	t.ChunkQueue.Close()
	if closer, ok := t.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
