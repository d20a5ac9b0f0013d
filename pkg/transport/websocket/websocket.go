// Package websocket receives command chunks as websocket messages.
package websocket

import (
	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/atx.go/pkg/transport"
)

// Transport wraps a websocket.Conn. Each received message is one chunk.
type Transport struct {
	*transport.ChunkQueue

	conn *websocket.Conn
}

// Dial connects to a websocket server.
func Dial(url, origin string) (*Transport, error) {
	conn, err := websocket.Dial(url, "", origin)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// New wraps an established connection and starts receiving.
func New(conn *websocket.Conn) *Transport {
	t := &Transport{ChunkQueue: transport.NewChunkQueue(8), conn: conn}
	go t.receive()
	return t
}

func (t *Transport) receive() {
	defer t.ChunkQueue.Close()
	for {
		var chunk []byte
		if err := websocket.Message.Receive(t.conn, &chunk); err != nil {
			glog.V(2).Infof("websocket receive stopped: %v", err)
			return
		}
		if !t.Push(chunk) {
			return
		}
	}
}

// Write implements io.Writer by sending p as one binary message.
func (t *Transport) Write(p []byte) (int, error) {
	if err := websocket.Message.Send(t.conn, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close closes the connection.
func (t *Transport) Close() error {
	t.ChunkQueue.Close()
	return t.conn.Close()
}
