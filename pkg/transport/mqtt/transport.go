package mqtt

import (
	"github.com/robotalks/atx.go/pkg/transport"
)

// Transport receives command chunks from a topic and publishes echoes.
// Each MQTT message is one chunk.
type Transport struct {
	*transport.ChunkQueue

	Queue    *Queue
	SubTopic string
	PubTopic string

	sub *Subscription
}

// CommandTopic receives command chunks for the bridge with id.
func CommandTopic(id string) string { return id + "/cmd" }

// EchoTopic carries the echoes.
func EchoTopic(id string) string { return id + "/echo" }

// EventTopic carries actuation events.
func EventTopic(id string) string { return id + "/events" }

// MetaTopic holds the retained bridge description.
func MetaTopic(id string) string { return id + "/meta" }

// NewTransport subscribes to the command topic of the bridge.
func NewTransport(q *Queue, id string) *Transport {
	t := &Transport{
		ChunkQueue: transport.NewChunkQueue(8),
		Queue:      q,
		SubTopic:   CommandTopic(id),
		PubTopic:   EchoTopic(id),
	}
	t.sub = q.Sub(t.SubTopic, func(_ string, payload []byte) {
		t.Push(append([]byte(nil), payload...))
	})
	return t
}

// Write implements io.Writer by publishing p as one message.
func (t *Transport) Write(p []byte) (int, error) {
	token := t.Queue.Pub(t.PubTopic, append([]byte(nil), p...))
	token.Wait()
	if err := token.Error(); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close unsubscribes and disconnects.
func (t *Transport) Close() error {
	t.ChunkQueue.Close()
	t.sub.Close()
	return t.Queue.Close()
}
