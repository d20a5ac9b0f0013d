package transport

import (
	"io"
	"sync"
)

// ChunkQueue buffers chunks received from message based transports.
// Push may be called from any goroutine, Poll and Read from a single one.
type ChunkQueue struct {
	chunkCh chan []byte
	doneCh  chan struct{}
	once    sync.Once
	pending []byte
}

// NewChunkQueue creates a ChunkQueue holding up to depth chunks.
func NewChunkQueue(depth int) *ChunkQueue {
	return &ChunkQueue{
		chunkCh: make(chan []byte, depth),
		doneCh:  make(chan struct{}),
	}
}

// Push queues a chunk, blocking while the queue is full. It returns false
// if the queue is closed.
func (q *ChunkQueue) Push(chunk []byte) bool {
	if len(chunk) == 0 {
		return true
	}
	select {
	case <-q.doneCh:
		return false
	default:
	}
	select {
	case q.chunkCh <- chunk:
		return true
	case <-q.doneCh:
		return false
	}
}

// Poll implements Transport.
func (q *ChunkQueue) Poll() bool {
	return len(q.pending) > 0 || len(q.chunkCh) > 0
}

// Read implements io.Reader without blocking. Queued chunks are still
// returned after Close. A chunk larger than p is returned over several reads.
func (q *ChunkQueue) Read(p []byte) (int, error) {
	if len(q.pending) == 0 {
		select {
		case q.pending = <-q.chunkCh:
		default:
			select {
			case <-q.doneCh:
				return 0, io.EOF
			default:
				return 0, nil
			}
		}
	}
	n := copy(p, q.pending)
	q.pending = q.pending[n:]
	return n, nil
}

// Close stops accepting chunks.
func (q *ChunkQueue) Close() error {
	q.once.Do(func() { close(q.doneCh) })
	return nil
}
