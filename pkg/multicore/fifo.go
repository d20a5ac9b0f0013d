// Package multicore runs the two execution contexts of the bridge and
// connects them with a word-sized, single-slot mailbox per direction.
package multicore

import "context"

// FIFO is one side of the inter-core mailbox. Each direction holds at
// most one word: a writer blocks until the peer drained the previous
// word, a reader blocks until the peer produced one.
type FIFO struct {
	tx chan<- uint32
	rx <-chan uint32
}

// NewFIFOPair creates both ends of a mailbox.
func NewFIFOPair() (core0, core1 *FIFO) {
	up, down := make(chan uint32, 1), make(chan uint32, 1)
	return &FIFO{tx: down, rx: up}, &FIFO{tx: up, rx: down}
}

// Write posts a word without blocking. It returns false if the slot
// is still occupied, in which case the word is dropped.
func (f *FIFO) Write(word uint32) bool {
	select {
	case f.tx <- word:
		return true
	default:
		return false
	}
}

// WriteBlocking posts a word, waiting for the slot to be free.
func (f *FIFO) WriteBlocking(ctx context.Context, word uint32) error {
	select {
	case f.tx <- word:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Read takes a word if one is ready.
func (f *FIFO) Read() (word uint32, ok bool) {
	select {
	case word = <-f.rx:
		return word, true
	default:
		return 0, false
	}
}

// ReadBlocking waits for a word from the peer.
func (f *FIFO) ReadBlocking(ctx context.Context) (uint32, error) {
	select {
	case word := <-f.rx:
		return word, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Drain discards any word waiting to be read.
func (f *FIFO) Drain() {
	for {
		if _, ok := f.Read(); !ok {
			return
		}
	}
}
