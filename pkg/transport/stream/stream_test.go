package stream

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipeStream struct {
	*io.PipeReader
	io.Writer
}

func TestReadNeverBlocks(t *testing.T) {
	r, w := io.Pipe()
	tr := New(pipeStream{PipeReader: r, Writer: io.Discard})
	defer tr.Close()

	buf := make([]byte, 8)
	doneCh := make(chan struct{})
	go func() {
		defer close(doneCh)
		n, err := tr.Read(buf)
		assert.NoError(t, err)
		assert.Zero(t, n)
	}()
	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("Read blocked on an idle stream")
	}
	assert.False(t, tr.Poll())

	go w.Write([]byte("s1rs"))
	deadline := time.Now().Add(time.Second)
	for !tr.Poll() {
		require.True(t, time.Now().Before(deadline), "chunk not received")
		time.Sleep(time.Millisecond)
	}
	n, err := tr.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "s1rs", string(buf[:n]))
}

func TestStreamEnd(t *testing.T) {
	r, w := io.Pipe()
	tr := New(pipeStream{PipeReader: r, Writer: io.Discard})
	w.Close()
	buf := make([]byte, 8)
	deadline := time.Now().Add(time.Second)
	for {
		_, err := tr.Read(buf)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.True(t, time.Now().Before(deadline), "EOF not reported")
		time.Sleep(time.Millisecond)
	}
}
