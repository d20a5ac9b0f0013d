package gateway

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/atx.go/pkg/atx"
	"github.com/robotalks/atx.go/pkg/multicore"
	"github.com/robotalks/atx.go/pkg/transport"
)

type testTransport struct {
	chunkCh chan []byte
	reads   int32
	readErr error
	writeFn func([]byte) (int, error)

	lock    sync.Mutex
	written []byte
}

func newTestTransport() *testTransport {
	return &testTransport{chunkCh: make(chan []byte, 16)}
}

func (t *testTransport) inject(chunks ...string) {
	for _, chunk := range chunks {
		t.chunkCh <- []byte(chunk)
	}
}

func (t *testTransport) Poll() bool {
	return t.readErr != nil || len(t.chunkCh) > 0
}

func (t *testTransport) Read(p []byte) (int, error) {
	atomic.AddInt32(&t.reads, 1)
	if t.readErr != nil {
		return 0, t.readErr
	}
	select {
	case chunk := <-t.chunkCh:
		return copy(p, chunk), nil
	default:
		return 0, nil
	}
}

func (t *testTransport) Write(p []byte) (int, error) {
	n, err := len(p), error(nil)
	if t.writeFn != nil {
		n, err = t.writeFn(p)
	}
	if n > 0 {
		t.lock.Lock()
		t.written = append(t.written, p[:n]...)
		t.lock.Unlock()
	}
	return n, err
}

func (t *testTransport) echoed() string {
	t.lock.Lock()
	defer t.lock.Unlock()
	return string(t.written)
}

func (t *testTransport) readCount() int {
	return int(atomic.LoadInt32(&t.reads))
}

// testCore1 stands in for the actuator: it reports received words
// and replies with whatever is sent on ackCh.
type testCore1 struct {
	fifo   *multicore.FIFO
	wordCh chan uint32
	ackCh  chan uint32
}

func startTestCore1(ctx context.Context, fifo *multicore.FIFO) *testCore1 {
	c := &testCore1{fifo: fifo, wordCh: make(chan uint32, 1), ackCh: make(chan uint32, 1)}
	go func() {
		for {
			word, err := fifo.ReadBlocking(ctx)
			if err != nil {
				return
			}
			c.wordCh <- word
			var ack uint32
			select {
			case ack = <-c.ackCh:
			case <-ctx.Done():
				return
			}
			if fifo.WriteBlocking(ctx, ack) != nil {
				return
			}
		}
	}()
	return c
}

func (c *testCore1) expect(t *testing.T, code atx.Code) {
	select {
	case word := <-c.wordCh:
		require.Equal(t, code, atx.Code(word))
	case <-time.After(time.Second):
		t.Fatalf("%v not dispatched", code)
	}
}

func waitEcho(t *testing.T, tr *testTransport, expected string) {
	deadline := time.Now().Add(time.Second)
	for tr.echoed() != expected {
		if time.Now().After(deadline) {
			t.Fatalf("echo %q, expected %q", tr.echoed(), expected)
		}
		time.Sleep(time.Millisecond)
	}
}

type gatewayTestEnv struct {
	tr     *testTransport
	gw     *Gateway
	core1  *testCore1
	ctx    context.Context
	cancel func()
}

func newGatewayTestEnv() *gatewayTestEnv {
	core0, core1 := multicore.NewFIFOPair()
	env := &gatewayTestEnv{tr: newTestTransport()}
	env.ctx, env.cancel = context.WithCancel(context.Background())
	env.gw = New(env.tr, core0)
	env.core1 = startTestCore1(env.ctx, core1)
	return env
}

func TestDispatchFrame(t *testing.T) {
	env := newGatewayTestEnv()
	defer env.cancel()
	env.tr.inject("s1rs")
	env.core1.ackCh <- uint32(atx.AckToken)
	handled, err := env.gw.PollOnce(env.ctx)
	require.NoError(t, err)
	require.True(t, handled)
	env.core1.expect(t, atx.S1RS)
	assert.Equal(t, "S1RS", env.tr.echoed())
	assert.EqualValues(t, 1, env.gw.Dispatched())
	assert.Zero(t, env.gw.UnexpectedAcks())
}

func TestUnrecognizedFrameDispatched(t *testing.T) {
	env := newGatewayTestEnv()
	defer env.cancel()
	env.tr.inject("ZZZZ")
	env.core1.ackCh <- uint32(atx.AckToken)
	_, err := env.gw.PollOnce(env.ctx)
	require.NoError(t, err)
	env.core1.expect(t, atx.Code(0x5a5a5a5a))
	assert.Equal(t, "ZZZZ", env.tr.echoed())
}

func TestNonFrameChunks(t *testing.T) {
	testCases := []struct {
		chunk string
		echo  string
	}{
		{"s", "S"},
		{"s1", "S1"},
		{"s1r", "S1R"},
		{"s1rs\n", "S1RS\n"},
		{"S1RSS2RS", "S1RSS2RS"},
	}
	for _, tc := range testCases {
		t.Run(tc.chunk, func(t *testing.T) {
			env := newGatewayTestEnv()
			defer env.cancel()
			env.tr.inject(tc.chunk)
			handled, err := env.gw.PollOnce(env.ctx)
			require.NoError(t, err)
			require.True(t, handled)
			assert.Equal(t, tc.echo, env.tr.echoed())
			assert.Zero(t, env.gw.Dispatched())
			select {
			case word := <-env.core1.wordCh:
				t.Fatalf("unexpected dispatch 0x%x", word)
			default:
			}
		})
	}
}

func TestNothingToRead(t *testing.T) {
	env := newGatewayTestEnv()
	defer env.cancel()
	handled, err := env.gw.PollOnce(env.ctx)
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Empty(t, env.tr.echoed())
}

func TestReadErrorAbsorbed(t *testing.T) {
	env := newGatewayTestEnv()
	defer env.cancel()
	env.tr.readErr = errors.New("disconnected")
	handled, err := env.gw.PollOnce(env.ctx)
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestEchoPartialWrites(t *testing.T) {
	env := newGatewayTestEnv()
	defer env.cancel()
	var calls int
	env.tr.writeFn = func(p []byte) (int, error) {
		calls++
		return 1, nil
	}
	env.tr.inject("abc")
	_, err := env.gw.PollOnce(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, "ABC", env.tr.echoed())
	assert.Equal(t, 3, calls)
}

func TestEchoWriteFailure(t *testing.T) {
	env := newGatewayTestEnv()
	defer env.cancel()
	var calls int
	env.tr.writeFn = func(p []byte) (int, error) {
		calls++
		if calls == 1 {
			return 2, nil
		}
		return 0, errors.New("buffer full")
	}
	env.tr.inject("s2ps")
	env.core1.ackCh <- uint32(atx.AckToken)
	handled, err := env.gw.PollOnce(env.ctx)
	require.NoError(t, err)
	require.True(t, handled)
	env.core1.expect(t, atx.S2PS)
	assert.Equal(t, "S2", env.tr.echoed())
	assert.Equal(t, 2, calls)

	env.tr.writeFn = nil
	env.tr.inject("abcde")
	_, err = env.gw.PollOnce(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, "S2ABCDE", env.tr.echoed())
}

func TestEchoStalled(t *testing.T) {
	env := newGatewayTestEnv()
	defer env.cancel()
	var calls int
	env.tr.writeFn = func(p []byte) (int, error) {
		calls++
		return 0, nil
	}
	env.tr.inject("ab")
	_, err := env.gw.PollOnce(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, env.tr.echoed())
	assert.Equal(t, 1, calls)
}

func TestUnexpectedAck(t *testing.T) {
	env := newGatewayTestEnv()
	defer env.cancel()
	env.tr.inject("S3RS")
	env.core1.ackCh <- 0x42
	handled, err := env.gw.PollOnce(env.ctx)
	require.NoError(t, err)
	require.True(t, handled)
	env.core1.expect(t, atx.S3RS)
	assert.EqualValues(t, 1, env.gw.UnexpectedAcks())
	assert.Equal(t, "S3RS", env.tr.echoed())
}

func TestNoReadWhileAckPending(t *testing.T) {
	env := newGatewayTestEnv()
	defer env.cancel()
	env.tr.inject("S1RS", "S2RS")
	errCh := make(chan error, 1)
	go func() { errCh <- env.gw.Run(env.ctx) }()

	env.core1.expect(t, atx.S1RS)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, env.tr.readCount())
	assert.Len(t, env.tr.chunkCh, 1)
	assert.Empty(t, env.tr.echoed())

	env.core1.ackCh <- uint32(atx.AckToken)
	env.core1.expect(t, atx.S2RS)
	assert.Equal(t, "S1RS", env.tr.echoed())
	env.core1.ackCh <- uint32(atx.AckToken)

	waitEcho(t, env.tr, "S1RSS2RS")

	env.cancel()
	select {
	case err := <-errCh:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("gateway not stopped")
	}
}

func TestRunCanceledWhileAckPending(t *testing.T) {
	env := newGatewayTestEnv()
	env.tr.inject("S4PL")
	errCh := make(chan error, 1)
	go func() { errCh <- env.gw.Run(env.ctx) }()
	env.core1.expect(t, atx.S4PL)
	env.cancel()
	select {
	case err := <-errCh:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("gateway not stopped")
	}
	assert.Empty(t, env.tr.echoed())
}

type queueTransport struct {
	*transport.ChunkQueue
	written []byte
}

func (t *queueTransport) Write(p []byte) (int, error) {
	t.written = append(t.written, p...)
	return len(p), nil
}

func TestOversizedMessageReadInPieces(t *testing.T) {
	core0, core1 := multicore.NewFIFOPair()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c1 := startTestCore1(ctx, core1)
	tr := &queueTransport{ChunkQueue: transport.NewChunkQueue(1)}
	gw := New(tr, core0)

	head := strings.Repeat("x", BufferSize)
	require.True(t, tr.Push([]byte(head+"s1rs")))

	handled, err := gw.PollOnce(ctx)
	require.NoError(t, err)
	require.True(t, handled)
	assert.Zero(t, gw.Dispatched())
	assert.Equal(t, strings.ToUpper(head), string(tr.written))

	c1.ackCh <- uint32(atx.AckToken)
	handled, err = gw.PollOnce(ctx)
	require.NoError(t, err)
	require.True(t, handled)
	c1.expect(t, atx.S1RS)
	assert.EqualValues(t, 1, gw.Dispatched())
	assert.Equal(t, strings.ToUpper(head)+"S1RS", string(tr.written))
}
