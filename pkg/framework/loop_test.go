package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testMsg struct {
	val int
}

func (m *testMsg) NewMessage() Message { return &testMsg{} }

type testCollector struct {
	gotCh chan int
}

func (c *testCollector) Control(cc ControlContext) error {
	cc.Messages().ProcessMessages(ProcessMessageFunc(func(mctx MessageProcessingContext) {
		if msg, ok := mctx.CurrentMessage().(*testMsg); ok {
			mctx.MessageTaken()
			c.gotCh <- msg.val
		}
	}))
	return nil
}

func TestLoopMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gotCh := make(chan int, 4)
	loop := NewLoop()
	loop.Interval = time.Hour
	loop.AddController(PrLvPostProc, &testCollector{gotCh: gotCh})
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	loop.PostMessage(&testMsg{val: 1})
	loop.PostMessage(&testMsg{val: 2})
	loop.TriggerNext()
	for _, expected := range []int{1, 2} {
		select {
		case val := <-gotCh:
			require.Equal(t, expected, val)
		case <-time.After(time.Second):
			t.Fatal("message timeout")
		}
	}
	cancel()
	require.Equal(t, context.Canceled, <-errCh)
}

func TestLoopStopsWithRunnable(t *testing.T) {
	errBoom := errors.New("boom")
	loop := NewLoop().AddRunnable(
		RunFunc(func(context.Context) error { return errBoom }),
		RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
	)
	require.Equal(t, errBoom, loop.Run(context.Background()))
}
