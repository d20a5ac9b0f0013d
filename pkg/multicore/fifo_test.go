package multicore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFIFOSingleSlot(t *testing.T) {
	core0, core1 := NewFIFOPair()
	require.True(t, core0.Write(1))
	require.False(t, core0.Write(2), "slot must hold one word only")

	word, ok := core1.Read()
	require.True(t, ok)
	require.Equal(t, uint32(1), word)
	_, ok = core1.Read()
	require.False(t, ok)

	_, ok = core0.Read()
	require.False(t, ok, "directions are independent")
}

func TestFIFOBlocking(t *testing.T) {
	core0, core1 := NewFIFOPair()
	ctx := context.Background()
	require.NoError(t, core1.WriteBlocking(ctx, 0xee))

	doneCh := make(chan struct{})
	go func() {
		defer close(doneCh)
		core1.WriteBlocking(ctx, 0xef)
	}()
	select {
	case <-doneCh:
		t.Fatal("second write must block until drained")
	case <-time.After(20 * time.Millisecond):
	}
	word, err := core0.ReadBlocking(ctx)
	require.NoError(t, err)
	require.Equal(t, uint32(0xee), word)
	<-doneCh
	word, err = core0.ReadBlocking(ctx)
	require.NoError(t, err)
	require.Equal(t, uint32(0xef), word)
}

func TestFIFOCanceled(t *testing.T) {
	core0, _ := NewFIFOPair()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := core0.ReadBlocking(ctx)
	require.Equal(t, context.Canceled, err)
	core0.Write(1)
	require.Equal(t, context.Canceled, core0.WriteBlocking(ctx, 2))
}

func TestFIFODrain(t *testing.T) {
	core0, core1 := NewFIFOPair()
	core0.Write(7)
	core1.Drain()
	_, ok := core1.Read()
	require.False(t, ok)
}

func TestSpawnOnce(t *testing.T) {
	m := New()
	task := func(ctx context.Context, fifo *FIFO) error {
		word, err := fifo.ReadBlocking(ctx)
		if err != nil {
			return err
		}
		return fifo.WriteBlocking(ctx, word+1)
	}
	require.NoError(t, m.Spawn(task))
	require.Equal(t, ErrAlreadySpawned, m.Spawn(task))

	ctx := context.Background()
	errCh := make(chan error, 1)
	go func() { errCh <- m.Core1().Run(ctx) }()
	require.NoError(t, m.FIFO().WriteBlocking(ctx, 41))
	word, err := m.FIFO().ReadBlocking(ctx)
	require.NoError(t, err)
	require.Equal(t, uint32(42), word)
	require.NoError(t, <-errCh)
}

func TestCore1TakenOnce(t *testing.T) {
	m := New()
	require.NoError(t, m.Spawn(func(ctx context.Context, fifo *FIFO) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	first := m.Core1()
	require.Equal(t, ErrCore1Taken, m.Core1().Run(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Equal(t, context.Canceled, first.Run(ctx))
}
