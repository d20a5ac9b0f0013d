package multicore

import (
	"context"
	"errors"
	"sync"

	fx "github.com/robotalks/atx.go/pkg/framework"
)

var (
	// ErrAlreadySpawned is returned when core 1 is spawned twice.
	ErrAlreadySpawned = errors.New("core 1 already spawned")
	// ErrCore1Taken is returned when core 1 is run more than once.
	ErrCore1Taken = errors.New("core 1 already taken")
)

// Task is the entry point of core 1. It receives the core 1 end of the
// mailbox and owns everything captured when it was created.
type Task func(ctx context.Context, fifo *FIFO) error

// Multicore manages the two execution contexts.
type Multicore struct {
	core0 *FIFO
	core1 *FIFO

	task  Task
	taken bool
	lock  sync.Mutex
}

// New creates a Multicore with a fresh mailbox.
func New() *Multicore {
	m := &Multicore{}
	m.core0, m.core1 = NewFIFOPair()
	return m
}

// FIFO returns the core 0 end of the mailbox.
func (m *Multicore) FIFO() *FIFO {
	return m.core0
}

// Spawn hands the task to core 1. It can only be called once, and the
// task starts when the Multicore is run.
func (m *Multicore) Spawn(task Task) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.task != nil {
		return ErrAlreadySpawned
	}
	m.task = task
	return nil
}

// Core1 returns the spawned task as a Runnable. Core 1 can only be
// taken once; later calls get a Runnable failing with ErrCore1Taken.
func (m *Multicore) Core1() fx.Runnable {
	m.lock.Lock()
	task, taken := m.task, m.taken
	m.taken = true
	m.lock.Unlock()
	return fx.NamedRun("core1", fx.RunFunc(func(ctx context.Context) error {
		if taken {
			return ErrCore1Taken
		}
		if task == nil {
			<-ctx.Done()
			return ctx.Err()
		}
		return task(ctx, m.core1)
	}))
}
