package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jzx17/gomonitor/pkg/console"
	"github.com/jzx17/gomonitor/pkg/types"
)

// Task is the body a worker runs while it holds the monitor
type Task interface {
	// Execute executes the task
	Execute(ctx context.Context) error

	// ID returns the task ID
	ID() string
}

// taskIDCounter is the global task ID counter
var taskIDCounter int64

// BasicTask is the basic implementation of Task interface
type BasicTask struct {
	id string
	fn func(ctx context.Context) error
}

// NewBasicTask creates a new basic task
func NewBasicTask(fn func(ctx context.Context) error) *BasicTask {
	id := atomic.AddInt64(&taskIDCounter, 1)
	return &BasicTask{
		id: fmt.Sprintf("task-%d", id),
		fn: fn,
	}
}

// NewBasicTaskWithID creates a basic task with custom ID
func NewBasicTaskWithID(id string, fn func(ctx context.Context) error) *BasicTask {
	return &BasicTask{
		id: id,
		fn: fn,
	}
}

// Execute executes the task
func (t *BasicTask) Execute(ctx context.Context) error {
	if t.fn == nil {
		return fmt.Errorf("task %s has no execution function", t.id)
	}
	return t.fn(ctx)
}

// ID returns the task ID
func (t *BasicTask) ID() string {
	return t.id
}

// HoldTask announces its owner on the console and then keeps the monitor
// for a fixed duration.
type HoldTask struct {
	owner    string
	console  *console.Console
	clock    types.Clock
	duration time.Duration
}

// NewHoldTask creates the default critical section of a worker
func NewHoldTask(owner string, c *console.Console, clock types.Clock, duration time.Duration) *HoldTask {
	if c == nil {
		c = console.Stdout()
	}
	if clock == nil {
		clock = types.NewRealClock()
	}
	return &HoldTask{
		owner:    owner,
		console:  c,
		clock:    clock,
		duration: duration,
	}
}

// Execute prints the ownership line and sleeps. A cancelled sleep returns an
// error wrapping types.ErrInterrupted.
func (t *HoldTask) Execute(ctx context.Context) error {
	if err := t.console.Printf("    [%s] Owning the monitor, before sleep", t.owner); err != nil {
		return err
	}

	if err := types.SleepContext(ctx, t.clock, t.duration); err != nil {
		return fmt.Errorf("%w while holding monitor: %w", types.ErrInterrupted, err)
	}
	return nil
}

// ID returns the task ID
func (t *HoldTask) ID() string {
	return "hold-" + t.owner
}

// Duration returns how long the monitor is kept
func (t *HoldTask) Duration() time.Duration {
	return t.duration
}
