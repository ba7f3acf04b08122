package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	interrors "github.com/jzx17/gomonitor/internal/errors"
	"github.com/jzx17/gomonitor/pkg/console"
	"github.com/jzx17/gomonitor/pkg/monitor"
	"github.com/jzx17/gomonitor/pkg/types"
)

// DefaultHoldDuration is how long a worker keeps the monitor unless configured otherwise
const DefaultHoldDuration = 1000 * time.Millisecond

// Config defines configuration for a worker
type Config struct {
	// Name identifies the worker in output; defaults to "Thread-<id>"
	Name string

	// HoldDuration is how long the monitor is kept
	HoldDuration time.Duration

	// Clock for time operations (optional, defaults to real clock)
	Clock types.Clock

	// Console receives the ownership line (optional, defaults to stdout)
	Console *console.Console

	// Task replaces the default critical section (optional)
	Task Task

	// ErrorHandler decides whether an interruption is swallowed or surfaced.
	// Nil surfaces every error.
	ErrorHandler interrors.ErrorHandler
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		HoldDuration: DefaultHoldDuration,
		Clock:        types.NewRealClock(),
		Console:      console.Stdout(),
		ErrorHandler: interrors.NewContinueOnErrorHandler(nil),
	}
}

// Worker contends for a shared monitor, runs its task while holding it, and
// finishes. A worker runs at most once.
type Worker struct {
	id      int
	name    string
	state   int32 // atomic types.WorkerState
	monitor *monitor.Monitor
	task    Task

	errorHandler interrors.ErrorHandler
	clock        types.Clock

	// lifecycle
	started int32
	cancel  context.CancelFunc
	done    chan struct{}
	err     error // written before done is closed

	// statistics
	acquired    int32
	interrupted int32
	waitTime    int64 // nanoseconds
	holdTime    int64 // nanoseconds

	mu sync.Mutex
}

// NewWorker creates a worker bound to the shared monitor
func NewWorker(id int, m *monitor.Monitor, config *Config) *Worker {
	if config == nil {
		config = DefaultConfig()
	}

	name := config.Name
	if name == "" {
		name = fmt.Sprintf("Thread-%d", id)
	}

	clock := config.Clock
	if clock == nil {
		clock = types.NewRealClock()
	}

	task := config.Task
	if task == nil {
		task = NewHoldTask(name, config.Console, clock, config.HoldDuration)
	}

	return &Worker{
		id:           id,
		name:         name,
		state:        int32(types.WorkerStateCreated),
		monitor:      m,
		task:         task,
		errorHandler: config.ErrorHandler,
		clock:        clock,
		done:         make(chan struct{}),
	}
}

// ID returns the worker ordinal
func (w *Worker) ID() int {
	return w.id
}

// Name returns the worker name
func (w *Worker) Name() string {
	return w.name
}

// State returns the current worker state
func (w *Worker) State() types.WorkerState {
	return types.WorkerState(atomic.LoadInt32(&w.state))
}

func (w *Worker) setState(state types.WorkerState) {
	atomic.StoreInt32(&w.state, int32(state))
}

// Start runs the worker on its own goroutine. Cancelling ctx, or calling
// Interrupt, interrupts the worker.
func (w *Worker) Start(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&w.started, 0, 1) {
		return fmt.Errorf("worker %s: %w", w.name, types.ErrAlreadyStarted)
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()

	w.setState(types.WorkerStateStarted)

	go func() {
		defer close(w.done)
		defer cancel()
		w.err = w.Run(runCtx)
	}()

	return nil
}

// Interrupt cancels a started worker. It is a no-op before Start.
func (w *Worker) Interrupt() {
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Done returns a channel closed once the worker has finished
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Join waits for the worker to finish and returns whatever error its
// error handler let through.
func (w *Worker) Join() error {
	if atomic.LoadInt32(&w.started) == 0 {
		return fmt.Errorf("worker %s: %w", w.name, types.ErrNotStarted)
	}
	<-w.done
	return w.err
}

// JoinContext is Join bounded by ctx
func (w *Worker) JoinContext(ctx context.Context) error {
	if atomic.LoadInt32(&w.started) == 0 {
		return fmt.Errorf("worker %s: %w", w.name, types.ErrNotStarted)
	}
	select {
	case <-w.done:
		return w.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run is the worker body: wait for the monitor, run the task while holding
// it, release it. It blocks until the worker is finished.
func (w *Worker) Run(ctx context.Context) error {
	defer w.setState(types.WorkerStateFinished)

	w.setState(types.WorkerStateWaiting)
	waitStart := w.clock.Now()

	if err := w.monitor.Acquire(ctx, w.name); err != nil {
		atomic.StoreInt64(&w.waitTime, int64(w.clock.Since(waitStart)))
		return w.handleError(ctx, err, "acquire")
	}

	atomic.StoreInt64(&w.waitTime, int64(w.clock.Since(waitStart)))
	atomic.StoreInt32(&w.acquired, 1)
	w.setState(types.WorkerStateHolding)

	holdStart := w.clock.Now()
	taskErr := w.executeTask(ctx)
	atomic.StoreInt64(&w.holdTime, int64(w.clock.Since(holdStart)))

	releaseErr := w.monitor.Release(w.name)
	w.setState(types.WorkerStateReleased)

	if taskErr != nil {
		taskErr = w.handleError(ctx, taskErr, "hold")
	}
	return errors.Join(taskErr, releaseErr)
}

// executeTask executes the task with panic recovery support
func (w *Worker) executeTask(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			var buf [4096]byte
			n := runtime.Stack(buf[:], false)

			var cause error
			switch v := r.(type) {
			case error:
				cause = v
			default:
				cause = fmt.Errorf("panic: %v", v)
			}

			err = types.NewDemoError(w.name, cause).
				WithContext("stack_trace", string(buf[:n])).
				WithContext("worker_id", w.id)
		}
	}()

	return w.task.Execute(ctx)
}

// handleError passes err through the error handler
func (w *Worker) handleError(ctx context.Context, err error, operation string) error {
	if types.IsInterrupted(err) {
		atomic.StoreInt32(&w.interrupted, 1)
	}

	if w.errorHandler == nil {
		return err
	}

	errCtx := interrors.NewErrorContext(err, operation, w.name)
	errCtx.Timestamp = w.clock.Now()
	errCtx.Metadata["worker_id"] = w.id
	return w.errorHandler.HandleError(ctx, errCtx)
}

// Stats gets worker statistics
func (w *Worker) Stats() Stats {
	stats := Stats{
		ID:          w.id,
		Name:        w.name,
		State:       w.State(),
		Acquired:    atomic.LoadInt32(&w.acquired) == 1,
		Interrupted: atomic.LoadInt32(&w.interrupted) == 1,
		WaitTime:    time.Duration(atomic.LoadInt64(&w.waitTime)),
		HoldTime:    time.Duration(atomic.LoadInt64(&w.holdTime)),
	}

	select {
	case <-w.done:
		stats.Err = w.err
	default:
	}
	return stats
}

// Stats defines worker statistics
type Stats struct {
	ID          int
	Name        string
	State       types.WorkerState
	Acquired    bool
	Interrupted bool
	WaitTime    time.Duration
	HoldTime    time.Duration

	// Err is the error the worker surfaced, set once it has finished
	Err error
}

// IsFinished checks if the worker reached its terminal state
func (s Stats) IsFinished() bool {
	return s.State.IsTerminal()
}
