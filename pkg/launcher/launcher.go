// Package launcher runs the monitor contention demo: a fixed set of workers
// contending for one shared monitor, joined before returning.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	interrors "github.com/jzx17/gomonitor/internal/errors"
	"github.com/jzx17/gomonitor/pkg/console"
	"github.com/jzx17/gomonitor/pkg/monitor"
	"github.com/jzx17/gomonitor/pkg/types"
	"github.com/jzx17/gomonitor/pkg/worker"
)

// DefaultWorkerCount is the number of workers launched unless configured otherwise
const DefaultWorkerCount = 4

// Config defines configuration for a launcher
type Config struct {
	// WorkerCount is the number of workers; zero launches nothing
	WorkerCount int

	// HoldDuration is how long each worker keeps the monitor
	HoldDuration time.Duration

	// Clock for time operations (optional, defaults to real clock)
	Clock types.Clock

	// Output receives the demo lines (optional, defaults to stdout)
	Output io.Writer

	// Policy decides what happens to a worker interruption.
	// ContinueOnError swallows it; this is a demo policy, not a production one.
	Policy interrors.ErrorHandlerStrategy

	// Logger receives a line per swallowed interruption (optional, defaults to discard)
	Logger *log.Logger
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		WorkerCount:  DefaultWorkerCount,
		HoldDuration: worker.DefaultHoldDuration,
		Clock:        types.NewRealClock(),
		Policy:       interrors.ContinueOnErrorStrategy,
	}
}

// Report summarizes a finished run
type Report struct {
	// RunID uniquely identifies the run
	RunID string

	// Workers holds per-worker statistics in creation order
	Workers []worker.Stats

	// Monitor holds the shared monitor statistics
	Monitor monitor.Stats

	// Elapsed is the time from the first start to the last join
	Elapsed time.Duration
}

// Launcher owns the worker set and the shared monitor for one run
type Launcher struct {
	config       *Config
	console      *console.Console
	errorHandler interrors.ErrorHandler
	monitor      *monitor.Monitor

	running int32
	workers []*worker.Worker
	mu      sync.RWMutex
}

// New creates a launcher
func New(config *Config) (*Launcher, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if config.WorkerCount < 0 {
		return nil, fmt.Errorf("%w, got %d", types.ErrInvalidWorkerCount, config.WorkerCount)
	}
	if config.HoldDuration < 0 {
		return nil, fmt.Errorf("hold duration must not be negative, got %v", config.HoldDuration)
	}

	if config.Clock == nil {
		config.Clock = types.NewRealClock()
	}

	registry := interrors.NewHandlerRegistry(config.Logger)
	handler, err := registry.ForStrategy(config.Policy)
	if err != nil {
		return nil, err
	}

	return &Launcher{
		config:       config,
		console:      console.New(config.Output),
		errorHandler: handler,
		monitor:      monitor.New(),
	}, nil
}

// Run creates the workers, starts them all in creation order and joins them
// all in creation order. It returns once every worker has finished.
func (l *Launcher) Run(ctx context.Context) (*Report, error) {
	if !atomic.CompareAndSwapInt32(&l.running, 0, 1) {
		return nil, fmt.Errorf("launcher: %w", types.ErrAlreadyStarted)
	}
	defer atomic.StoreInt32(&l.running, 0)

	report := &Report{RunID: uuid.New().String()}
	if l.config.WorkerCount == 0 {
		return report, nil
	}

	workers := make([]*worker.Worker, l.config.WorkerCount)
	for i := range workers {
		w := worker.NewWorker(i, l.monitor, &worker.Config{
			HoldDuration: l.config.HoldDuration,
			Clock:        l.config.Clock,
			Console:      l.console,
			ErrorHandler: l.errorHandler,
		})
		workers[i] = w
		l.console.Printf("Starting thread: %s", w.Name())
	}

	l.mu.Lock()
	l.workers = workers
	l.mu.Unlock()

	start := l.config.Clock.Now()
	for _, w := range workers {
		if err := w.Start(ctx); err != nil {
			return nil, err
		}
	}

	var errs []error
	for _, w := range workers {
		if err := w.Join(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", w.Name(), err))
		}
	}

	report.Elapsed = l.config.Clock.Since(start)
	report.Monitor = l.monitor.Stats()
	report.Workers = make([]worker.Stats, len(workers))
	for i, w := range workers {
		report.Workers[i] = w.Stats()
	}

	return report, errors.Join(errs...)
}

// Interrupt interrupts one worker of the current run
func (l *Launcher) Interrupt(id int) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if id < 0 || id >= len(l.workers) {
		return fmt.Errorf("%w: %d", types.ErrUnknownWorker, id)
	}
	l.workers[id].Interrupt()
	return nil
}

// Workers returns statistics for the workers of the current or last run
func (l *Launcher) Workers() []worker.Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := make([]worker.Stats, len(l.workers))
	for i, w := range l.workers {
		stats[i] = w.Stats()
	}
	return stats
}

// Monitor returns the shared monitor
func (l *Launcher) Monitor() *monitor.Monitor {
	return l.monitor
}

// Run launches workerCount workers with default settings and waits for all of them
func Run(ctx context.Context, workerCount int) error {
	config := DefaultConfig()
	config.WorkerCount = workerCount

	l, err := New(config)
	if err != nil {
		return err
	}
	_, err = l.Run(ctx)
	return err
}
