// Package demo holds the runnable demonstration routines and the registry
// the entry point selects them from.
package demo

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jzx17/gomonitor/pkg/console"
	"github.com/jzx17/gomonitor/pkg/launcher"
	"github.com/jzx17/gomonitor/pkg/types"
)

// Names of the built-in demos
const (
	Print     = "print"
	Sleep     = "sleep"
	Threads   = "threads"
	Checked   = "checked"
	Unchecked = "unchecked"
)

// DefaultDemo is run when nothing else is selected
const DefaultDemo = Threads

// SleepDuration is how long the sleep demo sleeps
const SleepDuration = 500 * time.Millisecond

// Func is a demonstration routine
type Func func(ctx context.Context, env *Env) error

// Env carries what the routines print to and how the threads demo is set up
type Env struct {
	// Output receives demo lines (optional, defaults to stdout)
	Output io.Writer

	// Clock overrides the clock found in the context (optional)
	Clock types.Clock

	// Threads configures the threads demo (optional, defaults to launcher.DefaultConfig)
	Threads *launcher.Config

	console *console.Console
	once    sync.Once
}

// Console returns the line sink bound to Output
func (e *Env) Console() *console.Console {
	e.once.Do(func() {
		e.console = console.New(e.Output)
	})
	return e.console
}

func (e *Env) clock(ctx context.Context) types.Clock {
	if e.Clock != nil {
		return e.Clock
	}
	return types.ClockFromContext(ctx)
}

// Registry maps demo names to routines
type Registry struct {
	demos map[string]Func
	mu    sync.RWMutex
}

// NewRegistry creates a registry holding the built-in demos
func NewRegistry() *Registry {
	r := &Registry{demos: make(map[string]Func)}
	r.Register(Print, printSomething)
	r.Register(Sleep, sleepALittle)
	r.Register(Threads, spawnThreads)
	r.Register(Checked, throwChecked)
	r.Register(Unchecked, throwUnchecked)
	return r
}

// Register adds or replaces a demo
func (r *Registry) Register(name string, fn Func) error {
	if name == "" {
		return fmt.Errorf("demo name cannot be empty")
	}
	if fn == nil {
		return fmt.Errorf("demo %s has no function", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.demos[name] = fn
	return nil
}

// Get looks up a demo by name
func (r *Registry) Get(name string) (Func, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.demos[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownDemo, name)
	}
	return fn, nil
}

// Names lists the registered demos in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.demos))
	for name := range r.demos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run runs the named demo
func (r *Registry) Run(ctx context.Context, name string, env *Env) error {
	fn, err := r.Get(name)
	if err != nil {
		return err
	}
	if env == nil {
		env = &Env{}
	}
	return fn(ctx, env)
}
