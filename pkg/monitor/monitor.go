// Package monitor provides the exclusive lock that workers contend for
package monitor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jzx17/gomonitor/pkg/types"
)

// Monitor is a mutual-exclusion lock with a named holder.
//
// Unlike sync.Mutex, waiting for a Monitor can be interrupted through the
// caller's context. At most one holder exists at any instant.
type Monitor struct {
	sem chan struct{}

	// holder bookkeeping, guarded by mu
	mu     sync.Mutex
	holder string
	held   bool

	// statistics
	holders      int32 // atomic, current number of holders
	maxHolders   int32 // atomic, highest value holders ever reached
	acquisitions int64
	contended    int64
	interrupted  int64
}

// New creates an unheld monitor
func New() *Monitor {
	return &Monitor{
		sem: make(chan struct{}, 1),
	}
}

// Acquire blocks until the monitor is held by holder or ctx is done.
// An interrupted wait returns an error wrapping types.ErrInterrupted.
func (m *Monitor) Acquire(ctx context.Context, holder string) error {
	// uncontended fast path
	select {
	case m.sem <- struct{}{}:
		m.enter(holder)
		return nil
	default:
	}

	atomic.AddInt64(&m.contended, 1)

	select {
	case m.sem <- struct{}{}:
		m.enter(holder)
		return nil
	case <-ctx.Done():
		atomic.AddInt64(&m.interrupted, 1)
		return fmt.Errorf("%w while waiting for monitor: %w", types.ErrInterrupted, ctx.Err())
	}
}

// TryAcquire takes the monitor if it is free and reports whether it did
func (m *Monitor) TryAcquire(holder string) bool {
	select {
	case m.sem <- struct{}{}:
		m.enter(holder)
		return true
	default:
		return false
	}
}

// Release gives the monitor back. Only the current holder may release it.
func (m *Monitor) Release(holder string) error {
	m.mu.Lock()
	if !m.held || m.holder != holder {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", types.ErrNotOwner, holder)
	}
	m.held = false
	m.holder = ""
	atomic.AddInt32(&m.holders, -1)
	m.mu.Unlock()

	<-m.sem
	return nil
}

// Holder returns the current holder, if any
func (m *Monitor) Holder() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.holder, m.held
}

func (m *Monitor) enter(holder string) {
	current := atomic.AddInt32(&m.holders, 1)
	for {
		peak := atomic.LoadInt32(&m.maxHolders)
		if current <= peak || atomic.CompareAndSwapInt32(&m.maxHolders, peak, current) {
			break
		}
	}
	atomic.AddInt64(&m.acquisitions, 1)

	m.mu.Lock()
	m.holder = holder
	m.held = true
	m.mu.Unlock()
}

// Stats gets monitor statistics
func (m *Monitor) Stats() Stats {
	holder, held := m.Holder()
	return Stats{
		Holder:               holder,
		Held:                 held,
		Acquisitions:         atomic.LoadInt64(&m.acquisitions),
		Contended:            atomic.LoadInt64(&m.contended),
		Interrupted:          atomic.LoadInt64(&m.interrupted),
		MaxConcurrentHolders: int(atomic.LoadInt32(&m.maxHolders)),
	}
}

// Stats defines monitor statistics
type Stats struct {
	Holder string
	Held   bool

	// Acquisitions counts successful acquisitions
	Acquisitions int64
	// Contended counts acquisitions that found the monitor taken
	Contended int64
	// Interrupted counts waits abandoned through cancellation
	Interrupted int64
	// MaxConcurrentHolders is the highest number of simultaneous holders ever seen; always <= 1
	MaxConcurrentHolders int
}

// ContentionRate gets the share of acquisition attempts that had to wait
func (s Stats) ContentionRate() float64 {
	total := s.Acquisitions + s.Interrupted
	if total == 0 {
		return 0
	}
	return float64(s.Contended) / float64(total)
}
