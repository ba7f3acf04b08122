package launcher

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	interrors "github.com/jzx17/gomonitor/internal/errors"
	"github.com/jzx17/gomonitor/internal/testutils"
	"github.com/jzx17/gomonitor/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owningSuffix = "Owning the monitor, before sleep"

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		config      *Config
		expectError bool
	}{
		{
			name:   "nil config should use default",
			config: nil,
		},
		{
			name:   "zero workers",
			config: &Config{WorkerCount: 0},
		},
		{
			name:        "negative workers should error",
			config:      &Config{WorkerCount: -1},
			expectError: true,
		},
		{
			name:        "negative hold should error",
			config:      &Config{WorkerCount: 1, HoldDuration: -time.Second},
			expectError: true,
		},
		{
			name:   "fail fast policy",
			config: &Config{WorkerCount: 2, Policy: interrors.FailFastStrategy},
		},
		{
			name:        "unknown policy should error",
			config:      &Config{WorkerCount: 2, Policy: interrors.ErrorHandlerStrategy(9)},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.config)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, l)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, l)
			assert.NotNil(t, l.Monitor())
		})
	}

	_, err := New(&Config{WorkerCount: -3})
	assert.ErrorIs(t, err, types.ErrInvalidWorkerCount)
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, 4, config.WorkerCount)
	assert.Equal(t, 1000*time.Millisecond, config.HoldDuration)
	assert.Equal(t, interrors.ContinueOnErrorStrategy, config.Policy)
}

func TestLauncher_ZeroWorkers(t *testing.T) {
	capture := testutils.NewCaptureWriter(nil)
	l, err := New(&Config{WorkerCount: 0, HoldDuration: time.Hour, Output: capture})
	require.NoError(t, err)

	start := time.Now()
	report, err := l.Run(context.Background())
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.Empty(t, capture.Lines())
	assert.Empty(t, report.Workers)
	assert.Empty(t, l.Workers())
	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err)
}

func TestLauncher_FourWorkersSerializeInVirtualTime(t *testing.T) {
	mock := testutils.NewMockClock(t)
	clock := testutils.NewClockWrapper(mock)
	capture := testutils.NewCaptureWriter(clock)
	ctx := testutils.TestContext(t, 10*time.Second)

	l, err := New(&Config{
		WorkerCount:  4,
		HoldDuration: 1000 * time.Millisecond,
		Clock:        clock,
		Output:       capture,
	})
	require.NoError(t, err)

	type result struct {
		report *Report
		err    error
	}
	done := make(chan result, 1)
	go func() {
		report, err := l.Run(ctx)
		done <- result{report, err}
	}()

	for i := 0; i < 4; i++ {
		assert.Equal(t, time.Second, testutils.AdvanceToNextTimer(ctx, t, mock))
	}

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		t.Fatal("launcher did not return")
	}
	require.NoError(t, res.err)

	report := res.report
	assert.Equal(t, 4*time.Second, report.Elapsed)
	assert.Equal(t, 1, report.Monitor.MaxConcurrentHolders)
	assert.Equal(t, int64(4), report.Monitor.Acquisitions)
	assert.False(t, report.Monitor.Held)
	require.Len(t, report.Workers, 4)
	for i, ws := range report.Workers {
		assert.Equal(t, i, ws.ID)
		assert.Equal(t, types.WorkerStateFinished, ws.State)
		assert.True(t, ws.Acquired)
		assert.Equal(t, time.Second, ws.HoldTime)
	}

	texts := capture.Texts()
	require.Len(t, texts, 8)
	assert.Equal(t, []string{
		"Starting thread: Thread-0",
		"Starting thread: Thread-1",
		"Starting thread: Thread-2",
		"Starting thread: Thread-3",
	}, texts[:4])

	owning := capture.Matching(owningSuffix)
	require.Len(t, owning, 4)
	seen := make(map[string]bool)
	for i, line := range owning {
		seen[strings.TrimSpace(line.Text)] = true
		if i > 0 {
			assert.Equal(t, time.Second, line.At.Sub(owning[i-1].At),
				"each critical section starts only after the previous one ended")
		}
	}
	assert.Len(t, seen, 4, "every worker held the monitor exactly once")
}

func TestLauncher_RealClockSerializes(t *testing.T) {
	const hold = 30 * time.Millisecond
	capture := testutils.NewCaptureWriter(nil)

	l, err := New(&Config{WorkerCount: 4, HoldDuration: hold, Output: capture})
	require.NoError(t, err)

	start := time.Now()
	report, err := l.Run(context.Background())
	require.NoError(t, err)
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 4*hold)
	assert.GreaterOrEqual(t, report.Elapsed, 4*hold)
	assert.Equal(t, 1, report.Monitor.MaxConcurrentHolders)

	owning := capture.Matching(owningSuffix)
	require.Len(t, owning, 4)
	for i := 1; i < len(owning); i++ {
		assert.GreaterOrEqual(t, owning[i].At.Sub(owning[i-1].At), hold)
	}
}

func TestLauncher_SingleWorker(t *testing.T) {
	mock := testutils.NewMockClock(t)
	clock := testutils.NewClockWrapper(mock)
	capture := testutils.NewCaptureWriter(clock)
	ctx := testutils.TestContext(t, 10*time.Second)

	l, err := New(&Config{WorkerCount: 1, HoldDuration: time.Second, Clock: clock, Output: capture})
	require.NoError(t, err)

	done := make(chan *Report, 1)
	go func() {
		report, err := l.Run(ctx)
		assert.NoError(t, err)
		done <- report
	}()

	testutils.AdvanceToNextTimer(ctx, t, mock)
	report := <-done

	assert.Equal(t, time.Second, report.Elapsed)
	assert.Equal(t, int64(0), report.Monitor.Contended)
	assert.Equal(t, []string{
		"Starting thread: Thread-0",
		"    [Thread-0] " + owningSuffix,
	}, capture.Texts())
}

func TestLauncher_InterruptedWaiterIsSwallowed(t *testing.T) {
	var logBuf bytes.Buffer
	capture := testutils.NewCaptureWriter(nil)

	l, err := New(&Config{
		WorkerCount:  2,
		HoldDuration: 200 * time.Millisecond,
		Output:       capture,
		Logger:       log.New(&logBuf, "", 0),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, l.Interrupt(0), types.ErrUnknownWorker, "no run in progress")

	done := make(chan *Report, 1)
	go func() {
		report, err := l.Run(context.Background())
		assert.NoError(t, err, "swallowed interruption never reaches the launcher")
		done <- report
	}()

	// wait until one worker holds the monitor and the other waits for it
	var waiter int
	require.Eventually(t, func() bool {
		stats := l.Workers()
		holder, held := l.Monitor().Holder()
		if len(stats) != 2 || !held || l.Monitor().Stats().Contended != 1 {
			return false
		}
		for i, ws := range stats {
			if ws.Name != holder && ws.State == types.WorkerStateWaiting {
				waiter = i
				return true
			}
		}
		return false
	}, time.Second, time.Millisecond)

	require.NoError(t, l.Interrupt(waiter))
	assert.ErrorIs(t, l.Interrupt(5), types.ErrUnknownWorker)

	report := <-done
	assert.True(t, report.Workers[waiter].Interrupted)
	assert.False(t, report.Workers[waiter].Acquired)
	assert.True(t, report.Workers[1-waiter].Acquired)
	assert.Len(t, capture.Matching(owningSuffix), 1)
	assert.Contains(t, logBuf.String(), "ignored error in acquire")
}

func TestLauncher_FailFastSurfacesInterruption(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l, err := New(&Config{
		WorkerCount:  3,
		HoldDuration: time.Hour,
		Output:       testutils.NewCaptureWriter(nil),
		Policy:       interrors.FailFastStrategy,
	})
	require.NoError(t, err)

	report, err := l.Run(ctx)
	assert.ErrorIs(t, err, types.ErrInterrupted)
	require.NotNil(t, report)
	for _, ws := range report.Workers {
		assert.True(t, ws.Interrupted)
		assert.Equal(t, types.WorkerStateFinished, ws.State)
	}
}

func TestRun(t *testing.T) {
	assert.ErrorIs(t, Run(context.Background(), -1), types.ErrInvalidWorkerCount)
	assert.NoError(t, Run(context.Background(), 0))
}
