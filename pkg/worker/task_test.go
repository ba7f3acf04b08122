package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jzx17/gomonitor/internal/testutils"
	"github.com/jzx17/gomonitor/pkg/console"
	"github.com/jzx17/gomonitor/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBasicTask(t *testing.T) {
	called := false
	task := NewBasicTask(func(ctx context.Context) error {
		called = true
		return nil
	})

	assert.NotEmpty(t, task.ID())
	assert.NoError(t, task.Execute(context.Background()))
	assert.True(t, called)

	other := NewBasicTask(func(ctx context.Context) error { return nil })
	assert.NotEqual(t, task.ID(), other.ID())
}

func TestBasicTask_Execute(t *testing.T) {
	tests := []struct {
		name        string
		fn          func(ctx context.Context) error
		expectError bool
	}{
		{
			name:        "successful execution",
			fn:          func(ctx context.Context) error { return nil },
			expectError: false,
		},
		{
			name:        "failed execution",
			fn:          func(ctx context.Context) error { return fmt.Errorf("task failed") },
			expectError: true,
		},
		{
			name:        "nil function",
			fn:          nil,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := NewBasicTaskWithID("custom", tt.fn)
			assert.Equal(t, "custom", task.ID())

			err := task.Execute(context.Background())
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHoldTask_Execute(t *testing.T) {
	mock := testutils.NewMockClock(t)
	clock := testutils.NewClockWrapper(mock)
	capture := testutils.NewCaptureWriter(clock)
	ctx := testutils.TestContext(t, 5*time.Second)

	task := NewHoldTask("Thread-7", console.New(capture), clock, time.Second)
	assert.Equal(t, "hold-Thread-7", task.ID())
	assert.Equal(t, time.Second, task.Duration())

	errCh := make(chan error, 1)
	go func() {
		errCh <- task.Execute(ctx)
	}()

	d := testutils.AdvanceToNextTimer(ctx, t, mock)
	assert.Equal(t, time.Second, d)

	require.NoError(t, <-errCh)
	assert.Equal(t, []string{"    [Thread-7] Owning the monitor, before sleep"}, capture.Texts())
}

func TestHoldTask_Interrupted(t *testing.T) {
	capture := testutils.NewCaptureWriter(nil)
	task := NewHoldTask("Thread-0", console.New(capture), nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := task.Execute(ctx)
	assert.ErrorIs(t, err, types.ErrInterrupted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, capture.Lines(), 1, "ownership line is printed before the sleep")
}
