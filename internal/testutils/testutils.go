// Package testutils provides simplified testing utilities and helper functions
package testutils

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jzx17/gomonitor/pkg/types"
)

// TestContext returns a context bounded by timeout and cancelled at test cleanup
func TestContext(t testing.TB, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// Line is a captured output line with the clock time it was written at
type Line struct {
	Text string
	At   time.Time
}

// CaptureWriter records every line written to it, timestamped by clock.
// It is safe for concurrent use.
type CaptureWriter struct {
	clock   types.Clock
	mu      sync.Mutex
	partial strings.Builder
	lines   []Line
}

// NewCaptureWriter creates a capture writer; a nil clock uses real time
func NewCaptureWriter(clock types.Clock) *CaptureWriter {
	if clock == nil {
		clock = types.NewRealClock()
	}
	return &CaptureWriter{clock: clock}
}

// Write implements io.Writer
func (c *CaptureWriter) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	for _, b := range p {
		if b == '\n' {
			c.lines = append(c.lines, Line{Text: c.partial.String(), At: now})
			c.partial.Reset()
			continue
		}
		c.partial.WriteByte(b)
	}
	return len(p), nil
}

// Lines returns a copy of the complete lines written so far
func (c *CaptureWriter) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]Line, len(c.lines))
	copy(lines, c.lines)
	return lines
}

// Texts returns the text of every complete line
func (c *CaptureWriter) Texts() []string {
	lines := c.Lines()
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text
	}
	return texts
}

// Matching returns the lines containing substr
func (c *CaptureWriter) Matching(substr string) []Line {
	var out []Line
	for _, l := range c.Lines() {
		if strings.Contains(l.Text, substr) {
			out = append(out, l)
		}
	}
	return out
}
