// Package console provides a goroutine-safe, line-oriented output sink
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Console writes whole lines to an underlying writer.
// Concurrent callers never see their lines interleaved.
type Console struct {
	w  io.Writer
	mu sync.Mutex
}

// New creates a console writing to w; nil means stdout
func New(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w}
}

// Stdout returns a console writing to standard output
func Stdout() *Console {
	return New(os.Stdout)
}

// Println writes a single line
func (c *Console) Println(line string) error {
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := io.WriteString(c.w, line)
	return err
}

// Printf formats and writes a single line
func (c *Console) Printf(format string, args ...interface{}) error {
	return c.Println(fmt.Sprintf(format, args...))
}
