//go:build windows

package stderr

import (
	"os"
	"sync"
)

// Capture is a no-op on Windows, where audio output does not write to
// the console.
type Capture struct {
	lines chan string
	once  sync.Once
}

// Start returns a capture whose Lines channel closes on Close.
func Start() (*Capture, error) {
	return &Capture{lines: make(chan string)}, nil
}

// Lines yields nothing.
func (c *Capture) Lines() <-chan string { return c.lines }

// WriteOriginal writes msg to stderr.
func (c *Capture) WriteOriginal(msg string) {
	_, _ = os.Stderr.WriteString(msg)
}

// Close closes Lines.
func (c *Capture) Close() error {
	c.once.Do(func() { close(c.lines) })
	return nil
}
