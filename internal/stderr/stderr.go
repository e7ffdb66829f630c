//go:build !windows

// Package stderr redirects file descriptor 2 so that output written by C
// audio libraries does not land on top of the terminal UI.
package stderr

import (
	"bufio"
	"os"
	"strings"
	"sync"
	"syscall"
)

// Capture holds a redirected stderr until Close restores it.
type Capture struct {
	orig  int
	r, w  *os.File
	lines chan string
	once  sync.Once
}

// Start redirects fd 2 into a pipe. Lines written there are delivered on
// Lines; when the buffer is full they are dropped.
func Start() (*Capture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	orig, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}
	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	c := &Capture{orig: orig, r: r, w: w, lines: make(chan string, 100)}
	go c.read()
	return c, nil
}

func (c *Capture) read() {
	defer close(c.lines)
	defer c.r.Close()
	scanner := bufio.NewScanner(c.r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		select {
		case c.lines <- line:
		default:
		}
	}
}

// Lines yields captured lines. It is closed after Close.
func (c *Capture) Lines() <-chan string {
	return c.lines
}

// WriteOriginal writes msg to the terminal's stderr, bypassing capture.
func (c *Capture) WriteOriginal(msg string) {
	_, _ = syscall.Write(c.orig, []byte(msg))
}

// Close restores fd 2. It is safe to call more than once.
func (c *Capture) Close() error {
	var err error
	c.once.Do(func() {
		err = syscall.Dup2(c.orig, int(os.Stderr.Fd()))
		_ = syscall.Close(c.orig)
		c.w.Close()
	})
	return err
}
