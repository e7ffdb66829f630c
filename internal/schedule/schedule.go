// Package schedule runs cancellable background tasks keyed by category.
// Starting a task cancels any running task of the same category; tasks of
// different categories are independent.
package schedule

import (
	"context"
	"sync"
	"time"
)

// Category names a family of tasks of which at most one runs at a time.
type Category string

type task struct {
	cancel   context.CancelFunc
	deadline time.Time // zero unless started with After
}

// Scheduler owns a set of running tasks.
type Scheduler struct {
	mu    sync.Mutex
	tasks map[Category]*task
	wg    sync.WaitGroup
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{tasks: make(map[Category]*task)}
}

// Go runs fn in its own goroutine as the task of category cat. The
// context is cancelled when the task is replaced or cancelled; fn must
// return promptly once it is.
func (s *Scheduler) Go(cat Category, fn func(ctx context.Context)) {
	s.start(cat, time.Time{}, fn)
}

// After runs fn once d has elapsed, unless the task is cancelled first.
func (s *Scheduler) After(cat Category, d time.Duration, fn func(ctx context.Context)) {
	s.start(cat, time.Now().Add(d), func(ctx context.Context) {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
			fn(ctx)
		}
	})
}

// Every runs fn at each interval tick until the task is cancelled.
func (s *Scheduler) Every(cat Category, interval time.Duration, fn func(ctx context.Context)) {
	s.start(cat, time.Time{}, func(ctx context.Context) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	})
}

func (s *Scheduler) start(cat Category, deadline time.Time, fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(cat)

	ctx, cancel := context.WithCancel(context.Background())
	t := &task{cancel: cancel, deadline: deadline}
	s.tasks[cat] = t

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			if s.tasks[cat] == t {
				delete(s.tasks, cat)
			}
			s.mu.Unlock()
			cancel()
		}()
		fn(ctx)
	}()
}

// Cancel cancels the running task of category cat, if any. It does not
// wait for the task goroutine to return.
func (s *Scheduler) Cancel(cat Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(cat)
}

func (s *Scheduler) cancelLocked(cat Category) {
	if t, ok := s.tasks[cat]; ok {
		t.cancel()
		delete(s.tasks, cat)
	}
}

// CancelAll cancels every running task.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for cat := range s.tasks {
		s.cancelLocked(cat)
	}
}

// Active reports whether a task of category cat is running.
func (s *Scheduler) Active(cat Category) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[cat]
	return ok
}

// Remaining returns the time left before an After task of category cat
// fires, or 0 if there is none.
func (s *Scheduler) Remaining(cat Category) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[cat]
	if !ok || t.deadline.IsZero() {
		return 0
	}
	return max(time.Until(t.deadline), 0)
}

// Wait blocks until every task goroutine has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
