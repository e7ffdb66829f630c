package playback

import (
	"context"
	"time"

	"github.com/llehouerou/deck/internal/logger"
)

// SetABLoopStart captures the current position as the loop start and
// drops any previous end.
func (e *Engine) SetABLoopStart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.phase != PhaseReady {
		return
	}
	e.sched.Cancel(catABLoop)
	e.ab = ABLoop{Start: e.position, StartSet: true}
}

// SetABLoopEnd captures the current position as the loop end and starts
// enforcing the loop. It returns false, leaving no active loop, when no
// start is set or the position is not after the start.
func (e *Engine) SetABLoopEnd() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.phase != PhaseReady || !e.ab.StartSet {
		return false
	}
	end := e.position
	if end <= e.ab.Start {
		logger.Log.Debug().Dur("start", e.ab.Start).Dur("end", end).Msg("rejected A-B loop end")
		e.sched.Cancel(catABLoop)
		e.ab.End = 0
		e.ab.Active = false
		return false
	}
	e.ab.End = end
	e.ab.Active = true
	e.sched.Every(catABLoop, e.opts.abLoopInterval, e.checkABLoop)
	return true
}

// ClearABLoop stops enforcing the loop and clears both bounds.
func (e *Engine) ClearABLoop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearABLoopLocked()
}

func (e *Engine) clearABLoopLocked() {
	e.sched.Cancel(catABLoop)
	e.ab = ABLoop{}
}

// ABLoop returns the loop region.
func (e *Engine) ABLoop() ABLoop {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ab
}

// checkABLoop polls the renderer and seeks back to the loop start once the
// position reaches the end.
func (e *Engine) checkABLoop(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ctx.Err() != nil || !e.ab.Active || e.phase != PhaseReady {
		return
	}
	if pos := e.renderer.Position(); pos < e.ab.End {
		return
	}
	logger.Log.Debug().Dur("start", e.ab.Start).Msg("A-B loop rewind")
	e.seekLocked(e.ab.Start)
}

// SetSleepTimer pauses playback after d, fading the volume out first. A
// new timer replaces the previous one; d <= 0 cancels it.
func (e *Engine) SetSleepTimer(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.cancelSleepLocked()
	if d <= 0 {
		return
	}
	logger.Log.Debug().Dur("after", d).Msg("sleep timer set")
	e.sched.After(catSleep, d, e.sleepFade)
}

// SleepTimerRemaining returns the time left before the fade starts, or 0
// when no timer is pending.
func (e *Engine) SleepTimerRemaining() time.Duration {
	return e.sched.Remaining(catSleep)
}

// SleepTimerActive reports whether a sleep timer or its fade is running.
func (e *Engine) SleepTimerActive() bool {
	return e.sched.Active(catSleep)
}

// cancelSleepLocked cancels a pending timer and restores the volume of a
// fade in progress.
func (e *Engine) cancelSleepLocked() {
	e.sched.Cancel(catSleep)
	if e.fading {
		e.fading = false
		e.setVolumeLocked(e.fadeFrom)
	}
}

// sleepFade ramps the volume linearly to zero, then pauses and resets the
// volume to full for the next session.
func (e *Engine) sleepFade(ctx context.Context) {
	e.mu.Lock()
	if ctx.Err() != nil {
		e.mu.Unlock()
		return
	}
	logger.Log.Debug().Msg("sleep timer fired")
	e.fading = true
	e.fadeFrom = e.volume
	from := e.volume
	step := e.opts.sleepFadeStep
	steps := max(int(e.opts.sleepFade/step), 1)
	e.mu.Unlock()

	ticker := time.NewTicker(step)
	defer ticker.Stop()
	for i := 1; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		e.mu.Lock()
		if ctx.Err() != nil {
			e.mu.Unlock()
			return
		}
		e.setVolumeLocked(from * float64(steps-i) / float64(steps))
		if i == steps {
			e.fading = false
			e.pauseLocked()
			e.setVolumeLocked(1.0)
		}
		e.mu.Unlock()
	}
}
