package playback

import (
	"math"
	"time"

	"github.com/llehouerou/deck/internal/logger"
	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/playlist"
)

// PlayItem replaces the queue with a single item and starts playing it.
func (e *Engine) PlayItem(item media.Item) {
	_ = e.PlayQueue([]media.Item{item}, 0)
}

// PlayQueue replaces the queue with items and starts playing items[start].
// An out-of-range start returns playlist.ErrInvalidIndex and changes
// nothing. An empty list clears the queue.
func (e *Engine) PlayQueue(items []media.Item, start int) error {
	return e.setQueue(items, start, true, 0)
}

// RestoreQueue replaces the queue like PlayQueue but loads items[start]
// paused, resuming at position once the renderer is ready.
func (e *Engine) RestoreQueue(items []media.Item, start int, position time.Duration) error {
	return e.setQueue(items, start, false, position)
}

func (e *Engine) setQueue(items []media.Item, start int, autoplay bool, position time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	if len(items) > 0 && (start < 0 || start >= len(items)) {
		logger.Log.Warn().Int("start", start).Int("items", len(items)).Msg("rejected queue start index")
		return playlist.ErrInvalidIndex
	}
	from := e.currentRefLocked()
	e.leaveLocked()
	if err := e.queue.SetQueue(items, start); err != nil {
		return err
	}
	e.undo.Reset()
	e.undo.Push(e.queue.Items())
	e.emitQueueLocked()

	e.loadLocked(from, autoplay)
	if position > 0 && e.phase == PhaseLoading {
		e.pendingSeek = position
		e.hasPending = true
	}
	return nil
}

// Play resumes playback. It is a no-op when already playing. From Idle or
// Ended the current item is loaded again.
func (e *Engine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playLocked()
}

func (e *Engine) playLocked() {
	item, ok := e.queue.Current()
	if e.closed || !ok || e.playing {
		return
	}
	switch e.phase {
	case PhaseIdle, PhaseEnded:
		e.loadLocked(e.currentRefLocked(), true)
		return
	case PhaseError:
		return
	}
	if e.commandLocked("play", item, e.renderer.Play()) {
		e.playing = true
	}
	e.publishLocked()
}

// Pause pauses playback. It is a no-op when already paused.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pauseLocked()
}

func (e *Engine) pauseLocked() {
	item, ok := e.queue.Current()
	if e.closed || !ok || !e.playing {
		return
	}
	if e.commandLocked("pause", item, e.renderer.Pause()) {
		e.playing = false
	}
	e.publishLocked()
}

// TogglePlayback pauses when playing and plays otherwise.
func (e *Engine) TogglePlayback() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.playing {
		e.pauseLocked()
	} else {
		e.playLocked()
	}
}

// Stop pauses, rewinds to the start, cancels the sleep timer and clears
// the A-B loop. The queue is kept.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.pauseLocked()
	e.cancelSleepLocked()
	e.clearABLoopLocked()
	e.leaveLocked()
	e.seekLocked(0)
	e.publishLocked()
}

// SeekTo moves to position, clamped to [0, duration]. While the duration
// is unknown only negative positions are clamped.
func (e *Engine) SeekTo(position time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seekLocked(position)
}

// SeekBy moves relative to the current position.
func (e *Engine) SeekBy(delta time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seekLocked(e.position + delta)
}

func (e *Engine) clampLocked(position time.Duration) time.Duration {
	position = max(position, 0)
	if e.duration > 0 {
		position = min(position, e.duration)
	}
	return position
}

func (e *Engine) seekLocked(position time.Duration) {
	item, ok := e.queue.Current()
	if e.closed || !ok {
		return
	}
	position = e.clampLocked(position)
	switch e.phase {
	case PhaseLoading:
		e.pendingSeek = position
		e.hasPending = true
	case PhaseReady:
		if !e.commandLocked("seek", item, e.renderer.SeekTo(position)) {
			e.publishLocked()
			return
		}
	default:
		return
	}
	e.position = position
	e.publishLocked()
}

// wantsPlayLocked reports whether a navigation should autoplay the item
// it lands on.
func (e *Engine) wantsPlayLocked() bool {
	return e.playing || (e.phase != PhaseReady && e.phase != PhaseLoading)
}

// restartLocked plays the current item again from the start.
func (e *Engine) restartLocked() {
	if e.phase == PhaseReady {
		e.seekLocked(0)
		if !e.playing {
			e.playLocked()
		}
		return
	}
	if e.phase == PhaseLoading {
		e.hasPending = false
		return
	}
	e.loadLocked(e.currentRefLocked(), true)
}

// SkipToNext advances per the repeat and shuffle modes. When the queue is
// exhausted under RepeatOff the engine pauses and reports completion.
func (e *Engine) SkipToNext() {
	e.mu.Lock()
	defer e.mu.Unlock()
	item, ok := e.queue.Current()
	if e.closed || !ok {
		return
	}
	from := e.currentRefLocked()
	idx, ok := e.queue.Next()
	if !ok {
		e.pauseLocked()
		e.emitCompletedLocked(item)
		e.publishLocked()
		return
	}
	if idx == from.index {
		e.restartLocked()
		return
	}
	autoplay := e.wantsPlayLocked()
	e.leaveLocked()
	e.loadLocked(from, autoplay)
}

// SkipToPrevious goes back one item when near the start of the current
// one and restarts it otherwise.
func (e *Engine) SkipToPrevious() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.queue.IsEmpty() {
		return
	}
	from := e.currentRefLocked()
	idx, ok := e.queue.Previous(e.position)
	if !ok {
		return
	}
	if idx == from.index {
		e.restartLocked()
		return
	}
	autoplay := e.wantsPlayLocked()
	e.leaveLocked()
	e.loadLocked(from, autoplay)
}

// JumpTo plays the item at index.
func (e *Engine) JumpTo(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	from := e.currentRefLocked()
	if index < 0 || index >= e.queue.Len() {
		logger.Log.Warn().Int("index", index).Msg("rejected jump index")
		return playlist.ErrInvalidIndex
	}
	e.leaveLocked()
	if err := e.queue.JumpTo(index); err != nil {
		return err
	}
	e.loadLocked(from, true)
	return nil
}

// SetRepeatMode sets the repeat mode.
func (e *Engine) SetRepeatMode(mode playlist.RepeatMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue.SetRepeatMode(mode)
	e.publishLocked()
}

// CycleRepeatMode steps Off -> All -> One -> Off and returns the new mode.
func (e *Engine) CycleRepeatMode() playlist.RepeatMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	var next playlist.RepeatMode
	switch e.queue.RepeatMode() {
	case playlist.RepeatOff:
		next = playlist.RepeatAll
	case playlist.RepeatAll:
		next = playlist.RepeatOne
	default:
		next = playlist.RepeatOff
	}
	e.queue.SetRepeatMode(next)
	e.publishLocked()
	return next
}

// SetShuffle enables or disables shuffle. The current item is unchanged.
func (e *Engine) SetShuffle(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.queue.Shuffle() == enabled {
		return
	}
	e.queue.SetShuffle(enabled)
	e.emitQueueLocked()
	e.publishLocked()
}

// ToggleShuffle flips shuffle.
func (e *Engine) ToggleShuffle() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue.SetShuffle(!e.queue.Shuffle())
	e.emitQueueLocked()
	e.publishLocked()
}

// SetPlaybackSpeed sets the speed multiplier. Speeds above MaxSpeed are
// clamped; non-positive, infinite and NaN speeds return ErrInvalidSpeed.
func (e *Engine) SetPlaybackSpeed(speed float64) error {
	if !validSpeed(speed) {
		return ErrInvalidSpeed
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speed = min(speed, MaxSpeed)
	if item, ok := e.queue.Current(); ok && (e.phase == PhaseLoading || e.phase == PhaseReady) {
		e.commandLocked("speed", item, e.renderer.SetSpeed(e.speed))
	}
	e.publishLocked()
	return nil
}

// SetVolume sets the volume level, clamped to [0, 1]. NaN keeps the
// current level.
func (e *Engine) SetVolume(level float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fading {
		e.cancelSleepLocked()
	}
	e.setVolumeLocked(level)
}

func (e *Engine) setVolumeLocked(level float64) {
	e.volume = clampVolume(level, e.volume)
	item, ok := e.queue.Current()
	if ok && (e.phase == PhaseLoading || e.phase == PhaseReady) {
		e.commandLocked("volume", item, e.renderer.SetVolume(e.volume))
	}
	e.publishLocked()
}

// ClearError dismisses the current error. An engine in PhaseError returns
// to PhaseIdle.
func (e *Engine) ClearError() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.err = nil
	if e.phase == PhaseError {
		e.phase = PhaseIdle
	}
	e.publishLocked()
}

// RetryPlayback reloads the failing item. Only one retry is allowed per
// failure; it returns false when the engine is not in PhaseError or the
// item was already retried.
func (e *Engine) RetryPlayback() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.phase != PhaseError || e.retried {
		return false
	}
	logger.Log.Info().Int("index", e.queue.CurrentIndex()).Msg("retrying playback")
	e.loadLocked(e.currentRefLocked(), true)
	e.retried = true
	return true
}

// SkipToNextOnError moves past the failing item, even under RepeatOne.
func (e *Engine) SkipToNextOnError() {
	e.mu.Lock()
	defer e.mu.Unlock()
	item, ok := e.queue.Current()
	if e.closed || !ok {
		return
	}
	from := e.currentRefLocked()
	if _, ok := e.queue.Skip(); !ok {
		e.err = nil
		e.phase = PhaseIdle
		e.emitCompletedLocked(item)
		e.publishLocked()
		return
	}
	e.loadLocked(from, true)
}

func validSpeed(speed float64) bool {
	return speed > 0 && !math.IsInf(speed, 1)
}

// clampVolume clamps level to [0, 1], returning fallback for NaN.
func clampVolume(level, fallback float64) float64 {
	if math.IsNaN(level) {
		return fallback
	}
	return min(max(level, 0), 1)
}
