package playback

import (
	"context"
	"time"

	"github.com/llehouerou/deck/internal/logger"
	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/tracks"
)

// loadLocked hands the current queue item to the renderer and enters
// PhaseLoading. from describes the item that was current before the queue
// cursor moved, for the TrackChange event.
func (e *Engine) loadLocked(from itemRef, autoplay bool) {
	item, ok := e.queue.Current()
	if !ok {
		e.unloadLocked()
		return
	}

	e.gen++
	e.phase = PhaseLoading
	e.playing = false
	e.position = 0
	e.duration = item.Duration
	e.err = nil
	e.retried = false
	e.hasPending = false
	e.tracks = tracks.Tracks{}
	e.chapters = nil
	e.clearABLoopLocked()
	e.stopWatchLocked()
	e.emitTrackLocked(from)

	logger.Log.Debug().Str("item", item.ID).Str("source", item.URI).Bool("autoplay", autoplay).Msg("loading item")
	e.loads++
	if err := e.renderer.Load(item.URI); err != nil {
		e.failLocked("load", item, err)
		return
	}
	e.recordPlayLocked(item)

	e.commandLocked("speed", item, e.renderer.SetSpeed(e.speed))
	e.commandLocked("volume", item, e.renderer.SetVolume(e.volume))
	if autoplay {
		if err := e.renderer.Play(); err != nil {
			e.failLocked("play", item, err)
			return
		}
		e.playing = true
	}
	e.publishLocked()
}

// unloadLocked returns to PhaseIdle with nothing loaded.
func (e *Engine) unloadLocked() {
	if e.playing {
		_ = e.renderer.Pause()
	}
	e.gen++
	e.phase = PhaseIdle
	e.playing = false
	e.position = 0
	e.duration = 0
	e.err = nil
	e.hasPending = false
	e.tracks = tracks.Tracks{}
	e.chapters = nil
	e.clearABLoopLocked()
	e.stopWatchLocked()
	e.publishLocked()
}

// readyLocked handles the first telemetry of a loaded item: applies a
// seek requested while loading and starts track/chapter resolution.
func (e *Engine) readyLocked(item media.Item) {
	e.phase = PhaseReady
	e.retried = false
	if e.hasPending {
		e.hasPending = false
		pos := e.clampLocked(e.pendingSeek)
		e.commandLocked("seek", item, e.renderer.SeekTo(pos))
		e.position = pos
	}

	gen := e.gen
	duration := e.duration
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.resolve(gen, item, duration)
	}()
}

// resolve queries tracks and chapters outside the engine lock and
// installs them if the item is still the loaded one.
func (e *Engine) resolve(gen int, item media.Item, duration time.Duration) {
	t := e.resolver.ResolveTracks(e.renderer, item)
	chapters := e.resolver.ResolveChapters(e.ctx, e.renderer, item, duration)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || gen != e.gen {
		return
	}
	e.tracks = t
	e.chapters = chapters
	if sub, ok := tracks.DefaultSubtitle(item.Kind, e.tracks); ok {
		if err := tracks.Select(e.renderer, &e.tracks, media.TrackSubtitle, &sub); err != nil {
			logger.Log.Debug().Err(err).Str("item", item.ID).Msg("default subtitle rejected")
		}
	}
	logger.Log.Debug().
		Str("item", item.ID).
		Int("video", len(e.tracks.Video)).
		Int("audio", len(e.tracks.Audio)).
		Int("subtitle", len(e.tracks.Subtitle)).
		Int("chapters", len(e.chapters)).
		Msg("tracks resolved")
	e.emitTracksLocked()
	e.watchLocked(item)
}

// endLocked handles natural completion: advance per the queue, or stop
// and report completion when the queue is exhausted.
func (e *Engine) endLocked(item media.Item) {
	e.phase = PhaseEnded
	e.playing = false
	e.recordPositionLocked(item, e.duration)

	from := e.currentRefLocked()
	if _, ok := e.queue.Next(); !ok {
		e.phase = PhaseIdle
		e.clearABLoopLocked()
		e.emitCompletedLocked(item)
		e.publishLocked()
		return
	}
	e.loadLocked(from, true)
}

// failLocked moves to PhaseError with a RendererError.
func (e *Engine) failLocked(op string, item media.Item, err error) {
	rerr := &RendererError{Op: op, Source: item.URI, Err: err}
	logger.Log.Error().Err(err).Str("op", op).Str("source", item.URI).Msg("renderer failure")
	e.phase = PhaseError
	e.playing = false
	e.err = rerr
	e.sched.Cancel(catABLoop)
	for _, sub := range e.subs {
		sub.sendError(ErrorEvent{Operation: op, Source: item.URI, Err: err})
	}
	e.publishLocked()
}

// commandLocked surfaces a rejected renderer command through the state
// and the Error channel without changing phase.
func (e *Engine) commandLocked(op string, item media.Item, err error) bool {
	if err == nil {
		return true
	}
	logger.Log.Warn().Err(err).Str("op", op).Str("source", item.URI).Msg("renderer rejected command")
	e.err = &RendererError{Op: op, Source: item.URI, Err: err}
	for _, sub := range e.subs {
		sub.sendError(ErrorEvent{Operation: op, Source: item.URI, Err: err})
	}
	return false
}

func (e *Engine) recordPlayLocked(item media.Item) {
	if e.history == nil || e.closed {
		return
	}
	h := e.history
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
		defer cancel()
		if err := h.RecordPlay(ctx, item, 0); err != nil {
			logger.Log.Warn().Err(err).Str("item", item.ID).Msg("history record failed")
		}
	}()
}

func (e *Engine) recordPositionLocked(item media.Item, position time.Duration) {
	pr, ok := e.history.(PositionRecorder)
	if !ok || e.closed {
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
		defer cancel()
		if err := pr.RecordPosition(ctx, item, position); err != nil {
			logger.Log.Warn().Err(err).Str("item", item.ID).Msg("history position failed")
		}
	}()
}

// leaveLocked records progress on the current item before the cursor
// moves away from it.
func (e *Engine) leaveLocked() {
	if e.phase != PhaseReady {
		return
	}
	if item, ok := e.queue.Current(); ok {
		e.recordPositionLocked(item, e.position)
	}
}
