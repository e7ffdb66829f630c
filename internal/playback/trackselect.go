package playback

import (
	"slices"

	"github.com/llehouerou/deck/internal/logger"
	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/tracks"
)

// SelectVideoTrack selects the video track with id.
func (e *Engine) SelectVideoTrack(id string) error {
	return e.selectTrack(media.TrackVideo, id)
}

// SelectAudioTrack selects the audio track with id.
func (e *Engine) SelectAudioTrack(id string) error {
	return e.selectTrack(media.TrackAudio, id)
}

// SelectSubtitleTrack selects the subtitle track with id; an empty id
// disables subtitles.
func (e *Engine) SelectSubtitleTrack(id string) error {
	return e.selectTrack(media.TrackSubtitle, id)
}

// selectTrack validates id against the resolved tracks and forwards the
// selection. Unknown ids are caller errors; renderer rejections surface
// through the state.
func (e *Engine) selectTrack(typ media.TrackType, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	item, ok := e.queue.Current()
	if e.closed || !ok {
		return nil
	}

	var track *media.Track
	switch {
	case id != "":
		t, found := e.tracks.Find(typ, id)
		if !found {
			return ErrUnknownTrack
		}
		track = &t
	case typ != media.TrackSubtitle:
		return ErrUnknownTrack
	}

	if err := tracks.Select(e.renderer, &e.tracks, typ, track); err != nil {
		e.commandLocked("select "+typ.String(), item, err)
		e.publishLocked()
		return nil
	}
	e.emitTracksLocked()
	return nil
}

// SeekToChapter seeks to the start of the chapter with id.
func (e *Engine) SeekToChapter(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := slices.IndexFunc(e.chapters, func(c media.Chapter) bool { return c.ID == id })
	if i < 0 {
		return ErrUnknownChapter
	}
	e.seekLocked(e.chapters[i].Start)
	return nil
}

// SeekToNextChapter seeks to the first chapter starting after the current
// position. It returns false when there is none.
func (e *Engine) SeekToNextChapter() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := tracks.NextChapter(e.chapters, e.position)
	if !ok {
		return false
	}
	e.seekLocked(c.Start)
	return true
}

// SeekToPreviousChapter seeks to the last chapter starting more than the
// chapter threshold before the current position. It returns false when
// there is none.
func (e *Engine) SeekToPreviousChapter() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := tracks.PreviousChapter(e.chapters, e.position, e.opts.chapterThreshold)
	if !ok {
		return false
	}
	e.seekLocked(c.Start)
	return true
}

// RefreshSubtitles re-discovers sidecar subtitles of the loaded item and
// merges them into its subtitle list, keeping the selection.
func (e *Engine) RefreshSubtitles() {
	e.mu.Lock()
	item, ok := e.queue.Current()
	gen := e.gen
	if e.closed || !ok || e.phase != PhaseReady {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	subs := e.resolver.DiscoverSubtitles(item)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || gen != e.gen {
		return
	}
	e.tracks = tracks.MergeSubtitles(e.tracks, subs)
	logger.Log.Debug().Str("item", item.ID).Int("subtitles", len(e.tracks.Subtitle)).Msg("subtitles refreshed")
	e.emitTracksLocked()
}

// watchLocked starts watching the loaded item's directory for subtitle
// sidecars.
func (e *Engine) watchLocked(item media.Item) {
	if !e.opts.watchSubtitles || item.Path() == "" {
		return
	}
	w, err := tracks.Watch(item.Path(), e.resolver.Extensions(), e.RefreshSubtitles)
	if err != nil {
		logger.Log.Debug().Err(err).Str("item", item.ID).Msg("subtitle watch unavailable")
		return
	}
	e.watcher = w
}

// stopWatchLocked detaches the watcher and closes it in the background:
// its callback takes the engine lock.
func (e *Engine) stopWatchLocked() {
	w := e.watcher
	if w == nil {
		return
	}
	e.watcher = nil
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		_ = w.Close()
	}()
}
