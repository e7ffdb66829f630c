package playback

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSpeed is returned for playback speeds that are not positive.
	ErrInvalidSpeed = errors.New("playback speed must be positive")
	// ErrNoNextItem signals that the queue is exhausted under RepeatOff. It
	// is carried by Completed events, never returned from operations.
	ErrNoNextItem = errors.New("no next item")
	// ErrUnknownTrack is returned when selecting a track id that was not
	// resolved for the loaded item.
	ErrUnknownTrack = errors.New("unknown track")
	// ErrUnknownChapter is returned when seeking to a chapter id that was
	// not resolved for the loaded item.
	ErrUnknownChapter = errors.New("unknown chapter")
)

// RendererError wraps a failure reported by the renderer.
type RendererError struct {
	Op     string // "load", "play", "seek", ...
	Source string
	Err    error
}

func (e *RendererError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Source, e.Err)
}

func (e *RendererError) Unwrap() error {
	return e.Err
}
