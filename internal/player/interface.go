// Package player defines the renderer capability the playback engine drives
// and the renderers that implement it.
package player

import (
	"errors"
	"time"

	"github.com/llehouerou/deck/internal/media"
)

// ErrUnsupported is returned by renderers for commands they cannot honour,
// such as selecting a video track on an audio-only renderer.
var ErrUnsupported = errors.New("unsupported by renderer")

// Update is a telemetry snapshot reported by a renderer.
type Update struct {
	// Load is the 1-based sequence number of the Load call the update
	// belongs to. Renderers count every Load call, failed ones included.
	Load int

	Position time.Duration
	Duration time.Duration
	Playing  bool
	Ended    bool  // natural end of the loaded source
	Err      error // load, decode or I/O failure
}

// Renderer decodes and plays a media source and reports telemetry on
// Updates, each stamped with the Load call it belongs to. Commands may complete asynchronously; failures that happen
// after a command returns are reported through Update.Err.
type Renderer interface {
	Load(source string) error
	Play() error
	Pause() error
	SeekTo(position time.Duration) error
	SetSpeed(speed float64) error
	SetVolume(level float64) error
	Position() time.Duration
	Duration() time.Duration

	Tracks() ([]media.Track, error)
	Chapters() ([]media.Chapter, error)
	// SelectTrack selects track within its list; a nil track disables the
	// list (only meaningful for subtitles).
	SelectTrack(typ media.TrackType, track *media.Track) error

	Updates() <-chan Update
	Close() error
}
