package surface

import (
	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/playback"
)

// Preview is what mini and full player views render for the current
// item. It is either an AudioPreview or a VideoPreview.
type Preview interface {
	preview()
	Current() media.Item
	Playback() playback.PlaybackState
}

// AudioPreview describes an audio item.
type AudioPreview struct {
	Item    media.Item
	State   playback.PlaybackState
	Artwork string
	Chapter string
}

func (AudioPreview) preview() {}

func (p AudioPreview) Current() media.Item { return p.Item }
func (p AudioPreview) Playback() playback.PlaybackState { return p.State }

// VideoPreview describes a video item together with the surface-local
// display state.
type VideoPreview struct {
	Item        media.Item
	State       playback.PlaybackState
	Subtitle    *media.Track // nil when subtitles are off
	Chapter     string
	Fullscreen  bool
	Orientation Orientation
	Brightness  float64
}

func (VideoPreview) preview() {}

func (p VideoPreview) Current() media.Item { return p.Item }
func (p VideoPreview) Playback() playback.PlaybackState { return p.State }
