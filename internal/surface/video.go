package surface

import (
	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/playback"
)

// Orientation is the requested screen orientation of the video surface.
type Orientation int

const (
	OrientationAuto Orientation = iota
	OrientationPortrait
	OrientationLandscape
)

// String returns the orientation name.
func (o Orientation) String() string {
	switch o {
	case OrientationPortrait:
		return "portrait"
	case OrientationLandscape:
		return "landscape"
	default:
		return "auto"
	}
}

// Video is the control surface for video items. Brightness, fullscreen
// and orientation are local to the surface and not part of the playback
// state.
type Video struct {
	*base

	brightness  float64
	fullscreen  bool
	orientation Orientation
}

// NewVideo creates a video surface over engine at full brightness.
func NewVideo(engine playback.Service, opts Options) *Video {
	return &Video{base: newBase(engine, opts), brightness: 1.0}
}

func (v *Video) Kind() media.Kind {
	return media.KindVideo
}

// Brightness returns the local brightness level in [0, 1].
func (v *Video) Brightness() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.brightness
}

// BrightnessGesture changes the brightness by delta, clamped to [0, 1].
func (v *Video) BrightnessGesture(delta float64) {
	v.mu.Lock()
	v.brightness = min(max(v.brightness+delta, 0), 1)
	v.notify()
	v.mu.Unlock()
	v.Interact()
}

func (v *Video) BrightnessUp() {
	v.BrightnessGesture(v.opts.BrightnessStep)
}

func (v *Video) BrightnessDown() {
	v.BrightnessGesture(-v.opts.BrightnessStep)
}

// Fullscreen reports whether fullscreen is requested.
func (v *Video) Fullscreen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fullscreen
}

func (v *Video) SetFullscreen(on bool) {
	v.mu.Lock()
	if v.fullscreen != on {
		v.fullscreen = on
		v.notify()
	}
	v.mu.Unlock()
	v.Interact()
}

func (v *Video) ToggleFullscreen() {
	v.SetFullscreen(!v.Fullscreen())
}

// Orientation returns the requested orientation.
func (v *Video) Orientation() Orientation {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.orientation
}

func (v *Video) SetOrientation(o Orientation) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.orientation != o {
		v.orientation = o
		v.notify()
	}
}

// ToggleSubtitles disables subtitles when one is shown, and otherwise
// selects the first available subtitle track.
func (v *Video) ToggleSubtitles() error {
	t := v.engine.Tracks()
	if _, ok := t.Selected(media.TrackSubtitle); ok {
		return v.engine.SelectSubtitleTrack("")
	}
	if len(t.Subtitle) == 0 {
		return nil
	}
	return v.engine.SelectSubtitleTrack(t.Subtitle[0].ID)
}

func (v *Video) Preview() (Preview, bool) {
	item, ok := v.engine.CurrentItem()
	if !ok {
		return nil, false
	}
	v.mu.Lock()
	p := VideoPreview{
		Item:        item,
		Fullscreen:  v.fullscreen,
		Orientation: v.orientation,
		Brightness:  v.brightness,
	}
	v.mu.Unlock()

	p.State = v.engine.State()
	if sub, ok := v.engine.Tracks().Selected(media.TrackSubtitle); ok {
		p.Subtitle = &sub
	}
	if c, ok := v.engine.CurrentChapter(); ok {
		p.Chapter = c.Title
	}
	return p, true
}

var _ Surface = (*Video)(nil)
