package surface

import (
	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/playback"
)

// Audio is the control surface for audio items.
type Audio struct {
	*base
}

// NewAudio creates an audio surface over engine.
func NewAudio(engine playback.Service, opts Options) *Audio {
	return &Audio{base: newBase(engine, opts)}
}

func (a *Audio) Kind() media.Kind {
	return media.KindAudio
}

func (a *Audio) Preview() (Preview, bool) {
	item, ok := a.engine.CurrentItem()
	if !ok {
		return nil, false
	}
	p := AudioPreview{
		Item:    item,
		State:   a.engine.State(),
		Artwork: item.Artwork,
	}
	if c, ok := a.engine.CurrentChapter(); ok {
		p.Chapter = c.Title
	}
	return p, true
}

var _ Surface = (*Audio)(nil)
