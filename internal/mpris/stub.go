//go:build !linux

package mpris

import (
	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/playback"
)

// Opener turns a location handed over by OpenUri into queue items.
type Opener func(locators ...string) ([]media.Item, error)

// Adapter is a no-op on non-Linux platforms.
type Adapter struct{}

// New returns a no-op adapter on non-Linux platforms.
func New(_ playback.Service, _ Opener) (*Adapter, error) {
	return &Adapter{}, nil
}

// Close is a no-op on non-Linux platforms.
func (a *Adapter) Close() error {
	return nil
}
