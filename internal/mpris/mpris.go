//go:build linux

// Package mpris exposes the playback engine over the MPRIS D-Bus
// interface.
package mpris

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/deck/internal/logger"
	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/playback"
	"github.com/llehouerou/deck/internal/playlist"
)

const minRate = 0.25

// Opener turns a location handed over by OpenUri into queue items.
type Opener func(locators ...string) ([]media.Item, error)

// Adapter connects the playback service to MPRIS over D-Bus.
type Adapter struct {
	service playback.Service
	server  *server.Server
}

// New creates and starts a new MPRIS adapter. open may be nil, in which
// case OpenUri is refused.
func New(service playback.Service, open Opener) (*Adapter, error) {
	a := &Adapter{service: service}

	// Create adapters that delegate to the service
	rootAdapter := &rootAdapter{}
	playerAdapter := &playerAdapter{service: service, open: open}

	a.server = server.NewServer("deck", rootAdapter, playerAdapter)

	// Start the server in background
	go func() {
		if err := a.server.Listen(); err != nil {
			logger.Log.Warn().Err(err).Msg("mpris server stopped")
		}
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil
}

func (r *rootAdapter) Quit() error {
	return nil
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Deck", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file", "http", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{
		"audio/mpeg", "audio/flac", "audio/ogg", "audio/wav",
		"video/mp4", "video/x-matroska", "video/webm",
	}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and optional interfaces.
type playerAdapter struct {
	service playback.Service
	open    Opener
}

func (p *playerAdapter) Next() error {
	p.service.SkipToNext()
	return nil
}

func (p *playerAdapter) Previous() error {
	p.service.SkipToPrevious()
	return nil
}

func (p *playerAdapter) Pause() error {
	p.service.Pause()
	return nil
}

func (p *playerAdapter) PlayPause() error {
	p.service.TogglePlayback()
	return nil
}

func (p *playerAdapter) Stop() error {
	p.service.Stop()
	return nil
}

func (p *playerAdapter) Play() error {
	p.service.Play()
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	p.service.SeekBy(time.Duration(offset) * time.Microsecond)
	return nil
}

// SetPosition ignores requests for a track that is no longer current.
func (p *playerAdapter) SetPosition(trackID string, position types.Microseconds) error {
	item, ok := p.service.CurrentItem()
	if !ok || trackID != formatTrackID(item.ID) {
		return nil
	}
	p.service.SeekTo(time.Duration(position) * time.Microsecond)
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(uri string) error {
	if p.open == nil {
		return fmt.Errorf("open %s: not supported", uri)
	}
	items, err := p.open(strings.TrimPrefix(uri, "file://"))
	if err != nil {
		return err
	}
	return p.service.PlayQueue(items, 0)
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	return playbackStatus(p.service.State()), nil
}

func playbackStatus(s playback.PlaybackState) types.PlaybackStatus {
	switch {
	case !s.HasItem() || s.Phase == playback.PhaseIdle:
		return types.PlaybackStatusStopped
	case s.IsPlaying:
		return types.PlaybackStatusPlaying
	default:
		return types.PlaybackStatusPaused
	}
}

func (p *playerAdapter) Rate() (float64, error) {
	return p.service.State().Speed, nil
}

func (p *playerAdapter) SetRate(rate float64) error {
	if rate <= 0 {
		p.service.Pause()
		return nil
	}
	return p.service.SetPlaybackSpeed(max(rate, minRate))
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	item, ok := p.service.CurrentItem()
	if !ok {
		return types.Metadata{}, nil
	}

	length := p.service.State().Duration
	if length <= 0 {
		length = item.Duration
	}
	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(item.ID)),
		Length:  types.Microseconds(length.Microseconds()),
		Title:   item.Title,
		Album:   item.Album,
		ArtUrl:  artURL(item),
	}
	if item.Artist != "" {
		meta.Artist = []string{item.Artist}
	}

	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return p.service.State().Volume, nil
}

func (p *playerAdapter) SetVolume(volume float64) error {
	p.service.SetVolume(volume)
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return p.service.State().Position.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return minRate, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return playback.MaxSpeed, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return p.service.HasNext(), nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.service.State().HasItem(), nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.service.State().HasItem(), nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return p.service.State().HasItem(), nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return p.service.State().Duration > 0, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	switch p.service.State().RepeatMode {
	case playlist.RepeatOne:
		return types.LoopStatusTrack, nil
	case playlist.RepeatAll:
		return types.LoopStatusPlaylist, nil
	default:
		return types.LoopStatusNone, nil
	}
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	switch status {
	case types.LoopStatusNone:
		p.service.SetRepeatMode(playlist.RepeatOff)
	case types.LoopStatusTrack:
		p.service.SetRepeatMode(playlist.RepeatOne)
	case types.LoopStatusPlaylist:
		p.service.SetRepeatMode(playlist.RepeatAll)
	}
	return nil
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) Shuffle() (bool, error) {
	return p.service.State().Shuffle, nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	p.service.SetShuffle(shuffle)
	return nil
}

func formatTrackID(id string) string {
	h := fnv.New64a()
	h.Write([]byte(id))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
