package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/llehouerou/deck/internal/catalog"
	"github.com/llehouerou/deck/internal/config"
	"github.com/llehouerou/deck/internal/logger"
	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/mpris"
	"github.com/llehouerou/deck/internal/notify"
	"github.com/llehouerou/deck/internal/playback"
	"github.com/llehouerou/deck/internal/player"
	"github.com/llehouerou/deck/internal/playlist"
	"github.com/llehouerou/deck/internal/state"
	"github.com/llehouerou/deck/internal/surface"
	"github.com/llehouerou/deck/internal/tracks"
)

// sessionOptions selects what a session loads and how.
type sessionOptions struct {
	Backend string // overrides the configured backend when set
	Resume  bool
	Start   int
	Shuffle bool
	Repeat  string
	History bool
	Notify  bool
}

// session owns the engine of one deck run and the collaborators wired
// around it.
type session struct {
	cfg     *config.Config
	catalog *catalog.Catalog
	store   *state.Manager // nil when history is disabled or unavailable
	engine  *playback.Engine
	mpris   *mpris.Adapter

	cancel       context.CancelFunc
	cancelNotify context.CancelFunc
	wg           sync.WaitGroup
}

// openSession builds the engine and loads the queue: the given locators
// when any, else the saved session when resume is set.
func openSession(cfg *config.Config, locators []string, opts sessionOptions) (*session, error) {
	s := &session{cfg: cfg, catalog: catalog.New()}

	var items []media.Item
	if len(locators) > 0 {
		var err error
		items, err = s.catalog.Items(locators...)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("no playable media in %s", strings.Join(locators, ", "))
		}
	}

	if opts.History || opts.Resume {
		store, err := state.Open()
		if err != nil {
			logger.Log.Warn().Err(err).Msg("state unavailable, history disabled")
		} else {
			s.store = store
		}
	}

	backendItems := items
	if len(items) == 0 && opts.Resume && s.store != nil {
		if q, err := s.store.GetQueue(); err == nil {
			backendItems = q.Items
		}
	}
	backend := opts.Backend
	if backend == "" {
		backend = cfg.Backend()
	}
	s.engine = newEngine(cfg, newRenderer(cfg, chooseBackend(backend, backendItems)), s.store)

	if err := s.load(items, opts); err != nil {
		s.Close()
		return nil, err
	}

	if s.store != nil {
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		s.wg.Go(func() { state.Sync(ctx, s.store, s.engine) })
	}

	if opts.Notify || cfg.Notify.Enabled {
		ctx, cancel := context.WithCancel(context.Background())
		s.cancelNotify = cancel
		s.wg.Go(func() { notify.Watch(ctx, notify.New(), s.engine) })
	}

	adapter, err := mpris.New(s.engine, s.catalog.Items)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("mpris unavailable")
	} else {
		s.mpris = adapter
	}
	return s, nil
}

func (s *session) load(items []media.Item, opts sessionOptions) error {
	if len(items) == 0 {
		if !opts.Resume || s.store == nil {
			return nil
		}
		restored, err := state.Restore(s.store, s.engine)
		if err != nil {
			return fmt.Errorf("restore session: %w", err)
		}
		if !restored {
			logger.Log.Info().Msg("no saved session to resume")
		}
	} else if err := s.engine.PlayQueue(items, opts.Start); err != nil {
		return fmt.Errorf("start index %d: %w", opts.Start, err)
	}

	if opts.Repeat != "" {
		mode, err := parseRepeatMode(opts.Repeat)
		if err != nil {
			return err
		}
		s.engine.SetRepeatMode(mode)
	}
	if opts.Shuffle {
		s.engine.SetShuffle(true)
	}
	return nil
}

// Kind returns the media kind of the current item, audio when the queue
// is empty.
func (s *session) Kind() media.Kind {
	if item, ok := s.engine.CurrentItem(); ok {
		return item.Kind
	}
	return media.KindAudio
}

// Surface creates the control surface for the current item.
func (s *session) Surface() surface.Surface {
	sc := s.cfg.GetSurfaceConfig()
	return surface.New(s.engine, s.Kind(), surface.Options{
		AutoHide:       sc.AutoHide,
		DoubleTapSeek:  sc.DoubleTapSeek,
		VolumeStep:     sc.VolumeStep,
		BrightnessStep: sc.BrightnessStep,
	})
}

// Close tears the session down. The engine closes before the store so
// the final position is recorded.
func (s *session) Close() error {
	var errs []error
	if s.mpris != nil {
		errs = append(errs, s.mpris.Close())
	}
	if s.engine != nil {
		errs = append(errs, s.engine.Close())
	}
	if s.cancel != nil {
		s.cancel()
	}
	if s.cancelNotify != nil {
		s.cancelNotify()
	}
	s.wg.Wait()
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	return errors.Join(errs...)
}

// chooseBackend resolves "auto": mpv whenever the queue holds video or
// remote streams, beep for local audio only.
func chooseBackend(backend string, items []media.Item) string {
	switch backend {
	case config.BackendBeep, config.BackendMPV:
		return backend
	}
	for _, it := range items {
		if it.Kind == media.KindVideo || it.Path() == "" {
			return config.BackendMPV
		}
	}
	return config.BackendBeep
}

func newRenderer(cfg *config.Config, backend string) player.Renderer {
	logger.Log.Debug().Str("backend", backend).Msg("renderer selected")
	if backend == config.BackendMPV {
		return player.NewMPV(player.MPVOptions{Binary: cfg.Renderer.MPVPath})
	}
	return player.NewBeep(0)
}

func newEngine(cfg *config.Config, r player.Renderer, store *state.Manager) *playback.Engine {
	pc := cfg.GetPlaybackConfig()

	resolverOpts := []tracks.Option{tracks.WithSubtitleExtensions(cfg.SubtitleExtensions())}
	if cfg.UseFFprobe() {
		resolverOpts = append(resolverOpts, tracks.WithProber(tracks.FFprobe{Path: cfg.Chapters.FFprobePath}))
	}

	opts := []playback.Option{
		playback.WithResolver(tracks.NewResolver(resolverOpts...)),
		playback.WithQueueOptions(playlist.WithRestartThreshold(pc.PreviousThreshold)),
		playback.WithChapterThreshold(pc.ChapterThreshold),
		playback.WithABLoopInterval(pc.ABLoopInterval),
		playback.WithSleepFade(pc.SleepFade, pc.SleepFadeStep),
		playback.WithSubtitleWatch(cfg.WatchSubtitles()),
		playback.WithInitialVolume(pc.Volume),
		playback.WithInitialSpeed(pc.Speed),
	}
	if store != nil {
		opts = append(opts, playback.WithHistory(store))
	}
	return playback.New(r, opts...)
}

func parseRepeatMode(s string) (playlist.RepeatMode, error) {
	mode, ok := playlist.ParseRepeatMode(s)
	if !ok {
		return playlist.RepeatOff, fmt.Errorf("unknown repeat mode %q (want off, all or one)", s)
	}
	return mode, nil
}
