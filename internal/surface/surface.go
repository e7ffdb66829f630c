// Package surface provides the audio and video control surfaces: thin
// adapters over the playback engine adding UI-local affordances such as
// auto-hiding controls, double-tap seeking, gesture volume and, for video,
// brightness, fullscreen and orientation.
//
// Surfaces never hold playback or queue state; every read and write goes
// through the engine.
package surface

import (
	"context"
	"sync"
	"time"

	"github.com/llehouerou/deck/internal/logger"
	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/playback"
	"github.com/llehouerou/deck/internal/schedule"
)

const (
	DefaultAutoHide       = 3 * time.Second
	DefaultDoubleTapSeek  = 10 * time.Second
	DefaultVolumeStep     = 0.05
	DefaultBrightnessStep = 0.1

	catAutoHide schedule.Category = "auto-hide"
)

// Side is the half of the surface a double tap landed on.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

// Options tunes a surface. Zero fields take the defaults.
type Options struct {
	AutoHide       time.Duration
	DoubleTapSeek  time.Duration
	VolumeStep     float64
	BrightnessStep float64
}

func (o Options) withDefaults() Options {
	if o.AutoHide <= 0 {
		o.AutoHide = DefaultAutoHide
	}
	if o.DoubleTapSeek <= 0 {
		o.DoubleTapSeek = DefaultDoubleTapSeek
	}
	if o.VolumeStep <= 0 {
		o.VolumeStep = DefaultVolumeStep
	}
	if o.BrightnessStep <= 0 {
		o.BrightnessStep = DefaultBrightnessStep
	}
	return o
}

// Surface is the control surface of one media kind.
type Surface interface {
	Kind() media.Kind
	Engine() playback.Service

	// Interact shows the controls and re-arms the auto-hide timer.
	Interact()
	ControlsVisible() bool
	TogglePlayback()
	DoubleTap(side Side)
	// VolumeGesture changes the volume by delta (a fraction of full scale).
	VolumeGesture(delta float64)
	VolumeUp()
	VolumeDown()

	// Preview describes the current item for mini and full player views.
	Preview() (Preview, bool)
	// Changes signals when surface-local state changed and the view
	// should redraw.
	Changes() <-chan struct{}
	Close() error
}

// New creates the surface for kind over engine.
func New(engine playback.Service, kind media.Kind, opts Options) Surface {
	if kind == media.KindVideo {
		return NewVideo(engine, opts)
	}
	return NewAudio(engine, opts)
}

// base holds the behaviour shared by both surfaces.
type base struct {
	engine playback.Service
	opts   Options
	sched  *schedule.Scheduler

	mu      sync.Mutex
	visible bool
	closed  bool

	changes chan struct{}
	sub     *playback.Subscription
	done    chan struct{}
	wg      sync.WaitGroup
}

func newBase(engine playback.Service, opts Options) *base {
	b := &base{
		engine:  engine,
		opts:    opts.withDefaults(),
		sched:   schedule.New(),
		visible: true,
		changes: make(chan struct{}, 1),
		sub:     engine.Subscribe(),
		done:    make(chan struct{}),
	}
	b.wg.Add(1)
	go b.watch()
	return b
}

func (b *base) Engine() playback.Service {
	return b.engine
}

func (b *base) Changes() <-chan struct{} {
	return b.changes
}

// watch follows play/pause transitions: pausing pins the controls,
// resuming arms the auto-hide timer.
func (b *base) watch() {
	defer b.wg.Done()
	for {
		select {
		case <-b.done:
			return
		case <-b.sub.Done:
			return
		case ev := <-b.sub.StateChanged:
			if ev.Previous.IsPlaying == ev.Current.IsPlaying {
				continue
			}
			b.mu.Lock()
			if ev.Current.IsPlaying {
				b.armLocked()
			} else {
				b.sched.Cancel(catAutoHide)
				b.showLocked()
			}
			b.mu.Unlock()
		}
	}
}

func (b *base) Interact() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.showLocked()
	if b.engine.State().IsPlaying {
		b.armLocked()
	} else {
		b.sched.Cancel(catAutoHide)
	}
}

func (b *base) ControlsVisible() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.visible
}

func (b *base) showLocked() {
	if !b.visible {
		b.visible = true
		b.notify()
	}
}

func (b *base) armLocked() {
	if b.closed {
		return
	}
	b.sched.After(catAutoHide, b.opts.AutoHide, b.hide)
}

func (b *base) hide(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ctx.Err() != nil || b.closed {
		return
	}
	if !b.engine.State().IsPlaying {
		return
	}
	if b.visible {
		logger.Log.Debug().Msg("auto-hiding controls")
		b.visible = false
		b.notify()
	}
}

func (b *base) notify() {
	select {
	case b.changes <- struct{}{}:
	default:
	}
}

func (b *base) TogglePlayback() {
	b.engine.TogglePlayback()
	b.Interact()
}

func (b *base) DoubleTap(side Side) {
	delta := b.opts.DoubleTapSeek
	if side == SideLeft {
		delta = -delta
	}
	b.engine.SeekBy(delta)
	b.Interact()
}

func (b *base) VolumeGesture(delta float64) {
	b.engine.SetVolume(b.engine.State().Volume + delta)
	b.Interact()
}

func (b *base) VolumeUp() {
	b.VolumeGesture(b.opts.VolumeStep)
}

func (b *base) VolumeDown() {
	b.VolumeGesture(-b.opts.VolumeStep)
}

// Close stops the auto-hide timer and detaches the engine subscription.
// The engine itself is not closed.
func (b *base) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.sched.CancelAll()
	close(b.done)
	b.mu.Unlock()

	b.engine.Unsubscribe(b.sub)

	b.sched.Wait()
	b.wg.Wait()
	return nil
}
