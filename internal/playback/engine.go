// Package playback owns what is playing, what plays next and in which
// order. The Engine drives a single renderer, layers shuffle, repeat,
// A-B looping, the sleep timer and track/chapter navigation on top of it,
// and publishes every change as an atomic PlaybackState snapshot.
package playback

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/llehouerou/deck/internal/logger"
	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/player"
	"github.com/llehouerou/deck/internal/playlist"
	"github.com/llehouerou/deck/internal/schedule"
	"github.com/llehouerou/deck/internal/tracks"
)

// Timer categories. Starting a timer cancels the previous one of the same
// category.
const (
	catABLoop schedule.Category = "ab-loop"
	catSleep  schedule.Category = "sleep-fade"
)

const (
	DefaultABLoopInterval = 500 * time.Millisecond
	DefaultSleepFade      = 2 * time.Second
	DefaultSleepFadeStep  = 100 * time.Millisecond
	MaxSpeed              = 4.0

	historyTimeout = 5 * time.Second
	undoDepth      = 50
)

// History is notified when an item starts playing. Calls are made from
// their own goroutine; failures are logged and never affect playback.
type History interface {
	RecordPlay(ctx context.Context, item media.Item, position time.Duration) error
}

// PositionRecorder is implemented by histories that also store how far an
// item got when it stopped being current.
type PositionRecorder interface {
	RecordPosition(ctx context.Context, item media.Item, position time.Duration) error
}

type options struct {
	history          History
	resolver         *tracks.Resolver
	queueOpts        []playlist.Option
	chapterThreshold time.Duration
	abLoopInterval   time.Duration
	sleepFade        time.Duration
	sleepFadeStep    time.Duration
	watchSubtitles   bool
	volume           float64
	speed            float64
}

// Option configures an Engine.
type Option func(*options)

// WithHistory sets the collaborator notified of plays.
func WithHistory(h History) Option {
	return func(o *options) { o.history = h }
}

// WithResolver sets the track and chapter resolver.
func WithResolver(r *tracks.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithQueueOptions configures the underlying queue (randomness source,
// previous-restart threshold).
func WithQueueOptions(opts ...playlist.Option) Option {
	return func(o *options) { o.queueOpts = append(o.queueOpts, opts...) }
}

// WithChapterThreshold sets how far past a chapter start "previous
// chapter" skips to the chapter before.
func WithChapterThreshold(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.chapterThreshold = d
		}
	}
}

// WithABLoopInterval sets how often an active A-B loop checks the position.
func WithABLoopInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.abLoopInterval = d
		}
	}
}

// WithSleepFade sets the sleep timer fade window and step.
func WithSleepFade(window, step time.Duration) Option {
	return func(o *options) {
		if window > 0 && step > 0 {
			o.sleepFade = window
			o.sleepFadeStep = step
		}
	}
}

// WithSubtitleWatch re-discovers subtitle sidecars when files appear next
// to the loaded item.
func WithSubtitleWatch(enabled bool) Option {
	return func(o *options) { o.watchSubtitles = enabled }
}

// WithInitialVolume sets the starting volume level.
func WithInitialVolume(level float64) Option {
	return func(o *options) { o.volume = clampVolume(level, o.volume) }
}

// WithInitialSpeed sets the starting playback speed.
func WithInitialSpeed(speed float64) Option {
	return func(o *options) {
		if validSpeed(speed) {
			o.speed = min(speed, MaxSpeed)
		}
	}
}

type itemRef struct {
	item  *media.Item
	index int
}

// ABLoop is the A-B loop region of the loaded item.
type ABLoop struct {
	Start    time.Duration
	End      time.Duration
	StartSet bool
	Active   bool // both bounds set and the loop is being enforced
}

// Engine is the single authority over transport commands. All methods are
// safe for concurrent use; mutations are serialized and renderer telemetry
// is applied under the same lock.
type Engine struct {
	mu sync.Mutex

	renderer player.Renderer
	queue    *playlist.Queue
	undo     *playlist.QueueHistory
	resolver *tracks.Resolver
	history  History
	sched    *schedule.Scheduler
	opts     options

	phase       Phase
	playing     bool
	position    time.Duration
	duration    time.Duration
	speed       float64
	volume      float64
	err         error
	gen         int
	loads       int // renderer Load calls; telemetry from older loads is dropped
	retried     bool
	pendingSeek time.Duration
	hasPending  bool

	tracks   tracks.Tracks
	chapters []media.Chapter
	watcher  *tracks.Watcher

	ab       ABLoop
	fading   bool
	fadeFrom float64

	last   PlaybackState
	subs   []*Subscription
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	wg     sync.WaitGroup
}

// New creates an engine driving r. The engine starts consuming renderer
// telemetry immediately; call Close to release it.
func New(r player.Renderer, opts ...Option) *Engine {
	o := options{
		chapterThreshold: tracks.DefaultChapterThreshold,
		abLoopInterval:   DefaultABLoopInterval,
		sleepFade:        DefaultSleepFade,
		sleepFadeStep:    DefaultSleepFadeStep,
		volume:           1.0,
		speed:            1.0,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.resolver == nil {
		o.resolver = tracks.NewResolver()
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		renderer: r,
		queue:    playlist.NewQueue(o.queueOpts...),
		undo:     playlist.NewQueueHistory(undoDepth),
		resolver: o.resolver,
		history:  o.history,
		sched:    schedule.New(),
		opts:     o,
		speed:    o.speed,
		volume:   o.volume,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	e.last = e.snapshotLocked()

	e.wg.Add(1)
	go e.run()
	return e
}

// Subscribe creates a new event subscription. Its Done channel is closed
// when the engine closes.
func (e *Engine) Subscribe() *Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()
	sub := newSubscription()
	if e.closed {
		sub.close()
		return sub
	}
	e.subs = append(e.subs, sub)
	return sub
}

// Unsubscribe detaches sub and closes its Done channel. Unknown or
// already detached subscriptions are ignored.
func (e *Engine) Unsubscribe(sub *Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := slices.Index(e.subs, sub)
	if i < 0 {
		return
	}
	e.subs = slices.Delete(e.subs, i, i+1)
	sub.close()
}

// State returns the current snapshot.
func (e *Engine) State() PlaybackState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// CurrentItem returns the item under the queue cursor.
func (e *Engine) CurrentItem() (media.Item, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Current()
}

// Queue returns a copy of the queue items in canonical order.
func (e *Engine) Queue() []media.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Items()
}

// ShuffledIndices returns the shuffle permutation, or nil when shuffle is
// off.
func (e *Engine) ShuffledIndices() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.ShuffledIndices()
}

// HasNext reports whether skipping forward would land on an item, taking
// the repeat and shuffle modes into account.
func (e *Engine) HasNext() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.HasNext()
}

// Tracks returns the resolved tracks of the loaded item.
func (e *Engine) Tracks() tracks.Tracks {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracks.Clone()
}

// Chapters returns the resolved chapters of the loaded item.
func (e *Engine) Chapters() []media.Chapter {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.chapters)
}

// CurrentChapter returns the chapter containing the current position.
func (e *Engine) CurrentChapter() (media.Chapter, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return tracks.CurrentChapter(e.chapters, e.position)
}

// Close cancels every timer, closes subscriptions and then releases the
// renderer.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	if item, ok := e.queue.Current(); ok && e.phase == PhaseReady {
		e.recordPositionLocked(item, e.position)
	}
	e.closed = true
	e.sched.CancelAll()
	watcher := e.watcher
	e.watcher = nil
	e.cancel()
	close(e.done)
	e.mu.Unlock()

	if watcher != nil {
		_ = watcher.Close()
	}
	e.sched.Wait()
	e.wg.Wait()

	e.mu.Lock()
	for _, sub := range e.subs {
		sub.close()
	}
	e.subs = nil
	e.mu.Unlock()

	return e.renderer.Close()
}

func (e *Engine) run() {
	defer e.wg.Done()
	updates := e.renderer.Updates()
	for {
		select {
		case <-e.done:
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			e.handleUpdate(u)
		}
	}
}

// handleUpdate applies renderer telemetry as one state transition.
func (e *Engine) handleUpdate(u player.Update) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || u.Load != e.loads {
		return
	}
	item, ok := e.queue.Current()
	if !ok {
		return
	}

	if u.Err != nil {
		if e.phase != PhaseError && e.phase != PhaseIdle {
			e.failLocked("render", item, u.Err)
		}
		return
	}
	if e.phase != PhaseLoading && e.phase != PhaseReady {
		return
	}

	if u.Duration > 0 {
		e.duration = u.Duration
	}
	e.position = max(u.Position, 0)

	if e.phase == PhaseLoading {
		if u.Duration > 0 || u.Position > 0 || u.Ended {
			e.readyLocked(item)
		}
	} else {
		e.playing = u.Playing
	}

	if u.Ended {
		e.endLocked(item)
		return
	}
	e.publishLocked()
}

func (e *Engine) snapshotLocked() PlaybackState {
	return PlaybackState{
		Phase:        e.phase,
		IsPlaying:    e.playing,
		Position:     e.position,
		Duration:     e.duration,
		Speed:        e.speed,
		Volume:       e.volume,
		RepeatMode:   e.queue.RepeatMode(),
		Shuffle:      e.queue.Shuffle(),
		CurrentIndex: e.queue.CurrentIndex(),
		TotalItems:   e.queue.Len(),
		Err:          e.err,
	}
}

// publishLocked emits a StateChange when the snapshot differs from the
// last one published.
func (e *Engine) publishLocked() {
	s := e.snapshotLocked()
	prev := e.last
	if s == prev {
		return
	}
	e.last = s
	for _, sub := range e.subs {
		sub.sendState(StateChange{Previous: prev, Current: s})
	}
}

func (e *Engine) emitTrackLocked(from itemRef) {
	tc := TrackChange{Previous: from.item, PreviousIndex: from.index, Index: e.queue.CurrentIndex()}
	if item, ok := e.queue.Current(); ok {
		tc.Current = &item
	}
	for _, sub := range e.subs {
		sub.sendTrack(tc)
	}
}

func (e *Engine) emitQueueLocked() {
	for _, sub := range e.subs {
		sub.sendQueue(QueueChange{Items: e.queue.Items(), Index: e.queue.CurrentIndex()})
	}
}

func (e *Engine) emitTracksLocked() {
	for _, sub := range e.subs {
		sub.sendTracks(TracksChange{Tracks: e.tracks.Clone(), Chapters: slices.Clone(e.chapters)})
	}
}

func (e *Engine) emitCompletedLocked(item media.Item) {
	logger.Log.Debug().Str("item", item.ID).Msg("queue completed")
	for _, sub := range e.subs {
		sub.sendCompleted(Completed{Item: item, Reason: ErrNoNextItem})
	}
}

func (e *Engine) currentRefLocked() itemRef {
	item, ok := e.queue.Current()
	if !ok {
		return itemRef{index: -1}
	}
	return itemRef{item: &item, index: e.queue.CurrentIndex()}
}
