package player

import (
	"math"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/llehouerou/deck/internal/media"
)

// DefaultTickInterval is how often renderers report position while playing.
const DefaultTickInterval = 250 * time.Millisecond

const resampleQuality = 4

var (
	speakerMu          sync.Mutex
	speakerInitialized bool
	speakerSampleRate  beep.SampleRate
)

// initSpeaker initializes the shared output device on first use. The
// device keeps the sample rate of the first stream; later streams are
// resampled to it.
func initSpeaker(rate beep.SampleRate) (beep.SampleRate, error) {
	speakerMu.Lock()
	defer speakerMu.Unlock()
	if speakerInitialized {
		return speakerSampleRate, nil
	}
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		return 0, err
	}
	speakerInitialized = true
	speakerSampleRate = rate
	return rate, nil
}

// Beep is an audio-only Renderer playing local files through the system
// speaker.
type Beep struct {
	mu sync.Mutex

	source    string
	streamer  beep.StreamSeekCloser
	format    beep.Format
	baseRatio float64
	resampler *beep.Resampler
	ctrl      *beep.Ctrl
	volume    *effects.Volume

	level   float64
	speed   float64
	playing bool
	loads   int // Load calls so far
	closed  bool

	updates chan Update
	done    chan struct{}
}

// NewBeep creates an idle speaker renderer that reports position every
// tick while playing.
func NewBeep(tick time.Duration) *Beep {
	if tick <= 0 {
		tick = DefaultTickInterval
	}
	b := &Beep{
		level:   1.0,
		speed:   1.0,
		updates: make(chan Update, 16),
		done:    make(chan struct{}),
	}
	go b.tickLoop(tick)
	return b
}

func (b *Beep) Load(source string) error {
	b.mu.Lock()
	b.loads++
	load := b.loads
	b.mu.Unlock()

	path := strings.TrimPrefix(source, "file://")
	if strings.Contains(path, "://") {
		return ErrUnsupported
	}

	streamer, format, err := decodeFile(path)
	if err != nil {
		return err
	}
	outRate, err := initSpeaker(format.SampleRate)
	if err != nil {
		streamer.Close()
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if load != b.loads {
		streamer.Close()
		return nil
	}
	b.unloadLocked()

	b.source = source
	b.streamer = streamer
	b.format = format
	b.baseRatio = float64(format.SampleRate) / float64(outRate)
	b.resampler = beep.ResampleRatio(resampleQuality, b.baseRatio*b.speed, streamer)
	b.ctrl = &beep.Ctrl{Streamer: b.resampler, Paused: true}
	b.volume = &effects.Volume{Streamer: b.ctrl, Base: 2}
	b.applyVolumeLocked()
	b.playing = false

	// The callback runs with the speaker locked; hand off to a goroutine.
	speaker.Play(beep.Seq(b.volume, beep.Callback(func() {
		go b.finished(load)
	})))

	b.send(Update{Load: load, Duration: format.SampleRate.D(streamer.Len())})
	return nil
}

func (b *Beep) unloadLocked() {
	if b.streamer == nil {
		return
	}
	speaker.Clear()
	b.streamer.Close()
	b.streamer = nil
	b.resampler = nil
	b.ctrl = nil
	b.volume = nil
	b.playing = false
}

func (b *Beep) finished(load int) {
	b.mu.Lock()
	if load != b.loads || b.closed {
		b.mu.Unlock()
		return
	}
	b.playing = false
	d := b.durationLocked()
	b.mu.Unlock()

	b.sendReliable(Update{Load: load, Position: d, Duration: d, Ended: true})
}

func (b *Beep) Play() error {
	return b.setPaused(false)
}

func (b *Beep) Pause() error {
	return b.setPaused(true)
}

func (b *Beep) setPaused(paused bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctrl == nil {
		return nil
	}
	speaker.Lock()
	b.ctrl.Paused = paused
	speaker.Unlock()
	b.playing = !paused
	b.send(b.snapshotLocked())
	return nil
}

func (b *Beep) SeekTo(position time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.streamer == nil {
		return nil
	}
	n := b.format.SampleRate.N(position)
	n = min(max(n, 0), max(b.streamer.Len()-1, 0))

	speaker.Lock()
	err := b.streamer.Seek(n)
	speaker.Unlock()
	if err != nil {
		return err
	}
	b.send(b.snapshotLocked())
	return nil
}

func (b *Beep) SetSpeed(speed float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.speed = speed
	if b.resampler != nil {
		speaker.Lock()
		b.resampler.SetRatio(b.baseRatio * speed)
		speaker.Unlock()
	}
	return nil
}

func (b *Beep) SetVolume(level float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.level = min(max(level, 0), 1)
	if b.volume != nil {
		speaker.Lock()
		b.applyVolumeLocked()
		speaker.Unlock()
	}
	return nil
}

func (b *Beep) applyVolumeLocked() {
	b.volume.Volume = levelToVolume(b.level)
	b.volume.Silent = b.level <= 0
}

// levelToVolume converts a 0.0-1.0 level to beep's base-2 Volume.
// 1.0 -> 0, 0.5 -> -1, 0.25 -> -2, 0 -> -10.
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}

func (b *Beep) Position() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.positionLocked()
}

func (b *Beep) positionLocked() time.Duration {
	if b.streamer == nil {
		return 0
	}
	speaker.Lock()
	n := b.streamer.Position()
	speaker.Unlock()
	return b.format.SampleRate.D(n)
}

func (b *Beep) Duration() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.durationLocked()
}

func (b *Beep) durationLocked() time.Duration {
	if b.streamer == nil {
		return 0
	}
	return b.format.SampleRate.D(b.streamer.Len())
}

// Tracks reports the single audio stream of the loaded file.
func (b *Beep) Tracks() ([]media.Track, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.streamer == nil {
		return nil, nil
	}
	return []media.Track{{
		ID:       "1",
		Type:     media.TrackAudio,
		Language: media.UnknownLanguage,
		Codec:    strings.TrimPrefix(strings.ToLower(filepath.Ext(b.source)), "."),
		Selected: true,
	}}, nil
}

// Chapters is not supported by the speaker renderer; callers fall back to
// probing the file.
func (b *Beep) Chapters() ([]media.Chapter, error) {
	return nil, nil
}

func (b *Beep) SelectTrack(typ media.TrackType, track *media.Track) error {
	if typ == media.TrackAudio && track != nil && track.ID == "1" {
		return nil
	}
	return ErrUnsupported
}

func (b *Beep) Updates() <-chan Update {
	return b.updates
}

func (b *Beep) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.unloadLocked()
	close(b.done)
	return nil
}

func (b *Beep) tickLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			b.mu.Lock()
			if b.playing {
				b.send(b.snapshotLocked())
			}
			b.mu.Unlock()
		}
	}
}

func (b *Beep) snapshotLocked() Update {
	return Update{
		Load:     b.loads,
		Position: b.positionLocked(),
		Duration: b.durationLocked(),
		Playing:  b.playing,
	}
}

// send delivers a telemetry update, dropping it if the consumer is behind.
func (b *Beep) send(u Update) {
	select {
	case b.updates <- u:
	default:
	}
}

// sendReliable blocks until the update is consumed or the renderer closes.
func (b *Beep) sendReliable(u Update) {
	select {
	case b.updates <- u:
	case <-b.done:
	}
}

// Verify Beep implements Renderer at compile time.
var _ Renderer = (*Beep)(nil)
