// internal/player/mock.go
package player

import (
	"sync"
	"time"

	"github.com/llehouerou/deck/internal/media"
)

// Selection records a SelectTrack call on the mock.
type Selection struct {
	Type  media.TrackType
	Track *media.Track
}

// Mock is a test double for Renderer. It records every command and lets
// tests push telemetry with Emit.
type Mock struct {
	mu sync.Mutex

	playing  bool
	position time.Duration
	duration time.Duration
	tracks   []media.Track
	chapters []media.Chapter
	loadErr  error
	closed   bool

	loads       int
	loadCalls   []string
	seekCalls   []time.Duration
	speedCalls  []float64
	volumeCalls []float64
	selections  []Selection
	playCalls   int
	pauseCalls  int

	updates chan Update
}

// NewMock creates a new mock renderer for testing.
func NewMock() *Mock {
	return &Mock{
		updates: make(chan Update, 64),
	}
}

func (m *Mock) Load(source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadCalls = append(m.loadCalls, source)
	m.loads++
	if m.loadErr != nil {
		return m.loadErr
	}
	m.playing = false
	m.position = 0
	return nil
}

func (m *Mock) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playCalls++
	m.playing = true
	return nil
}

func (m *Mock) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseCalls++
	m.playing = false
	return nil
}

func (m *Mock) SeekTo(position time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, position)
	m.position = position
	return nil
}

func (m *Mock) SetSpeed(speed float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speedCalls = append(m.speedCalls, speed)
	return nil
}

func (m *Mock) SetVolume(level float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volumeCalls = append(m.volumeCalls, level)
	return nil
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) Tracks() ([]media.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]media.Track, len(m.tracks))
	copy(out, m.tracks)
	return out, nil
}

func (m *Mock) Chapters() ([]media.Chapter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]media.Chapter, len(m.chapters))
	copy(out, m.chapters)
	return out, nil
}

func (m *Mock) SelectTrack(typ media.TrackType, track *media.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selections = append(m.selections, Selection{Type: typ, Track: track})
	return nil
}

func (m *Mock) Updates() <-chan Update {
	return m.updates
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

// Emit pushes a telemetry update to the consumer. An update without a
// Load number is stamped with the latest Load call.
func (m *Mock) Emit(u Update) {
	m.mu.Lock()
	if u.Load == 0 {
		u.Load = m.loads
	}
	if u.Duration > 0 {
		m.duration = u.Duration
	}
	m.position = u.Position
	m.playing = u.Playing
	m.mu.Unlock()
	m.updates <- u
}

func (m *Mock) SetPosition(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = d
}

func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

func (m *Mock) SetTracks(tracks []media.Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks = tracks
}

func (m *Mock) SetChapters(chapters []media.Chapter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chapters = chapters
}

func (m *Mock) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *Mock) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *Mock) LoadCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.loadCalls...)
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

func (m *Mock) SpeedCalls() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.speedCalls...)
}

func (m *Mock) VolumeCalls() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.volumeCalls...)
}

func (m *Mock) Selections() []Selection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Selection(nil), m.selections...)
}

func (m *Mock) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls
}

func (m *Mock) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCalls
}

// Verify Mock implements Renderer at compile time.
var _ Renderer = (*Mock)(nil)
