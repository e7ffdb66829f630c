// internal/playback/state.go
package playback

import (
	"time"

	"github.com/llehouerou/deck/internal/playlist"
)

// Phase is the engine's position in the load/play lifecycle.
type Phase int

const (
	PhaseIdle    Phase = iota // nothing loaded
	PhaseLoading              // source handed to the renderer
	PhaseReady                // loaded; playing or paused
	PhaseEnded                // item finished naturally
	PhaseError                // renderer failure, see PlaybackState.Err
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseLoading:
		return "Loading"
	case PhaseReady:
		return "Ready"
	case PhaseEnded:
		return "Ended"
	case PhaseError:
		return "Error"
	default:
		return "Unknown"
	}
}

// PlaybackState is a read-only snapshot of the engine. A new snapshot is
// published after every mutation and renderer update.
type PlaybackState struct {
	Phase        Phase
	IsPlaying    bool
	Position     time.Duration
	Duration     time.Duration
	Speed        float64
	Volume       float64
	RepeatMode   playlist.RepeatMode
	Shuffle      bool
	CurrentIndex int // -1 when the queue is empty
	TotalItems   int
	Err          error
}

// IsLoading reports whether the current item is still loading.
func (s PlaybackState) IsLoading() bool {
	return s.Phase == PhaseLoading
}

// HasItem reports whether the queue has a current item.
func (s PlaybackState) HasItem() bool {
	return s.CurrentIndex >= 0
}

// Progress returns the position as a fraction of the duration, or 0 when
// the duration is unknown.
func (s PlaybackState) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return min(max(float64(s.Position)/float64(s.Duration), 0), 1)
}
