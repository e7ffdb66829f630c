package playback

import (
	"errors"
	"testing"
	"time"
)

func TestPhase_String(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseIdle, "Idle"},
		{PhaseLoading, "Loading"},
		{PhaseReady, "Ready"},
		{PhaseEnded, "Ended"},
		{PhaseError, "Error"},
		{Phase(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

func TestPlaybackState_Progress(t *testing.T) {
	tests := []struct {
		name     string
		position time.Duration
		duration time.Duration
		want     float64
	}{
		{"unknown duration", 10 * time.Second, 0, 0},
		{"halfway", 30 * time.Second, time.Minute, 0.5},
		{"past end", 2 * time.Minute, time.Minute, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := PlaybackState{Position: tt.position, Duration: tt.duration}
			if got := s.Progress(); got != tt.want {
				t.Errorf("Progress() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlaybackState_Flags(t *testing.T) {
	s := PlaybackState{Phase: PhaseLoading, CurrentIndex: -1}
	if !s.IsLoading() {
		t.Error("IsLoading() = false during PhaseLoading")
	}
	if s.HasItem() {
		t.Error("HasItem() = true for empty queue")
	}
}

func TestRendererError_Unwrap(t *testing.T) {
	cause := errors.New("decode failed")
	err := error(&RendererError{Op: "load", Source: "/a.mp3", Err: cause})

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if err.Error() != "load /a.mp3: decode failed" {
		t.Errorf("Error() = %q", err.Error())
	}
	var rerr *RendererError
	if !errors.As(err, &rerr) || rerr.Op != "load" {
		t.Error("errors.As should extract RendererError")
	}
}
