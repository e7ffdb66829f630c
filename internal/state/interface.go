package state

import (
	"context"
	"time"

	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/playback"
)

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	RecordPlay(ctx context.Context, item media.Item, position time.Duration) error
	RecordPosition(ctx context.Context, item media.Item, position time.Duration) error
	Recent(ctx context.Context, limit int) ([]HistoryEntry, error)
	Annotate(ctx context.Context, items []media.Item) ([]media.Item, error)
	SaveQueue(state QueueState)
	GetQueue() (*QueueState, error)
	SaveVolume(volume float64) error
	GetVolume() (float64, error)
	Close() error
}

// Verify Manager implements Interface and the engine's history
// collaborators at compile time.
var (
	_ Interface                 = (*Manager)(nil)
	_ playback.History          = (*Manager)(nil)
	_ playback.PositionRecorder = (*Manager)(nil)
)
