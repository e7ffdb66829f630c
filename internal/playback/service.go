package playback

import (
	"time"

	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/playlist"
	"github.com/llehouerou/deck/internal/tracks"
)

// Service is the command and query surface of the engine consumed by
// control surfaces, the remote API, MPRIS and the terminal UI.
type Service interface {
	// Transport
	Play()
	Pause()
	TogglePlayback()
	Stop()
	SeekTo(position time.Duration)
	SeekBy(delta time.Duration)
	SkipToNext()
	SkipToPrevious()
	JumpTo(index int) error

	// Queue
	PlayItem(item media.Item)
	PlayQueue(items []media.Item, start int) error
	RestoreQueue(items []media.Item, start int, position time.Duration) error
	AddItems(items ...media.Item)
	RemoveAt(index int) error
	MoveItem(from, to int) error
	ClearQueue()
	UndoQueue() bool
	RedoQueue() bool
	Queue() []media.Item
	CurrentItem() (media.Item, bool)
	HasNext() bool

	// Modes
	SetRepeatMode(mode playlist.RepeatMode)
	CycleRepeatMode() playlist.RepeatMode
	SetShuffle(enabled bool)
	ToggleShuffle()
	SetPlaybackSpeed(speed float64) error
	SetVolume(level float64)

	// A-B loop and sleep timer
	SetABLoopStart()
	SetABLoopEnd() bool
	ClearABLoop()
	ABLoop() ABLoop
	SetSleepTimer(d time.Duration)
	SleepTimerRemaining() time.Duration
	SleepTimerActive() bool

	// Tracks and chapters
	Tracks() tracks.Tracks
	Chapters() []media.Chapter
	CurrentChapter() (media.Chapter, bool)
	SelectVideoTrack(id string) error
	SelectAudioTrack(id string) error
	SelectSubtitleTrack(id string) error
	SeekToChapter(id string) error
	SeekToNextChapter() bool
	SeekToPreviousChapter() bool
	RefreshSubtitles()

	// Errors
	ClearError()
	RetryPlayback() bool
	SkipToNextOnError()

	State() PlaybackState
	Subscribe() *Subscription
	Unsubscribe(sub *Subscription)
	Close() error
}

// Verify Engine implements Service at compile time.
var _ Service = (*Engine)(nil)
