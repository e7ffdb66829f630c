package playback

import (
	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/tracks"
)

// StateChange is emitted whenever a new PlaybackState is published.
type StateChange struct {
	Previous PlaybackState
	Current  PlaybackState
}

// TrackChange is emitted when a different item (or the same item again)
// starts loading.
//
// Emitted by PlayQueue, PlayItem, skips, JumpTo, queue edits that remove
// the current item, and automatic advance at the end of an item.
type TrackChange struct {
	Previous      *media.Item
	Current       *media.Item
	PreviousIndex int
	Index         int
}

// QueueChange is emitted when the queue contents or order change.
type QueueChange struct {
	Items []media.Item
	Index int
}

// TracksChange is emitted once tracks and chapters of the loaded item are
// resolved, and again after every selection or subtitle refresh.
type TracksChange struct {
	Tracks   tracks.Tracks
	Chapters []media.Chapter
}

// Completed is emitted when playback runs off the end of the queue under
// RepeatOff. Reason is always ErrNoNextItem.
type Completed struct {
	Item   media.Item
	Reason error
}

// ErrorEvent is emitted when the renderer reports a failure.
type ErrorEvent struct {
	Operation string // e.g., "load", "seek"
	Source    string // item URI if applicable
	Err       error
}
