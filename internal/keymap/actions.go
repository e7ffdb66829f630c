// Package keymap maps terminal keys to player actions.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit        Action = "quit"
	ActionHelp        Action = "help"
	ActionToggleQueue Action = "toggle_queue"
	ActionToggleView  Action = "toggle_view"

	// Playback actions
	ActionPlayPause       Action = "play_pause"
	ActionStop            Action = "stop"
	ActionNextTrack       Action = "next_track"
	ActionPrevTrack       Action = "prev_track"
	ActionSeekForward     Action = "seek_forward"
	ActionSeekBack        Action = "seek_back"
	ActionSeekForwardLong Action = "seek_forward_long" // double-tap right
	ActionSeekBackLong    Action = "seek_back_long"    // double-tap left
	ActionVolumeUp        Action = "volume_up"
	ActionVolumeDown      Action = "volume_down"
	ActionSpeedUp         Action = "speed_up"
	ActionSpeedDown       Action = "speed_down"
	ActionCycleRepeat     Action = "cycle_repeat"
	ActionToggleShuffle   Action = "toggle_shuffle"
	ActionSleepTimer      Action = "sleep_timer"
	ActionABLoop          Action = "ab_loop"
	ActionNextChapter     Action = "next_chapter"
	ActionPrevChapter     Action = "prev_chapter"
	ActionRetry           Action = "retry"
	ActionSkipError       Action = "skip_error"

	// Video actions
	ActionToggleSubtitles  Action = "toggle_subtitles"
	ActionToggleFullscreen Action = "toggle_fullscreen"
	ActionBrightnessUp     Action = "brightness_up"
	ActionBrightnessDown   Action = "brightness_down"
	ActionCycleOrientation Action = "cycle_orientation"
	ActionCycleAudioTrack  Action = "cycle_audio_track"
	ActionRefreshSubtitles Action = "refresh_subtitles"

	// Queue actions
	ActionMoveUp       Action = "move_up"
	ActionMoveDown     Action = "move_down"
	ActionSelect       Action = "select"
	ActionDelete       Action = "delete"
	ActionMoveItemUp   Action = "move_item_up"
	ActionMoveItemDown Action = "move_item_down"
	ActionClearQueue   Action = "clear_queue"
	ActionUndo         Action = "undo"
	ActionRedo         Action = "redo"
)
