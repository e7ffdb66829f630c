package keymap

import "github.com/charmbracelet/bubbles/key"

// Binding ties keys to an action within a context.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global", "playback", "video" or "queue"
}

// All contains all key bindings.
var All = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit", "global"},
	{ActionHelp, []string{"?"}, "Toggle help", "global"},
	{ActionToggleQueue, []string{"tab"}, "Toggle queue panel", "global"},
	{ActionToggleView, []string{"v"}, "Toggle expanded view", "global"},

	// Playback
	{ActionPlayPause, []string{" "}, "Play/pause", "playback"},
	{ActionStop, []string{"s"}, "Stop", "playback"},
	{ActionNextTrack, []string{"n", "pgdown"}, "Next item", "playback"},
	{ActionPrevTrack, []string{"p", "pgup"}, "Previous item", "playback"},
	{ActionSeekBack, []string{"left", "h"}, "Seek -5s", "playback"},
	{ActionSeekForward, []string{"right", "l"}, "Seek +5s", "playback"},
	{ActionSeekBackLong, []string{"shift+left", "H"}, "Double-tap back", "playback"},
	{ActionSeekForwardLong, []string{"shift+right", "L"}, "Double-tap forward", "playback"},
	{ActionVolumeUp, []string{"+", "="}, "Volume up", "playback"},
	{ActionVolumeDown, []string{"-"}, "Volume down", "playback"},
	{ActionSpeedUp, []string{"]"}, "Faster", "playback"},
	{ActionSpeedDown, []string{"["}, "Slower", "playback"},
	{ActionCycleRepeat, []string{"r"}, "Cycle repeat mode", "playback"},
	{ActionToggleShuffle, []string{"z"}, "Toggle shuffle", "playback"},
	{ActionSleepTimer, []string{"t"}, "Cycle sleep timer", "playback"},
	{ActionABLoop, []string{"a"}, "A-B loop", "playback"},
	{ActionNextChapter, []string{"."}, "Next chapter", "playback"},
	{ActionPrevChapter, []string{","}, "Previous chapter", "playback"},
	{ActionRetry, []string{"ctrl+r"}, "Retry failed item", "playback"},
	{ActionSkipError, []string{"ctrl+n"}, "Skip failed item", "playback"},

	// Video
	{ActionToggleSubtitles, []string{"c"}, "Toggle subtitles", "video"},
	{ActionToggleFullscreen, []string{"f"}, "Toggle fullscreen", "video"},
	{ActionBrightnessUp, []string{"b"}, "Brightness up", "video"},
	{ActionBrightnessDown, []string{"B"}, "Brightness down", "video"},
	{ActionCycleOrientation, []string{"o"}, "Cycle orientation", "video"},
	{ActionCycleAudioTrack, []string{"#"}, "Next audio track", "video"},
	{ActionRefreshSubtitles, []string{"ctrl+s"}, "Rescan subtitles", "video"},

	// Queue panel
	{ActionMoveUp, []string{"k", "up"}, "Cursor up", "queue"},
	{ActionMoveDown, []string{"j", "down"}, "Cursor down", "queue"},
	{ActionSelect, []string{"enter"}, "Play item", "queue"},
	{ActionDelete, []string{"d", "delete"}, "Remove item", "queue"},
	{ActionMoveItemUp, []string{"K"}, "Move item up", "queue"},
	{ActionMoveItemDown, []string{"J"}, "Move item down", "queue"},
	{ActionClearQueue, []string{"X"}, "Clear queue", "queue"},
	{ActionUndo, []string{"u", "ctrl+z"}, "Undo queue edit", "queue"},
	{ActionRedo, []string{"ctrl+y"}, "Redo queue edit", "queue"},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range All {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}

// Help converts bindings into help entries. The first key is shown.
func Help(bindings []Binding) []key.Binding {
	out := make([]key.Binding, 0, len(bindings))
	for _, b := range bindings {
		if len(b.Keys) == 0 {
			continue
		}
		label := b.Keys[0]
		if label == " " {
			label = "space"
		}
		out = append(out, key.NewBinding(
			key.WithKeys(b.Keys...),
			key.WithHelp(label, b.Description),
		))
	}
	return out
}
