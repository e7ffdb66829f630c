package playerview

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/playback"
)

// TickMsg refreshes the position between engine events.
type TickMsg time.Time

// StateMsg carries a published playback state.
type StateMsg struct {
	Previous playback.PlaybackState
	State    playback.PlaybackState
}

// TrackMsg reports that a different item started loading.
type TrackMsg struct {
	Index int
}

// QueueMsg carries the new queue contents.
type QueueMsg struct {
	Items []media.Item
	Index int
}

// TracksMsg reports resolved tracks or chapters.
type TracksMsg struct{}

// CompletedMsg reports that playback ran off the end of the queue.
type CompletedMsg struct {
	Item media.Item
}

// SurfaceMsg reports a change of surface-local state.
type SurfaceMsg struct{}

// StderrMsg carries a line written to stderr by an audio library.
type StderrMsg struct {
	Line string
}

// ClosedMsg reports that the engine shut down.
type ClosedMsg struct{}

// TickCmd returns a command that sends TickMsg after one second.
func TickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// WatchEvents returns a command that waits for the next engine event and
// converts it to a tea.Msg. Error events surface through StateMsg.
func (m Model) WatchEvents() tea.Cmd {
	if m.sub == nil {
		return nil
	}
	sub := m.sub
	return func() tea.Msg {
		for {
			select {
			case e := <-sub.StateChanged:
				return StateMsg{Previous: e.Previous, State: e.Current}
			case e := <-sub.TrackChanged:
				return TrackMsg{Index: e.Index}
			case e := <-sub.QueueChanged:
				return QueueMsg{Items: e.Items, Index: e.Index}
			case <-sub.TracksChanged:
				return TracksMsg{}
			case e := <-sub.Completed:
				return CompletedMsg{Item: e.Item}
			case <-sub.Error:
				continue
			case <-sub.Done:
				return ClosedMsg{}
			}
		}
	}
}

// WatchSurface returns a command that waits for surface-local changes
// such as controls visibility or brightness.
func (m Model) WatchSurface() tea.Cmd {
	if m.sub == nil {
		return nil
	}
	changes, done := m.surface.Changes(), m.sub.Done
	return func() tea.Msg {
		select {
		case <-changes:
			return SurfaceMsg{}
		case <-done:
			return nil
		}
	}
}

// WatchStderr returns a command that waits for the next captured stderr
// line. It returns nil when no capture is configured.
func (m Model) WatchStderr() tea.Cmd {
	ch := m.opts.Stderr
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		line, ok := <-ch
		if !ok {
			return nil
		}
		return StderrMsg{Line: line}
	}
}
