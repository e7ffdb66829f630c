package playerview

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/deck/internal/keymap"
	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/playback"
	"github.com/llehouerou/deck/internal/surface"
)

// handleKey resolves the key in the active contexts and runs its action.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.resolver.Resolve(msg.String(), m.contexts()...)
	if action == "" {
		return m, nil
	}
	m.surface.Interact()

	switch action {
	case keymap.ActionQuit:
		m.quitting = true
		m.engine.Unsubscribe(m.sub)
		return m, tea.Quit
	case keymap.ActionHelp:
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case keymap.ActionToggleQueue:
		m.showQueue = !m.showQueue
		return m, nil
	case keymap.ActionToggleView:
		m.expanded = !m.expanded
		return m, nil
	}

	if handled, err := m.handlePlaybackAction(action); handled {
		m.setResult(err)
		m.state = m.engine.State()
		return m, nil
	}
	if v, ok := m.surface.(*surface.Video); ok {
		if handled, err := m.handleVideoAction(v, action); handled {
			m.setResult(err)
			return m, nil
		}
	}
	m.handleQueueAction(action)
	return m, nil
}

func (m *Model) setResult(err error) {
	if err != nil {
		m.status = err.Error()
	}
}

// handlePlaybackAction runs transport and mode actions. It reports false
// for actions it does not own.
func (m *Model) handlePlaybackAction(action keymap.Action) (bool, error) {
	e := m.engine
	switch action {
	case keymap.ActionPlayPause:
		m.surface.TogglePlayback()
	case keymap.ActionStop:
		e.Stop()
	case keymap.ActionNextTrack:
		e.SkipToNext()
	case keymap.ActionPrevTrack:
		e.SkipToPrevious()
	case keymap.ActionSeekForward:
		e.SeekBy(m.opts.SeekStep)
	case keymap.ActionSeekBack:
		e.SeekBy(-m.opts.SeekStep)
	case keymap.ActionSeekForwardLong:
		m.surface.DoubleTap(surface.SideRight)
	case keymap.ActionSeekBackLong:
		m.surface.DoubleTap(surface.SideLeft)
	case keymap.ActionVolumeUp:
		m.surface.VolumeUp()
	case keymap.ActionVolumeDown:
		m.surface.VolumeDown()
	case keymap.ActionSpeedUp:
		return true, e.SetPlaybackSpeed(e.State().Speed + m.opts.SpeedStep)
	case keymap.ActionSpeedDown:
		speed := e.State().Speed - m.opts.SpeedStep
		if speed <= 0 {
			return true, nil
		}
		return true, e.SetPlaybackSpeed(speed)
	case keymap.ActionCycleRepeat:
		m.status = "Repeat " + e.CycleRepeatMode().String()
	case keymap.ActionToggleShuffle:
		e.ToggleShuffle()
	case keymap.ActionSleepTimer:
		m.sleepStep = nextSleepStep(m.sleepStep, e.SleepTimerRemaining())
		d := sleepSteps[m.sleepStep]
		e.SetSleepTimer(d)
		if d == 0 {
			m.status = "Sleep timer off"
		} else {
			m.status = fmt.Sprintf("Sleep in %d min", int(d.Minutes()))
		}
	case keymap.ActionABLoop:
		return true, cycleABLoop(e)
	case keymap.ActionNextChapter:
		e.SeekToNextChapter()
	case keymap.ActionPrevChapter:
		e.SeekToPreviousChapter()
	case keymap.ActionRetry:
		if !e.RetryPlayback() {
			return true, errors.New("nothing to retry")
		}
	case keymap.ActionSkipError:
		e.SkipToNextOnError()
	default:
		return false, nil
	}
	return true, nil
}

// nextSleepStep returns the index of the sleep step after current. A
// timer that is no longer running restarts the cycle.
func nextSleepStep(current int, remaining time.Duration) int {
	if remaining <= 0 {
		current = 0
	}
	return (current + 1) % len(sleepSteps)
}

// cycleABLoop sets the start, then the end, then clears the loop.
func cycleABLoop(e playback.Service) error {
	loop := e.ABLoop()
	switch {
	case !loop.StartSet:
		e.SetABLoopStart()
	case !loop.Active:
		if !e.SetABLoopEnd() {
			return errors.New("loop end must come after its start")
		}
	default:
		e.ClearABLoop()
	}
	return nil
}

func (m *Model) handleVideoAction(v *surface.Video, action keymap.Action) (bool, error) {
	switch action {
	case keymap.ActionToggleSubtitles:
		return true, v.ToggleSubtitles()
	case keymap.ActionToggleFullscreen:
		v.ToggleFullscreen()
	case keymap.ActionBrightnessUp:
		v.BrightnessUp()
	case keymap.ActionBrightnessDown:
		v.BrightnessDown()
	case keymap.ActionCycleOrientation:
		v.SetOrientation((v.Orientation() + 1) % 3)
	case keymap.ActionCycleAudioTrack:
		return true, cycleAudioTrack(m.engine)
	case keymap.ActionRefreshSubtitles:
		m.engine.RefreshSubtitles()
	default:
		return false, nil
	}
	return true, nil
}

// cycleAudioTrack selects the audio track after the selected one.
func cycleAudioTrack(e playback.Service) error {
	audio := e.Tracks().Audio
	if len(audio) < 2 {
		return nil
	}
	next := 0
	for i, t := range audio {
		if t.Selected {
			next = (i + 1) % len(audio)
			break
		}
	}
	return e.SelectAudioTrack(audio[next].ID)
}

func (m *Model) handleQueueAction(action keymap.Action) {
	e := m.engine
	last := len(m.queue) - 1
	switch action {
	case keymap.ActionMoveUp:
		m.cursor = max(m.cursor-1, 0)
	case keymap.ActionMoveDown:
		m.cursor = max(min(m.cursor+1, last), 0)
	case keymap.ActionSelect:
		m.setResult(e.JumpTo(m.cursor))
	case keymap.ActionDelete:
		m.setResult(e.RemoveAt(m.cursor))
	case keymap.ActionMoveItemUp:
		if m.cursor > 0 && e.MoveItem(m.cursor, m.cursor-1) == nil {
			m.cursor--
		}
	case keymap.ActionMoveItemDown:
		if m.cursor < last && e.MoveItem(m.cursor, m.cursor+1) == nil {
			m.cursor++
		}
	case keymap.ActionClearQueue:
		e.ClearQueue()
	case keymap.ActionUndo:
		e.UndoQueue()
	case keymap.ActionRedo:
		e.RedoQueue()
	default:
		return
	}
	m.queue = e.Queue()
	m.cursor = min(m.cursor, max(len(m.queue)-1, 0))
	m.state = e.State()
}

// selectedSubtitle returns a label for the subtitle shown by p.
func selectedSubtitle(p surface.VideoPreview) string {
	if p.Subtitle == nil {
		return "off"
	}
	return trackLabel(*p.Subtitle)
}

func trackLabel(t media.Track) string {
	switch {
	case t.Title != "" && t.Language != "" && t.Language != media.UnknownLanguage:
		return t.Title + " (" + t.Language + ")"
	case t.Title != "":
		return t.Title
	case t.Language != "":
		return t.Language
	default:
		return t.ID
	}
}
