package playerview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/deck/internal/keymap"
	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/playback"
	"github.com/llehouerou/deck/internal/playlist"
	"github.com/llehouerou/deck/internal/surface"
)

// View renders the player.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sections []string
	p, ok := m.surface.Preview()
	if ok {
		sections = append(sections, m.renderPlayer(p))
	} else {
		sections = append(sections, panelStyle.Width(m.innerWidth()).Render(mutedStyle.Render("Nothing playing")))
	}
	if m.showQueue {
		sections = append(sections, m.renderQueue())
	}
	if m.status != "" {
		sections = append(sections, " "+errorStyle.Render(truncate(m.status, m.width-2)))
	}
	if m.surface.ControlsVisible() {
		sections = append(sections, " "+m.help.View(helpKeys{contexts: m.contexts()}))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) innerWidth() int {
	return max(m.width-2, 20)
}

// contentWidth is the width inside the panel border and padding.
func (m Model) contentWidth() int {
	return max(m.width-6, 10)
}

func (m Model) renderPlayer(p surface.Preview) string {
	st := p.Playback()
	item := p.Current()
	width := m.contentWidth()

	title := gradient(truncate(item.DisplayTitle(), width), colorPrimary, colorSecondary)
	lines := []string{title}
	if info := joinNonEmpty(" · ", item.Artist, item.Album); info != "" {
		lines = append(lines, mutedStyle.Render(truncate(info, width)))
	}
	if !m.surface.ControlsVisible() {
		return panelStyle.Width(m.innerWidth()).Render(strings.Join(lines, "\n"))
	}

	loop := m.engine.ABLoop()
	loopStart, loopEnd := loop.Start, loop.End
	if !loop.StartSet {
		loopStart = 0
	}
	if !loop.Active {
		loopEnd = 0
	}
	lines = append(lines, progressBar(st.Position, st.Duration, width, statusSymbol(st), loopStart, loopEnd))
	lines = append(lines, subtleStyle.Render(truncate(m.statusLine(st, p), width)))

	if m.expanded {
		lines = append(lines, m.detailLines(p)...)
	}
	return panelStyle.Width(m.innerWidth()).Render(strings.Join(lines, "\n"))
}

func statusSymbol(st playback.PlaybackState) string {
	switch {
	case st.Phase == playback.PhaseError:
		return errorSymbol
	case st.IsLoading():
		return loadSymbol
	case st.IsPlaying:
		return playSymbol
	default:
		return pauseSymbol
	}
}

// statusLine renders the modes: "vol 80%  1.25x  repeat all  shuffle".
func (m Model) statusLine(st playback.PlaybackState, p surface.Preview) string {
	parts := []string{fmt.Sprintf("vol %d%%", int(st.Volume*100+0.5))}
	if st.Speed != 1 {
		parts = append(parts, fmt.Sprintf("%.2gx", st.Speed))
	}
	if st.RepeatMode != playlist.RepeatOff {
		parts = append(parts, "repeat "+strings.ToLower(st.RepeatMode.String()))
	}
	if st.Shuffle {
		parts = append(parts, "shuffle")
	}
	if st.TotalItems > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d", st.CurrentIndex+1, st.TotalItems))
	}
	if ch := chapterOf(p); ch != "" {
		parts = append(parts, "§ "+ch)
	}
	if loop := m.engine.ABLoop(); loop.StartSet {
		if loop.Active {
			parts = append(parts, fmt.Sprintf("A-B %s-%s", formatDuration(loop.Start), formatDuration(loop.End)))
		} else {
			parts = append(parts, "A "+formatDuration(loop.Start))
		}
	}
	if m.engine.SleepTimerActive() {
		if rem := m.engine.SleepTimerRemaining(); rem > 0 {
			parts = append(parts, "sleep "+formatDuration(rem))
		} else {
			parts = append(parts, "sleep fading")
		}
	}
	return strings.Join(parts, "  ")
}

func chapterOf(p surface.Preview) string {
	switch p := p.(type) {
	case surface.AudioPreview:
		return p.Chapter
	case surface.VideoPreview:
		return p.Chapter
	}
	return ""
}

// detailLines are shown in the expanded view only.
func (m Model) detailLines(p surface.Preview) []string {
	item := p.Current()
	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, mutedStyle.Render(label+": ")+baseStyle.Render(truncate(value, m.contentWidth()-len(label)-2)))
		}
	}
	add("Source", item.URI)
	if item.PlayCount > 0 {
		add("Plays", fmt.Sprint(item.PlayCount))
	}
	for _, k := range []string{"year", "genre", "track", "format"} {
		add(strings.ToUpper(k[:1])+k[1:], item.Metadata[k])
	}

	switch p := p.(type) {
	case surface.AudioPreview:
		add("Artwork", p.Artwork)
	case surface.VideoPreview:
		add("Subtitles", selectedSubtitle(p))
		add("Orientation", p.Orientation.String())
		add("Brightness", fmt.Sprintf("%d%%", int(p.Brightness*100+0.5)))
		if p.Fullscreen {
			add("Display", "fullscreen")
		}
	}
	if tr := m.engine.Tracks(); len(tr.Audio) > 1 {
		if sel, ok := tr.Selected(media.TrackAudio); ok {
			add("Audio", trackLabel(sel))
		}
	}
	return lines
}

// renderQueue lists the queue around the cursor.
func (m Model) renderQueue() string {
	width := m.contentWidth()
	if len(m.queue) == 0 {
		return panelStyle.Width(m.innerWidth()).Render(mutedStyle.Render("Queue is empty"))
	}

	visible := len(m.queue)
	if m.height > 0 {
		visible = max(min(visible, m.height-12), 3)
	}
	start := min(max(m.cursor-visible/2, 0), max(len(m.queue)-visible, 0))
	end := min(start+visible, len(m.queue))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		item := m.queue[i]
		prefix := "  "
		style := baseStyle
		if i == m.state.CurrentIndex {
			prefix = playSymbol + " "
			style = playingStyle
		}
		dur := ""
		if item.Duration > 0 {
			dur = formatDuration(item.Duration)
		}
		label := truncate(fmt.Sprintf("%d. %s", i+1, joinNonEmpty(" - ", item.Artist, item.DisplayTitle())), width-lipgloss.Width(dur)-3)
		gap := max(width-2-lipgloss.Width(label)-lipgloss.Width(dur), 1)
		line := prefix + style.Render(label) + strings.Repeat(" ", gap) + mutedStyle.Render(dur)
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return panelStyle.Width(m.innerWidth()).Render(strings.Join(lines, "\n"))
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// helpKeys adapts the keymap to the bubbles help component.
type helpKeys struct {
	contexts []string
}

func (h helpKeys) ShortHelp() []key.Binding {
	var short []keymap.Binding
	for _, b := range keymap.All {
		switch b.Action {
		case keymap.ActionPlayPause, keymap.ActionNextTrack, keymap.ActionPrevTrack,
			keymap.ActionToggleQueue, keymap.ActionHelp, keymap.ActionQuit:
			short = append(short, b)
		}
	}
	return keymap.Help(short)
}

func (h helpKeys) FullHelp() [][]key.Binding {
	groups := make([][]key.Binding, 0, len(h.contexts))
	for _, ctx := range h.contexts {
		if group := keymap.Help(keymap.ByContext(ctx)); len(group) > 0 {
			groups = append(groups, group)
		}
	}
	return groups
}
