package playerview

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const (
	filledBlock = "━"
	emptyBlock  = "─"
	loopMarker  = "┃"

	playSymbol  = "▶"
	pauseSymbol = "⏸"
	loadSymbol  = "…"
	errorSymbol = "✖"
)

// progressBar renders "▶  1:23  ━━━━───  4:56" in width cells. Unknown
// durations render the times only. A-B loop bounds are marked on the bar.
func progressBar(position, duration time.Duration, width int, status string, loopStart, loopEnd time.Duration) string {
	posStr := formatDuration(position)
	durStr := "--:--"
	if duration > 0 {
		durStr = formatDuration(duration)
	}

	fixedWidth := lipgloss.Width(status) + 2 + lipgloss.Width(posStr) + 2 + 2 + lipgloss.Width(durStr)
	barWidth := width - fixedWidth
	if barWidth < 3 || duration <= 0 {
		return status + "  " + posStr + " / " + durStr
	}

	ratio := min(max(float64(position)/float64(duration), 0), 1)
	filled := min(int(float64(barWidth)*ratio), barWidth)

	cells := make([]string, barWidth)
	for i := range cells {
		if i < filled {
			cells[i] = filledStyle.Render(filledBlock)
		} else {
			cells[i] = emptyStyle.Render(emptyBlock)
		}
	}
	for _, mark := range []time.Duration{loopStart, loopEnd} {
		if mark <= 0 {
			continue
		}
		i := min(int(float64(barWidth)*float64(mark)/float64(duration)), barWidth-1)
		cells[i] = accentStyle.Render(loopMarker)
	}

	return status + "  " + posStr + "  " + strings.Join(cells, "") + "  " + durStr
}
