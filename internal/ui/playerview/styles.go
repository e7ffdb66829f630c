package playerview

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// Palette
var (
	colorPrimary   = lipgloss.Color("#a78bfa")
	colorSecondary = lipgloss.Color("#f1a208")
	colorFg        = lipgloss.Color("#c0c0c0")
	colorMuted     = lipgloss.Color("#808080")
	colorSubtle    = lipgloss.Color("#585858")
	colorCursor    = lipgloss.Color("#303030")
	colorError     = lipgloss.Color("#ff5555")
	colorBorder    = lipgloss.Color("240")
)

var (
	baseStyle    = lipgloss.NewStyle().Foreground(colorFg)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	subtleStyle  = lipgloss.NewStyle().Foreground(colorSubtle)
	playingStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	cursorStyle  = lipgloss.NewStyle().Background(colorCursor).Foreground(colorFg)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	accentStyle  = lipgloss.NewStyle().Foreground(colorSecondary)

	filledStyle = lipgloss.NewStyle().Foreground(colorPrimary)
	emptyStyle  = lipgloss.NewStyle().Foreground(colorSubtle)
)

var panelStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(colorBorder).
	Padding(0, 2)

// gradient renders bold text with a horizontal color gradient, blended
// in HCL space one grapheme cluster at a time.
func gradient(text string, from, to lipgloss.Color) string {
	if text == "" {
		return ""
	}

	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}
	if len(clusters) == 1 {
		return lipgloss.NewStyle().Foreground(from).Bold(true).Render(text)
	}

	c1, _ := colorful.MakeColor(toColor(from))
	c2, _ := colorful.MakeColor(toColor(to))

	var b strings.Builder
	for i, cluster := range clusters {
		t := float64(i) / float64(len(clusters)-1)
		c := lipgloss.Color(c1.BlendHcl(c2, t).Clamped().Hex())
		b.WriteString(lipgloss.NewStyle().Foreground(c).Bold(true).Render(cluster))
	}
	return b.String()
}

// toColor converts a hex lipgloss color. ANSI colors fall back to gray.
func toColor(c lipgloss.Color) color.Color {
	if hex := string(c); len(hex) == 7 && hex[0] == '#' {
		if col, err := colorful.Hex(hex); err == nil {
			return col
		}
	}
	return color.RGBA{R: 128, G: 128, B: 128, A: 255}
}
