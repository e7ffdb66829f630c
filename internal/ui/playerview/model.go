// Package playerview is the terminal player: a compact or expanded now
// playing panel over a control surface, with an optional queue panel.
package playerview

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/deck/internal/keymap"
	"github.com/llehouerou/deck/internal/logger"
	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/playback"
	"github.com/llehouerou/deck/internal/surface"
)

// Defaults for Options.
const (
	DefaultSeekStep  = 5 * time.Second
	DefaultSpeedStep = 0.25
)

// sleepSteps is the cycle walked by the sleep timer key. Zero cancels.
var sleepSteps = []time.Duration{0, 15 * time.Minute, 30 * time.Minute, time.Hour}

// Options configures the view.
type Options struct {
	SeekStep  time.Duration
	SpeedStep float64
	Bindings  []keymap.Binding // defaults to keymap.All

	// Stderr, when set, delivers captured library output shown on the
	// status line.
	Stderr <-chan string
}

func (o Options) withDefaults() Options {
	if o.SeekStep <= 0 {
		o.SeekStep = DefaultSeekStep
	}
	if o.SpeedStep <= 0 {
		o.SpeedStep = DefaultSpeedStep
	}
	if len(o.Bindings) == 0 {
		o.Bindings = keymap.All
	}
	return o
}

// Model is the bubbletea model of the terminal player.
type Model struct {
	surface  surface.Surface
	engine   playback.Service
	sub      *playback.Subscription
	opts     Options
	resolver *keymap.Resolver
	help     help.Model

	state     playback.PlaybackState
	queue     []media.Item
	cursor    int
	status    string
	sleepStep int // index into sleepSteps

	showQueue bool
	expanded  bool
	width     int
	height    int
	quitting  bool
}

// New creates the view over s. The surface's engine must outlive the
// program.
func New(s surface.Surface, opts Options) Model {
	opts = opts.withDefaults()
	e := s.Engine()
	m := Model{
		surface:  s,
		engine:   e,
		sub:      e.Subscribe(),
		opts:     opts,
		resolver: keymap.NewResolver(opts.Bindings),
		help:     help.New(),
		state:    e.State(),
		queue:    e.Queue(),
		width:    80,
	}
	m.cursor = max(m.state.CurrentIndex, 0)
	return m
}

// Init starts the event watchers and the position tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.WatchEvents(), m.WatchSurface(), m.WatchStderr(), TickCmd())
}

// Update handles a message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StateMsg:
		m.state = msg.State
		if msg.State.Err != nil {
			m.status = msg.State.Err.Error()
		} else if msg.Previous.Err != nil {
			m.status = ""
		}
		return m, m.WatchEvents()

	case QueueMsg:
		m.queue = msg.Items
		m.cursor = min(m.cursor, max(len(m.queue)-1, 0))
		return m, m.WatchEvents()

	case TrackMsg:
		if msg.Index >= 0 {
			m.cursor = msg.Index
		}
		return m, m.WatchEvents()

	case TracksMsg:
		return m, m.WatchEvents()

	case CompletedMsg:
		m.status = "End of queue"
		return m, m.WatchEvents()

	case SurfaceMsg:
		return m, m.WatchSurface()

	case StderrMsg:
		logger.Log.Warn().Str("line", msg.Line).Msg("library stderr")
		m.status = sanitize(msg.Line)
		return m, m.WatchStderr()

	case ClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case TickMsg:
		m.state = m.engine.State()
		return m, TickCmd()
	}
	return m, nil
}

// contexts returns the keymap contexts active in the current layout.
func (m Model) contexts() []string {
	ctx := []string{"global", "playback"}
	if _, ok := m.surface.(*surface.Video); ok {
		ctx = append(ctx, "video")
	}
	if m.showQueue {
		ctx = append(ctx, "queue")
	}
	return ctx
}
