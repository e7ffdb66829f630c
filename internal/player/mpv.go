package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/llehouerou/deck/internal/logger"
	"github.com/llehouerou/deck/internal/media"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitTimeout       = 3 * time.Second
)

// MPVOptions configures the mpv renderer.
type MPVOptions struct {
	Binary    string   // defaults to "mpv"
	ExtraArgs []string // appended to the command line
	Tick      time.Duration
}

// MPV is a Renderer driving an mpv process over its JSON-IPC socket. The
// process is started on the first Load and kept idle between items.
type MPV struct {
	opts       MPVOptions
	socketPath string

	procMu sync.Mutex
	cmd    *exec.Cmd
	exited chan struct{}
	events net.Conn

	ipcMu sync.Mutex // serializes commands

	stateMu sync.Mutex
	state   telemetry
	loads   int // Load calls so far

	updates   chan Update
	done      chan struct{}
	closeOnce sync.Once
}

// NewMPV creates an mpv renderer. No process is started until Load.
func NewMPV(opts MPVOptions) *MPV {
	if opts.Binary == "" {
		opts.Binary = "mpv"
	}
	if opts.Tick <= 0 {
		opts.Tick = DefaultTickInterval
	}
	return &MPV{
		opts:       opts,
		socketPath: filepath.Join(os.TempDir(), "deck-"+uuid.NewString()+".sock"),
		updates:    make(chan Update, 16),
		done:       make(chan struct{}),
	}
}

func (m *MPV) Load(source string) error {
	m.stateMu.Lock()
	m.loads++
	m.state = telemetry{tick: m.opts.Tick}
	m.stateMu.Unlock()

	target, err := sanitizeMediaTarget(source)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}
	if err := m.ensureStarted(); err != nil {
		return err
	}

	// Items load paused; the engine decides when to start.
	if _, err := m.sendCommand("set_property", "pause", true); err != nil {
		return err
	}
	_, err = m.sendCommand("loadfile", target, "replace")
	return err
}

func (m *MPV) Play() error {
	if !m.running() {
		return nil
	}
	_, err := m.sendCommand("set_property", "pause", false)
	return err
}

func (m *MPV) Pause() error {
	if !m.running() {
		return nil
	}
	_, err := m.sendCommand("set_property", "pause", true)
	return err
}

func (m *MPV) SeekTo(position time.Duration) error {
	if !m.running() {
		return nil
	}
	_, err := m.sendCommand("seek", position.Seconds(), "absolute")
	return err
}

func (m *MPV) SetSpeed(speed float64) error {
	if !m.running() {
		return nil
	}
	_, err := m.sendCommand("set_property", "speed", speed)
	return err
}

// SetVolume maps the 0.0-1.0 level onto mpv's 0-100 scale.
func (m *MPV) SetVolume(level float64) error {
	if !m.running() {
		return nil
	}
	level = min(max(level, 0), 1)
	_, err := m.sendCommand("set_property", "volume", level*100)
	return err
}

func (m *MPV) Position() time.Duration {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.state.position
}

func (m *MPV) Duration() time.Duration {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.state.duration
}

func (m *MPV) Tracks() ([]media.Track, error) {
	if !m.running() {
		return nil, nil
	}
	raw, err := m.sendCommand("get_property", "track-list")
	if err != nil {
		return nil, err
	}
	return parseTrackList(raw)
}

func (m *MPV) Chapters() ([]media.Chapter, error) {
	if !m.running() {
		return nil, nil
	}
	raw, err := m.sendCommand("get_property", "chapter-list")
	if err != nil {
		return nil, err
	}
	return parseChapterList(raw, m.Duration())
}

// SelectTrack switches the vid, aid or sid property. External subtitle
// files that mpv has not loaded yet are added with sub-add.
func (m *MPV) SelectTrack(typ media.TrackType, track *media.Track) error {
	prop, ok := trackProperty[typ]
	if !ok {
		return ErrUnsupported
	}
	if track == nil {
		_, err := m.sendCommand("set_property", prop, "no")
		return err
	}
	if id, err := strconv.Atoi(track.ID); err == nil {
		_, err := m.sendCommand("set_property", prop, id)
		return err
	}
	if typ == media.TrackSubtitle && track.External && track.Path != "" {
		_, err := m.sendCommand("sub-add", track.Path, "select", track.Title, track.Language)
		return err
	}
	return fmt.Errorf("track %q: %w", track.ID, ErrUnsupported)
}

var trackProperty = map[media.TrackType]string{
	media.TrackVideo:    "vid",
	media.TrackAudio:    "aid",
	media.TrackSubtitle: "sid",
}

func (m *MPV) Updates() <-chan Update {
	return m.updates
}

// Close quits mpv, force-killing it if it does not exit in time, and
// removes the socket.
func (m *MPV) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)

		m.procMu.Lock()
		defer m.procMu.Unlock()
		if m.cmd == nil {
			return
		}
		if m.events != nil {
			m.events.Close()
		}
		_, _ = doSendCommand(m.socketPath, []any{"quit"})
		select {
		case <-m.exited:
		case <-time.After(quitTimeout):
			_ = killProcess(m.cmd)
		}
		_ = os.Remove(m.socketPath)
	})
	return nil
}

func (m *MPV) running() bool {
	m.procMu.Lock()
	defer m.procMu.Unlock()
	if m.cmd == nil {
		return false
	}
	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}

// ensureStarted spawns mpv in idle mode and attaches the event listener,
// unless a live process already exists.
func (m *MPV) ensureStarted() error {
	m.procMu.Lock()
	defer m.procMu.Unlock()

	select {
	case <-m.done:
		return errors.New("renderer closed")
	default:
	}
	if m.cmd != nil {
		select {
		case <-m.exited:
			logger.Log.Warn().Msg("mpv exited, restarting")
		default:
			return nil
		}
	}

	args := append([]string{
		"--no-terminal",
		"--really-quiet",
		"--idle=yes",
		"--force-window=yes",
		"--keep-open=no",
		"--input-ipc-server=" + m.socketPath,
	}, m.opts.ExtraArgs...)

	cmd := exec.Command(m.opts.Binary, args...)
	cmd.SysProcAttr = sysProcAttr()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}
	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()
	m.cmd = cmd
	m.exited = exited

	if err := waitForSocket(m.socketPath, exited); err != nil {
		logger.Log.Warn().Err(err).Msg("killing mpv: socket never became ready")
		_ = killProcess(cmd)
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	conn, err := net.Dial("unix", m.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}
	if err := observe(conn); err != nil {
		conn.Close()
		return err
	}
	m.events = conn
	go m.readEvents(conn)

	logger.Log.Debug().Str("socket", m.socketPath).Msg("mpv started")
	return nil
}

func waitForSocket(path string, exited <-chan struct{}) error {
	for range socketWaitRetries {
		time.Sleep(socketWaitDelay)
		select {
		case <-exited:
			return errors.New("mpv exited before socket was ready")
		default:
		}
		if conn, err := net.Dial("unix", path); err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", path, socketWaitRetries)
}

// observedProperties are registered on the event connection; mpv only
// notifies the client that asked.
var observedProperties = []string{"time-pos", "duration", "pause"}

func observe(conn net.Conn) error {
	for i, name := range observedProperties {
		payload, err := json.Marshal(ipcCommand{Command: []any{"observe_property", i + 1, name}})
		if err != nil {
			return err
		}
		if _, err := conn.Write(append(payload, '\n')); err != nil {
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}
	return nil
}

func (m *MPV) readEvents(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var ev mpvEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil || ev.Event == "" {
			continue
		}
		m.stateMu.Lock()
		u, ok := m.state.apply(ev)
		u.Load = m.loads
		m.stateMu.Unlock()
		if ok {
			m.send(u)
		}
	}
	select {
	case <-m.done:
	default:
		m.stateMu.Lock()
		load := m.loads
		m.stateMu.Unlock()
		m.send(Update{Load: load, Err: errors.New("mpv event connection lost")})
	}
}

// send delivers u; end and error updates wait for the consumer while
// position ticks are dropped when it is behind.
func (m *MPV) send(u Update) {
	if u.Ended || u.Err != nil {
		select {
		case m.updates <- u:
		case <-m.done:
		}
		return
	}
	select {
	case m.updates <- u:
	default:
	}
}

// mpvEvent is an asynchronous message on the event connection.
type mpvEvent struct {
	Event     string          `json:"event"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	Reason    string          `json:"reason"`
	FileError string          `json:"file_error"`
}

// telemetry folds mpv events into renderer state.
type telemetry struct {
	position time.Duration
	duration time.Duration
	paused   bool
	lastSent time.Duration
	tick     time.Duration
}

// apply updates t from ev and returns the update to publish, if any.
// Position changes are throttled to one per tick of media time.
func (t *telemetry) apply(ev mpvEvent) (Update, bool) {
	switch ev.Event {
	case "property-change":
		switch ev.Name {
		case "time-pos":
			var secs *float64
			if json.Unmarshal(ev.Data, &secs) != nil || secs == nil {
				return Update{}, false
			}
			t.position = seconds(*secs)
			delta := t.position - t.lastSent
			if delta >= 0 && delta < t.tick {
				return Update{}, false
			}
		case "duration":
			var secs *float64
			if json.Unmarshal(ev.Data, &secs) != nil || secs == nil {
				return Update{}, false
			}
			t.duration = seconds(*secs)
		case "pause":
			var paused bool
			if json.Unmarshal(ev.Data, &paused) != nil {
				return Update{}, false
			}
			t.paused = paused
		default:
			return Update{}, false
		}
		t.lastSent = t.position
		return t.snapshot(), true

	case "end-file":
		switch ev.Reason {
		case "eof":
			t.paused = true
			u := t.snapshot()
			u.Ended = true
			return u, true
		case "error":
			msg := ev.FileError
			if msg == "" {
				msg = "unknown error"
			}
			return Update{Err: fmt.Errorf("mpv: %s", msg)}, true
		}
	}
	return Update{}, false
}

func (t *telemetry) snapshot() Update {
	return Update{
		Position: t.position,
		Duration: t.duration,
		Playing:  !t.paused,
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

type mpvTrack struct {
	ID               int    `json:"id"`
	Type             string `json:"type"`
	Title            string `json:"title"`
	Lang             string `json:"lang"`
	Codec            string `json:"codec"`
	External         bool   `json:"external"`
	ExternalFilename string `json:"external-filename"`
	Selected         bool   `json:"selected"`
	Albumart         bool   `json:"albumart"`
}

var mpvTrackTypes = map[string]media.TrackType{
	"video": media.TrackVideo,
	"audio": media.TrackAudio,
	"sub":   media.TrackSubtitle,
}

// parseTrackList converts mpv's track-list property into tracks, skipping
// unknown track types and cover art pseudo tracks.
func parseTrackList(raw json.RawMessage) ([]media.Track, error) {
	var list []mpvTrack
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("parse track-list: %w", err)
	}
	tracks := make([]media.Track, 0, len(list))
	for _, t := range list {
		typ, ok := mpvTrackTypes[t.Type]
		if !ok || t.Albumart {
			continue
		}
		lang := t.Lang
		if lang == "" {
			lang = media.UnknownLanguage
		}
		tracks = append(tracks, media.Track{
			ID:       strconv.Itoa(t.ID),
			Type:     typ,
			Title:    t.Title,
			Language: lang,
			Codec:    t.Codec,
			External: t.External,
			Path:     t.ExternalFilename,
			Selected: t.Selected,
		})
	}
	return tracks, nil
}

// parseChapterList converts mpv's chapter-list property into chapters.
// Each chapter ends where the next begins; the last ends at duration.
func parseChapterList(raw json.RawMessage, duration time.Duration) ([]media.Chapter, error) {
	var list []struct {
		Title string  `json:"title"`
		Time  float64 `json:"time"`
	}
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("parse chapter-list: %w", err)
	}
	chapters := make([]media.Chapter, len(list))
	for i, c := range list {
		title := c.Title
		if title == "" {
			title = fmt.Sprintf("Chapter %d", i+1)
		}
		chapters[i] = media.Chapter{
			ID:    strconv.Itoa(i),
			Title: title,
			Start: seconds(c.Time),
		}
	}
	for i := range chapters {
		if i+1 < len(chapters) {
			chapters[i].End = chapters[i+1].Start
		} else {
			chapters[i].End = max(duration, chapters[i].Start)
		}
	}
	return chapters, nil
}

// sanitizeMediaTarget validates that a source is safe to pass to mpv.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", errors.New("empty source")
	}
	if strings.ContainsAny(l, "\x00\n\r") {
		return "", errors.New("invalid control characters in source")
	}
	if strings.HasPrefix(l, "-") {
		return "", errors.New("source must not start with '-'")
	}
	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		case "file":
			return filepath.Clean(u.Path), nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}
	return filepath.Clean(l), nil
}

// Verify MPV implements Renderer at compile time.
var _ Renderer = (*MPV)(nil)
