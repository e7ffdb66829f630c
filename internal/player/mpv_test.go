package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/deck/internal/media"
)

func TestSanitizeMediaTarget(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"local path", "/music/a.mkv", "/music/a.mkv", false},
		{"cleans path", "/music/../video/a.mkv", "/video/a.mkv", false},
		{"https url", "https://example.com/a.mp4", "https://example.com/a.mp4", false},
		{"file url", "file:///video/a.mkv", "/video/a.mkv", false},
		{"empty", "  ", "", true},
		{"flag injection", "--script=evil.lua", "", true},
		{"control chars", "/a\nb", "", true},
		{"bad scheme", "ftp://example.com/a.mp4", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sanitizeMediaTarget(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTrackList(t *testing.T) {
	raw := json.RawMessage(`[
		{"id":1,"type":"video","codec":"h264","selected":true},
		{"id":2,"type":"video","codec":"mjpeg","albumart":true},
		{"id":1,"type":"audio","lang":"jpn","title":"Main","codec":"aac","selected":true},
		{"id":2,"type":"audio","lang":"eng","codec":"aac"},
		{"id":1,"type":"sub","lang":"eng","codec":"subrip","external":true,"external-filename":"/v/a.en.srt"},
		{"id":9,"type":"data"}
	]`)

	tracks, err := parseTrackList(raw)
	require.NoError(t, err)
	require.Len(t, tracks, 4)

	assert.Equal(t, media.Track{ID: "1", Type: media.TrackVideo, Language: media.UnknownLanguage, Codec: "h264", Selected: true}, tracks[0])
	assert.Equal(t, "jpn", tracks[1].Language)
	assert.Equal(t, "Main", tracks[1].Title)
	assert.False(t, tracks[2].Selected)
	assert.Equal(t, media.TrackSubtitle, tracks[3].Type)
	assert.True(t, tracks[3].External)
	assert.Equal(t, "/v/a.en.srt", tracks[3].Path)
}

func TestParseTrackList_Invalid(t *testing.T) {
	_, err := parseTrackList(json.RawMessage(`{"id":1}`))
	assert.Error(t, err)
}

func TestParseChapterList(t *testing.T) {
	raw := json.RawMessage(`[{"title":"Intro","time":0},{"title":"","time":90.5},{"title":"End","time":600}]`)

	chapters, err := parseChapterList(raw, 700*time.Second)
	require.NoError(t, err)
	require.Len(t, chapters, 3)

	assert.Equal(t, "Intro", chapters[0].Title)
	assert.Equal(t, 90500*time.Millisecond, chapters[0].End)
	assert.Equal(t, "Chapter 2", chapters[1].Title)
	assert.Equal(t, 600*time.Second, chapters[1].End)
	assert.Equal(t, 700*time.Second, chapters[2].End)
}

func TestParseChapterList_UnknownDuration(t *testing.T) {
	chapters, err := parseChapterList(json.RawMessage(`[{"title":"Only","time":12}]`), 0)
	require.NoError(t, err)
	assert.Equal(t, chapters[0].Start, chapters[0].End)
}

func TestTelemetry_Apply(t *testing.T) {
	tel := telemetry{tick: 250 * time.Millisecond}

	u, ok := tel.apply(mpvEvent{Event: "property-change", Name: "duration", Data: json.RawMessage(`120.0`)})
	require.True(t, ok)
	assert.Equal(t, 120*time.Second, u.Duration)

	u, ok = tel.apply(mpvEvent{Event: "property-change", Name: "pause", Data: json.RawMessage(`false`)})
	require.True(t, ok)
	assert.True(t, u.Playing)

	// Below one tick of progress is throttled.
	_, ok = tel.apply(mpvEvent{Event: "property-change", Name: "time-pos", Data: json.RawMessage(`0.1`)})
	assert.False(t, ok)
	assert.Equal(t, 100*time.Millisecond, tel.position)

	u, ok = tel.apply(mpvEvent{Event: "property-change", Name: "time-pos", Data: json.RawMessage(`0.3`)})
	require.True(t, ok)
	assert.Equal(t, 300*time.Millisecond, u.Position)

	// Seeking backwards always reports.
	_, ok = tel.apply(mpvEvent{Event: "property-change", Name: "time-pos", Data: json.RawMessage(`0.2`)})
	assert.True(t, ok)

	// Unloaded property reports null.
	_, ok = tel.apply(mpvEvent{Event: "property-change", Name: "time-pos", Data: json.RawMessage(`null`)})
	assert.False(t, ok)
}

func TestTelemetry_EndFile(t *testing.T) {
	tel := telemetry{tick: time.Second, duration: time.Minute, position: time.Minute}

	u, ok := tel.apply(mpvEvent{Event: "end-file", Reason: "eof"})
	require.True(t, ok)
	assert.True(t, u.Ended)
	assert.False(t, u.Playing)

	u, ok = tel.apply(mpvEvent{Event: "end-file", Reason: "error", FileError: "unrecognized file format"})
	require.True(t, ok)
	assert.ErrorContains(t, u.Err, "unrecognized file format")

	_, ok = tel.apply(mpvEvent{Event: "end-file", Reason: "stop"})
	assert.False(t, ok, "replacing the file is not an end")
}

// fakeMPV serves canned replies on a unix socket and records commands.
func fakeMPV(t *testing.T, reply func(cmd []any) string) (string, <-chan []any) {
	t.Helper()
	dir, err := os.MkdirTemp("", "deck")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "mpv.sock")

	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	received := make(chan []any, 16)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				scanner := bufio.NewScanner(conn)
				for scanner.Scan() {
					var cmd ipcCommand
					if json.Unmarshal(scanner.Bytes(), &cmd) != nil {
						return
					}
					received <- cmd.Command
					// An unrelated event precedes every reply.
					_, _ = conn.Write([]byte(`{"event":"playback-restart"}` + "\n" + reply(cmd.Command) + "\n"))
				}
			}(conn)
		}
	}()
	return path, received
}

func TestDoSendCommand_SkipsEvents(t *testing.T) {
	path, received := fakeMPV(t, func(_ []any) string {
		return `{"data":42.5,"error":"success"}`
	})

	data, err := doSendCommand(path, []any{"get_property", "time-pos"})
	require.NoError(t, err)
	assert.JSONEq(t, `42.5`, string(data))

	cmd := <-received
	assert.Equal(t, []any{"get_property", "time-pos"}, cmd)
}

func TestSendCommand_MPVErrorNotRetried(t *testing.T) {
	path, received := fakeMPV(t, func(_ []any) string {
		return `{"error":"property unavailable"}`
	})
	m := &MPV{socketPath: path}

	_, err := m.sendCommand("get_property", "duration")

	var mErr mpvError
	require.True(t, errors.As(err, &mErr))
	assert.Equal(t, mpvError("property unavailable"), mErr)
	assert.Len(t, received, 1)
}

func TestDoSendCommand_NoSocket(t *testing.T) {
	_, err := doSendCommand(filepath.Join(t.TempDir(), "missing.sock"), []any{"quit"})
	assert.ErrorContains(t, err, "connect")
}

func TestMPV_NotStartedIsIdle(t *testing.T) {
	m := NewMPV(MPVOptions{Binary: "/nonexistent/mpv"})
	defer m.Close()

	assert.NoError(t, m.Play())
	assert.NoError(t, m.SetVolume(0.5))
	tracks, err := m.Tracks()
	assert.NoError(t, err)
	assert.Empty(t, tracks)

	assert.Error(t, m.Load("/video/a.mkv"))
	assert.Error(t, m.Load("-bad"))
}
