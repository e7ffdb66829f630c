package cmd

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/deck/internal/config"
	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/playback"
	"github.com/llehouerou/deck/internal/player"
	"github.com/llehouerou/deck/internal/playlist"
	"github.com/llehouerou/deck/internal/state"
	"github.com/llehouerou/deck/internal/tracks"
)

func TestChooseBackend(t *testing.T) {
	audio := media.Item{ID: "a", URI: "/music/a.flac", Kind: media.KindAudio}
	video := media.Item{ID: "v", URI: "/films/v.mkv", Kind: media.KindVideo}
	stream := media.Item{ID: "s", URI: "https://radio.example/live.mp3", Kind: media.KindAudio}

	tests := []struct {
		name    string
		backend string
		items   []media.Item
		want    string
	}{
		{"explicit beep", config.BackendBeep, []media.Item{video}, config.BackendBeep},
		{"explicit mpv", config.BackendMPV, []media.Item{audio}, config.BackendMPV},
		{"auto local audio", config.BackendAuto, []media.Item{audio}, config.BackendBeep},
		{"auto with video", config.BackendAuto, []media.Item{audio, video}, config.BackendMPV},
		{"auto with stream", config.BackendAuto, []media.Item{stream}, config.BackendMPV},
		{"auto empty queue", config.BackendAuto, nil, config.BackendBeep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chooseBackend(tt.backend, tt.items))
		})
	}
}

func TestParseRepeatMode(t *testing.T) {
	for in, want := range map[string]playlist.RepeatMode{
		"off": playlist.RepeatOff,
		"ALL": playlist.RepeatAll,
		"One": playlist.RepeatOne,
		"one": playlist.RepeatOne,
	} {
		got, err := parseRepeatMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := parseRepeatMode("sometimes")
	assert.Error(t, err)
}

func TestSessionLoad(t *testing.T) {
	items := []media.Item{
		{ID: "a", URI: "/music/a.flac"},
		{ID: "b", URI: "/music/b.flac"},
		{ID: "c", URI: "/music/c.flac"},
	}

	t.Run("plays from start index with modes", func(t *testing.T) {
		m := player.NewMock()
		s := &session{engine: playback.New(m)}
		defer s.engine.Close()

		require.NoError(t, s.load(items, sessionOptions{Start: 1, Repeat: "all"}))
		st := s.engine.State()
		assert.Equal(t, 1, st.CurrentIndex)
		assert.Equal(t, playlist.RepeatAll, st.RepeatMode)
		assert.Equal(t, []string{"/music/b.flac"}, m.LoadCalls())
	})

	t.Run("bad start index", func(t *testing.T) {
		s := &session{engine: playback.New(player.NewMock())}
		defer s.engine.Close()
		assert.ErrorIs(t, s.load(items, sessionOptions{Start: 5}), playlist.ErrInvalidIndex)
	})

	t.Run("bad repeat mode", func(t *testing.T) {
		s := &session{engine: playback.New(player.NewMock())}
		defer s.engine.Close()
		assert.Error(t, s.load(items, sessionOptions{Repeat: "twice"}))
	})

	t.Run("resume restores saved queue", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "deck.db")
		store, err := state.OpenPath(path)
		require.NoError(t, err)
		store.SaveQueue(state.QueueState{Items: items, CurrentIndex: 2, Position: time.Minute})
		require.NoError(t, store.Close())

		store, err = state.OpenPath(path)
		require.NoError(t, err)
		defer store.Close()

		s := &session{engine: playback.New(player.NewMock()), store: store}
		defer s.engine.Close()
		require.NoError(t, s.load(nil, sessionOptions{Resume: true}))
		item, ok := s.engine.CurrentItem()
		require.True(t, ok)
		assert.Equal(t, "c", item.ID)
		assert.Equal(t, media.KindAudio, s.Kind())
	})

	t.Run("nothing to load", func(t *testing.T) {
		s := &session{engine: playback.New(player.NewMock())}
		defer s.engine.Close()
		require.NoError(t, s.load(nil, sessionOptions{Resume: true}))
		_, ok := s.engine.CurrentItem()
		assert.False(t, ok)
	})
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "-", formatClock(0))
	assert.Equal(t, "1:05", formatClock(65*time.Second))
	assert.Equal(t, "1:00:00", formatClock(time.Hour))
	assert.Equal(t, "0:02", formatClock(1600*time.Millisecond))
}

func TestPrintHistory(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	printHistory(&buf, []state.HistoryEntry{
		{
			Item:         media.Item{ID: "a", URI: "/music/a.flac", Title: "Anthem", Artist: "Band", Duration: 4 * time.Minute},
			PlayCount:    3,
			LastPosition: 90 * time.Second,
			LastPlayedAt: now.Add(-2 * time.Hour),
		},
	}, now)

	out := buf.String()
	assert.Contains(t, out, "Anthem")
	assert.Contains(t, out, "Band")
	assert.Contains(t, out, "1:30 / 4:00")
	assert.Contains(t, out, "2 hours ago")

	buf.Reset()
	printHistory(&buf, nil, now)
	assert.Contains(t, buf.String(), "no plays recorded yet")
}

func TestPrintProbe(t *testing.T) {
	item := media.Item{ID: "/films/ep1.mkv", URI: "/films/ep1.mkv", Title: "ep1", Kind: media.KindVideo, Duration: 20 * time.Minute}
	tr := tracks.Tracks{
		Subtitle: []media.Track{{ID: "ext:ep1.en.srt", Type: media.TrackSubtitle, Language: "en", External: true, Path: "/films/ep1.en.srt", Selected: true}},
	}
	chapters := []media.Chapter{{ID: "0", Title: "Opening", Start: 0, End: 90 * time.Second}}

	var buf bytes.Buffer
	printProbe(&buf, item, tr, chapters)
	out := buf.String()
	assert.Contains(t, out, "video")
	assert.Contains(t, out, "20:00")
	assert.Contains(t, out, "/films/ep1.en.srt")
	assert.Contains(t, out, "Opening")
	assert.Contains(t, out, "1:30")

	buf.Reset()
	printProbe(&buf, item, tracks.Tracks{}, nil)
	assert.Contains(t, buf.String(), "none found")
}
