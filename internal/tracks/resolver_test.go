package tracks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/player"
)

type stubProber struct {
	chapters []media.Chapter
	err      error
	calls    int
}

func (p *stubProber) Chapters(_ context.Context, _ string) ([]media.Chapter, error) {
	p.calls++
	return p.chapters, p.err
}

func video(path string) media.Item {
	return media.Item{ID: path, URI: path, Kind: media.KindVideo}
}

func TestResolveTracks_MergesEmbeddedAndSidecars(t *testing.T) {
	r := player.NewMock()
	r.SetTracks([]media.Track{
		{ID: "1", Type: media.TrackVideo, Selected: true},
		{ID: "1", Type: media.TrackAudio, Language: "jpn", Selected: true},
		{ID: "2", Type: media.TrackAudio, Language: "eng", Selected: true},
		{ID: "1", Type: media.TrackSubtitle, Language: "eng"},
	})
	res := NewResolver(WithFs(memFs(t, "/v/a.mkv", "/v/a.fr.srt")))

	got := res.ResolveTracks(r, video("/v/a.mkv"))

	assert.Len(t, got.Video, 1)
	require.Len(t, got.Audio, 2)
	assert.True(t, got.Audio[0].Selected)
	assert.False(t, got.Audio[1].Selected, "only one selected track per list")
	require.Len(t, got.Subtitle, 2)
	assert.Equal(t, "fr", got.Subtitle[1].Language)
	assert.True(t, got.Subtitle[1].External)
}

func TestResolveTracks_SkipsSidecarAlreadyLoaded(t *testing.T) {
	r := player.NewMock()
	r.SetTracks([]media.Track{
		{ID: "3", Type: media.TrackSubtitle, External: true, Path: "/v/a.fr.srt"},
	})
	res := NewResolver(WithFs(memFs(t, "/v/a.mkv", "/v/a.fr.srt")))

	got := res.ResolveTracks(r, video("/v/a.mkv"))

	require.Len(t, got.Subtitle, 1)
	assert.Equal(t, "3", got.Subtitle[0].ID)
}

func TestSelect_RecordsSelection(t *testing.T) {
	r := player.NewMock()
	tr := Tracks{Subtitle: []media.Track{
		{ID: "1", Type: media.TrackSubtitle, Selected: true},
		{ID: "2", Type: media.TrackSubtitle},
	}}

	next := tr.Subtitle[1]
	require.NoError(t, Select(r, &tr, media.TrackSubtitle, &next))
	sel, ok := tr.Selected(media.TrackSubtitle)
	require.True(t, ok)
	assert.Equal(t, "2", sel.ID)

	require.NoError(t, Select(r, &tr, media.TrackSubtitle, nil))
	_, ok = tr.Selected(media.TrackSubtitle)
	assert.False(t, ok, "nil disables subtitles")

	calls := r.Selections()
	require.Len(t, calls, 2)
	assert.Nil(t, calls[1].Track)
}

type failingSource struct{ *player.Mock }

func (failingSource) SelectTrack(media.TrackType, *media.Track) error {
	return player.ErrUnsupported
}

func TestSelect_RendererRejects(t *testing.T) {
	tr := Tracks{Audio: []media.Track{{ID: "1", Selected: true}, {ID: "2"}}}
	other := tr.Audio[1]

	err := Select(failingSource{player.NewMock()}, &tr, media.TrackAudio, &other)

	assert.ErrorIs(t, err, player.ErrUnsupported)
	sel, _ := tr.Selected(media.TrackAudio)
	assert.Equal(t, "1", sel.ID, "selection unchanged on failure")
}

func TestMarkSelected_DoesNotAliasClones(t *testing.T) {
	tr := Tracks{Audio: []media.Track{{ID: "1", Selected: true}, {ID: "2"}}}
	snapshot := tr.Clone()

	tr.MarkSelected(media.TrackAudio, "2")

	assert.True(t, snapshot.Audio[0].Selected)
}

func TestMergeSubtitles(t *testing.T) {
	tr := Tracks{Subtitle: []media.Track{
		{ID: "1", Type: media.TrackSubtitle},
		{ID: "ext:a.en.srt", Type: media.TrackSubtitle, External: true, Path: "/v/a.en.srt", Selected: true},
		{ID: "ext:a.de.srt", Type: media.TrackSubtitle, External: true, Path: "/v/a.de.srt"},
	}}
	fresh := []media.Track{
		{ID: "ext:a.en.srt", Type: media.TrackSubtitle, External: true, Path: "/v/a.en.srt"},
		{ID: "ext:a.fr.srt", Type: media.TrackSubtitle, External: true, Path: "/v/a.fr.srt"},
	}

	got := MergeSubtitles(tr, fresh)

	ids := []string{}
	for _, s := range got.Subtitle {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"1", "ext:a.en.srt", "ext:a.fr.srt"}, ids)
	sel, ok := got.Selected(media.TrackSubtitle)
	require.True(t, ok)
	assert.Equal(t, "ext:a.en.srt", sel.ID)
}

func TestDefaultSubtitle(t *testing.T) {
	tr := Tracks{Subtitle: []media.Track{
		{ID: "1", Type: media.TrackSubtitle},
		{ID: "ext:a.srt", Type: media.TrackSubtitle, External: true},
	}}

	got, ok := DefaultSubtitle(media.KindVideo, tr)
	require.True(t, ok)
	assert.Equal(t, "ext:a.srt", got.ID)

	_, ok = DefaultSubtitle(media.KindAudio, tr)
	assert.False(t, ok, "audio shows no subtitles by default")

	tr.MarkSelected(media.TrackSubtitle, "1")
	_, ok = DefaultSubtitle(media.KindVideo, tr)
	assert.False(t, ok, "renderer selection wins")
}

func TestResolveChapters_PrefersRenderer(t *testing.T) {
	r := player.NewMock()
	r.SetChapters([]media.Chapter{{ID: "0", Start: 0, End: time.Minute}})
	prober := &stubProber{}
	res := NewResolver(WithProber(prober))

	got := res.ResolveChapters(context.Background(), r, video("/v/a.mkv"), 2*time.Minute)

	assert.Len(t, got, 1)
	assert.Zero(t, prober.calls)
}

func TestResolveChapters_FallsBackToProber(t *testing.T) {
	prober := &stubProber{chapters: []media.Chapter{
		{ID: "1", Start: time.Minute, End: 3 * time.Minute},
		{ID: "0", Start: 0, End: time.Minute},
	}}
	res := NewResolver(WithProber(prober))

	got := res.ResolveChapters(context.Background(), player.NewMock(), video("/v/a.mkv"), 2*time.Minute)

	require.Len(t, got, 2)
	assert.Equal(t, "0", got[0].ID)
	assert.Equal(t, 2*time.Minute, got[1].End, "clipped to duration")
}

func TestResolveChapters_ProberErrorIsSwallowed(t *testing.T) {
	res := NewResolver(WithProber(&stubProber{err: errors.New("boom")}))

	got := res.ResolveChapters(context.Background(), player.NewMock(), video("/v/a.mkv"), time.Minute)

	assert.Empty(t, got)
}

func TestResolveChapters_StreamsAreNotProbed(t *testing.T) {
	prober := &stubProber{}
	res := NewResolver(WithProber(prober))

	res.ResolveChapters(context.Background(), player.NewMock(), video("https://example.com/a.mp4"), time.Minute)

	assert.Zero(t, prober.calls)
}

func TestNormalizeChapters(t *testing.T) {
	in := []media.Chapter{
		{ID: "b", Start: 30 * time.Second, End: 20 * time.Second},
		{ID: "a", Start: 0, End: 45 * time.Second},
		{ID: "late", Start: 5 * time.Minute, End: 6 * time.Minute},
	}

	got := NormalizeChapters(in, time.Minute)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, 30*time.Second, got[0].End, "overlap trimmed")
	assert.Equal(t, time.Minute, got[1].End, "invalid end extended to duration")
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].End, got[i].Start)
	}
}

func TestChapterNavigation(t *testing.T) {
	chapters := []media.Chapter{
		{ID: "0", Start: 0, End: 60 * time.Second},
		{ID: "1", Start: 60 * time.Second, End: 120 * time.Second},
		{ID: "2", Start: 120 * time.Second, End: 180 * time.Second},
	}

	t.Run("next is first start after position", func(t *testing.T) {
		c, ok := NextChapter(chapters, 60*time.Second)
		require.True(t, ok)
		assert.Equal(t, "2", c.ID)

		_, ok = NextChapter(chapters, 150*time.Second)
		assert.False(t, ok)
	})

	t.Run("previous skips chapter just entered", func(t *testing.T) {
		c, ok := PreviousChapter(chapters, 62*time.Second, DefaultChapterThreshold)
		require.True(t, ok)
		assert.Equal(t, "0", c.ID)

		c, ok = PreviousChapter(chapters, 70*time.Second, DefaultChapterThreshold)
		require.True(t, ok)
		assert.Equal(t, "1", c.ID)

		_, ok = PreviousChapter(chapters, 3*time.Second, DefaultChapterThreshold)
		assert.False(t, ok)
	})

	t.Run("current contains position", func(t *testing.T) {
		c, ok := CurrentChapter(chapters, 90*time.Second)
		require.True(t, ok)
		assert.Equal(t, "1", c.ID)
	})
}

func TestDiscoverSubtitles_ExplicitLocator(t *testing.T) {
	res := NewResolver(WithFs(memFs(t, "/v/a.mkv", "/v/a.en.srt")))
	item := video("/v/a.mkv")
	item.Subtitle = "/subs/a-custom.ass"

	subs := res.DiscoverSubtitles(item)

	require.Len(t, subs, 2)
	assert.Equal(t, "/subs/a-custom.ass", subs[1].Path)
	assert.Equal(t, "ass", subs[1].Codec)

	item.Subtitle = "/v/a.en.srt"
	assert.Len(t, res.DiscoverSubtitles(item), 1, "explicit locator already discovered")
}
