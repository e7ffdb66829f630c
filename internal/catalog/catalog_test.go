package catalog

import (
	"errors"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/deck/internal/media"
)

// id3v1 builds a file body carrying an ID3v1 trailer.
func id3v1(title, artist, album string) []byte {
	field := func(s string, n int) []byte {
		b := make([]byte, n)
		copy(b, s)
		return b
	}
	body := make([]byte, 256)
	body = append(body, "TAG"...)
	body = append(body, field(title, 30)...)
	body = append(body, field(artist, 30)...)
	body = append(body, field(album, 30)...)
	body = append(body, field("1999", 4)...)
	body = append(body, field("", 30)...)
	return append(body, 255)
}

func newFs(t *testing.T, files map[string][]byte) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, data := range files {
		require.NoError(t, afero.WriteFile(fs, path, data, 0o644))
	}
	return fs
}

func TestItems_WalksDirectoryInOrder(t *testing.T) {
	fs := newFs(t, map[string][]byte{
		"/music/b.flac":         nil,
		"/music/a.mp3":          nil,
		"/music/notes.txt":      nil,
		"/music/cd2/c.ogg":      nil,
		"/music/film/ep1.mkv":   nil,
		"/music/film/ep1.srt":   nil,
		"/music/cover.jpg":      nil,
		"/music/cd2/folder.png": nil,
	})
	c := New(WithFs(fs))

	items, err := c.Items("/music")
	require.NoError(t, err)

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	assert.Equal(t, []string{"/music/a.mp3", "/music/b.flac", "/music/cd2/c.ogg", "/music/film/ep1.mkv"}, ids)

	assert.Equal(t, media.KindAudio, items[0].Kind)
	assert.Equal(t, "a", items[0].Title)
	assert.Equal(t, "/music/cover.jpg", items[0].Artwork)
	assert.Equal(t, "/music/cd2/folder.png", items[2].Artwork)
	assert.Equal(t, media.KindVideo, items[3].Kind)
	assert.Empty(t, items[3].Artwork)
}

func TestItems_ReadsTags(t *testing.T) {
	fs := newFs(t, map[string][]byte{
		"/music/track.mp3": id3v1("Song", "Band", "Record"),
	})
	c := New(WithFs(fs))

	item, err := c.Item("/music/track.mp3")
	require.NoError(t, err)
	assert.Equal(t, "Song", item.Title)
	assert.Equal(t, "Band", item.Artist)
	assert.Equal(t, "Record", item.Album)
	assert.Equal(t, "1999", item.Metadata["year"])
}

func TestItems_StreamsPassThrough(t *testing.T) {
	c := New(WithFs(afero.NewMemMapFs()))

	items, err := c.Items("https://example.com/live.mp3?token=x", "https://example.com/stream")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, media.KindAudio, items[0].Kind)
	assert.Equal(t, media.KindVideo, items[1].Kind)
	assert.Equal(t, "https://example.com/stream", items[1].URI)
}

func TestItems_Errors(t *testing.T) {
	fs := newFs(t, map[string][]byte{"/docs/readme.txt": nil})
	c := New(WithFs(fs))

	_, err := c.Items("/missing")
	assert.True(t, errors.Is(err, os.ErrNotExist), "err = %v", err)

	_, err = c.Items("/docs/readme.txt")
	assert.ErrorIs(t, err, ErrNotPlayable)
}

func TestItems_Deduplicates(t *testing.T) {
	fs := newFs(t, map[string][]byte{"/music/a.mp3": nil})
	c := New(WithFs(fs))

	items, err := c.Items("/music/a.mp3", "/music")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
