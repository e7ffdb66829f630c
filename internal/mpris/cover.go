//go:build linux

package mpris

import (
	"os"
	"path/filepath"

	"github.com/llehouerou/deck/internal/media"
)

// coverNames lists common album art filenames in priority order.
var coverNames = []string{
	"cover.jpg", "cover.png", "cover.jpeg",
	"folder.jpg", "folder.png", "folder.jpeg",
	"album.jpg", "album.png", "album.jpeg",
	"front.jpg", "front.png", "front.jpeg",
}

// artURL returns the art URL of item: its own artwork when set, otherwise
// a cover image next to a local file.
func artURL(item media.Item) string {
	art := item.Artwork
	if art == "" {
		art = FindAlbumArt(item.Path())
	}
	switch {
	case art == "":
		return ""
	case filepath.IsAbs(art):
		return "file://" + art
	default:
		return art
	}
}

// FindAlbumArt looks for album art in the same directory as path.
// Returns the path to the art file, or empty string if not found.
func FindAlbumArt(path string) string {
	if path == "" {
		return ""
	}
	dir := filepath.Dir(path)
	for _, name := range coverNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
