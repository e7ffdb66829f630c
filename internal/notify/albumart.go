//go:build linux

package notify

import (
	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/mpris"
)

// iconFor returns the artwork of item, or the album art found next to it.
func iconFor(item media.Item) string {
	if item.Artwork != "" {
		return item.Artwork
	}
	return mpris.FindAlbumArt(item.Path())
}
