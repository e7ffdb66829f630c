//go:build !linux

package notify

import "github.com/llehouerou/deck/internal/media"

func iconFor(item media.Item) string {
	return item.Artwork
}
