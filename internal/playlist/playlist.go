// Package playlist holds the queue model: an ordered list of media items,
// a cursor into it, the shuffle projection and the repeat mode.
package playlist

import "github.com/llehouerou/deck/internal/media"

// Playlist holds an ordered collection of items.
type Playlist struct {
	items []media.Item
}

// NewPlaylist creates a new empty playlist.
func NewPlaylist() *Playlist {
	return &Playlist{
		items: make([]media.Item, 0),
	}
}

// Add appends items to the playlist.
func (p *Playlist) Add(items ...media.Item) {
	p.items = append(p.items, items...)
}

// Remove removes the item at the given index.
// Returns false if index is out of bounds.
func (p *Playlist) Remove(index int) bool {
	if index < 0 || index >= len(p.items) {
		return false
	}
	p.items = append(p.items[:index], p.items[index+1:]...)
	return true
}

// Clear removes all items from the playlist.
func (p *Playlist) Clear() {
	p.items = p.items[:0]
}

// Replace swaps the whole content for a copy of items.
func (p *Playlist) Replace(items []media.Item) {
	p.items = append(p.items[:0], items...)
}

// Items returns a copy of all items.
func (p *Playlist) Items() []media.Item {
	result := make([]media.Item, len(p.items))
	copy(result, p.items)
	return result
}

// Item returns the item at the given index.
func (p *Playlist) Item(index int) (media.Item, bool) {
	if index < 0 || index >= len(p.items) {
		return media.Item{}, false
	}
	return p.items[index], true
}

// Len returns the number of items.
func (p *Playlist) Len() int {
	return len(p.items)
}

// Move moves the item at fromIndex to toIndex.
// Returns false if either index is out of bounds.
func (p *Playlist) Move(fromIndex, toIndex int) bool {
	if fromIndex < 0 || fromIndex >= len(p.items) {
		return false
	}
	if toIndex < 0 || toIndex >= len(p.items) {
		return false
	}
	if fromIndex == toIndex {
		return true
	}

	item := p.items[fromIndex]
	p.items = append(p.items[:fromIndex], p.items[fromIndex+1:]...)
	p.items = append(p.items[:toIndex], append([]media.Item{item}, p.items[toIndex:]...)...)
	return true
}

// movedIndex returns where idx ends up after moving from to to.
func movedIndex(idx, from, to int) int {
	switch {
	case idx == from:
		return to
	case from < to && idx > from && idx <= to:
		return idx - 1
	case from > to && idx >= to && idx < from:
		return idx + 1
	default:
		return idx
	}
}
