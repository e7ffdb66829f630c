// Package media holds the value types shared by the playback engine and its
// collaborators: playable items, selectable tracks and chapters.
package media

import (
	"path/filepath"
	"strings"
	"time"
)

// Kind is the media kind of an item.
type Kind int

const (
	KindAudio Kind = iota
	KindVideo
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindAudio:
		return "audio"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}

// Item is a playable media item supplied by a catalog.
// Items are immutable values; the engine only derives copies from them.
type Item struct {
	ID       string
	URI      string // file path or URL handed to the renderer
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
	Kind     Kind
	Artwork  string // optional artwork locator
	Subtitle string // optional explicit subtitle locator
	Metadata map[string]string

	// Transient fields, persisted by the history collaborator.
	LastPosition time.Duration
	PlayCount    int
}

// Path returns the local filesystem path of the item, or "" if the
// item is not a local file.
func (i Item) Path() string {
	if i.URI == "" {
		return ""
	}
	if strings.HasPrefix(i.URI, "file://") {
		return strings.TrimPrefix(i.URI, "file://")
	}
	if strings.Contains(i.URI, "://") {
		return ""
	}
	return i.URI
}

// DisplayTitle returns the title, falling back to the file name.
func (i Item) DisplayTitle() string {
	if i.Title != "" {
		return i.Title
	}
	if p := i.Path(); p != "" {
		return filepath.Base(p)
	}
	return i.URI
}

// WithPlay returns a copy of the item with its transient fields updated
// for a play that reached position.
func (i Item) WithPlay(position time.Duration) Item {
	c := i
	c.LastPosition = position
	c.PlayCount++
	if i.Metadata != nil {
		c.Metadata = make(map[string]string, len(i.Metadata))
		for k, v := range i.Metadata {
			c.Metadata[k] = v
		}
	}
	return c
}
