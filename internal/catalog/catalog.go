// Package catalog builds media items from files, directories and stream
// URLs for queue construction.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/llehouerou/deck/internal/logger"
	"github.com/llehouerou/deck/internal/media"
)

// ErrNotPlayable is returned for files without a supported extension.
var ErrNotPlayable = errors.New("not a playable file")

// Common artwork file names looked up next to audio files.
var artworkFilenames = []string{
	"cover.jpg", "cover.jpeg", "cover.png",
	"folder.jpg", "folder.jpeg", "folder.png",
	"front.jpg", "front.jpeg", "front.png",
}

// Catalog resolves locators into media items.
type Catalog struct {
	fs afero.Fs
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithFs sets the filesystem read by the catalog.
func WithFs(fs afero.Fs) Option {
	return func(c *Catalog) { c.fs = fs }
}

// New creates a catalog reading the OS filesystem.
func New(opts ...Option) *Catalog {
	c := &Catalog{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Items expands locators into items, in order. Directories are walked
// recursively in lexical order and unplayable files inside them are
// skipped; an unplayable file given directly is an error.
func (c *Catalog) Items(locators ...string) ([]media.Item, error) {
	var items []media.Item
	for _, loc := range locators {
		if isStream(loc) {
			items = append(items, streamItem(loc))
			continue
		}
		info, err := c.fs.Stat(loc)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", loc, err)
		}
		if !info.IsDir() {
			item, err := c.Item(loc)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			continue
		}
		found, err := c.walk(loc)
		if err != nil {
			return nil, err
		}
		items = append(items, found...)
	}
	return lo.UniqBy(items, func(it media.Item) string { return it.ID }), nil
}

func (c *Catalog) walk(root string) ([]media.Item, error) {
	var items []media.Item
	err := afero.Walk(c.fs, root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			logger.Log.Debug().Err(walkErr).Str("path", path).Msg("catalog walk skipped entry")
			return nil
		}
		if info.IsDir() || !media.IsPlayable(path) {
			return nil
		}
		item, err := c.Item(path)
		if err != nil {
			logger.Log.Debug().Err(err).Str("path", path).Msg("catalog skipped file")
			return nil
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("catalog walk %s: %w", root, err)
	}
	return items, nil
}

// Item builds the item for a single local file. Audio files get their
// title, artist and album from tags when readable.
func (c *Catalog) Item(path string) (media.Item, error) {
	kind, ok := media.KindOf(path)
	if !ok {
		return media.Item{}, fmt.Errorf("%w: %s", ErrNotPlayable, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	item := media.Item{
		ID:    path,
		URI:   path,
		Title: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Kind:  kind,
	}
	if kind == media.KindAudio {
		c.readTags(&item)
		item.Artwork = c.findArtwork(filepath.Dir(path))
	}
	return item, nil
}

func (c *Catalog) readTags(item *media.Item) {
	f, err := c.fs.Open(item.URI)
	if err != nil {
		logger.Log.Debug().Err(err).Str("path", item.URI).Msg("tag read failed")
		return
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		logger.Log.Debug().Err(err).Str("path", item.URI).Msg("no readable tags")
		return
	}
	if t := strings.TrimSpace(m.Title()); t != "" {
		item.Title = t
	}
	item.Artist = m.Artist()
	if item.Artist == "" {
		item.Artist = m.AlbumArtist()
	}
	item.Album = m.Album()

	meta := map[string]string{
		"format": string(m.Format()),
	}
	if g := m.Genre(); g != "" {
		meta["genre"] = g
	}
	if y := m.Year(); y > 0 {
		meta["year"] = strconv.Itoa(y)
	}
	if n, _ := m.Track(); n > 0 {
		meta["track"] = strconv.Itoa(n)
	}
	item.Metadata = meta
}

func (c *Catalog) findArtwork(dir string) string {
	path, ok := lo.Find(lo.Map(artworkFilenames, func(name string, _ int) string {
		return filepath.Join(dir, name)
	}), func(p string) bool {
		_, err := c.fs.Stat(p)
		return err == nil
	})
	if !ok {
		return ""
	}
	return path
}

func isStream(loc string) bool {
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
}

func streamItem(url string) media.Item {
	kind, ok := media.KindOf(strings.SplitN(url, "?", 2)[0])
	if !ok {
		kind = media.KindVideo
	}
	return media.Item{ID: url, URI: url, Title: url, Kind: kind}
}
