// Package tracks resolves the selectable video, audio and subtitle tracks
// and the chapter markers of the loaded media item.
package tracks

import (
	"cmp"
	"context"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/llehouerou/deck/internal/logger"
	"github.com/llehouerou/deck/internal/media"
)

// DefaultChapterThreshold is how far past a chapter start "previous
// chapter" still targets the chapter before it.
const DefaultChapterThreshold = 5 * time.Second

// Source is the renderer side of track and chapter resolution.
type Source interface {
	Tracks() ([]media.Track, error)
	Chapters() ([]media.Chapter, error)
	SelectTrack(typ media.TrackType, track *media.Track) error
}

// Tracks holds the three track lists of an item. Each list has at most
// one selected track.
type Tracks struct {
	Video    []media.Track
	Audio    []media.Track
	Subtitle []media.Track
}

// List returns the list for typ.
func (t Tracks) List(typ media.TrackType) []media.Track {
	switch typ {
	case media.TrackVideo:
		return t.Video
	case media.TrackAudio:
		return t.Audio
	default:
		return t.Subtitle
	}
}

func (t *Tracks) list(typ media.TrackType) *[]media.Track {
	switch typ {
	case media.TrackVideo:
		return &t.Video
	case media.TrackAudio:
		return &t.Audio
	default:
		return &t.Subtitle
	}
}

// Selected returns the selected track of typ, if any.
func (t Tracks) Selected(typ media.TrackType) (media.Track, bool) {
	return lo.Find(t.List(typ), func(tr media.Track) bool { return tr.Selected })
}

// Find returns the track of typ with the given ID.
func (t Tracks) Find(typ media.TrackType, id string) (media.Track, bool) {
	return lo.Find(t.List(typ), func(tr media.Track) bool { return tr.ID == id })
}

// Clone returns a deep copy.
func (t Tracks) Clone() Tracks {
	return Tracks{
		Video:    slices.Clone(t.Video),
		Audio:    slices.Clone(t.Audio),
		Subtitle: slices.Clone(t.Subtitle),
	}
}

// IsEmpty reports whether no track of any type is known.
func (t Tracks) IsEmpty() bool {
	return len(t.Video) == 0 && len(t.Audio) == 0 && len(t.Subtitle) == 0
}

// MarkSelected selects the track with id in its list and deselects the
// others. An empty id deselects the whole list.
func (t *Tracks) MarkSelected(typ media.TrackType, id string) {
	list := t.list(typ)
	*list = slices.Clone(*list)
	for i := range *list {
		(*list)[i].Selected = id != "" && (*list)[i].ID == id
	}
}

func (t *Tracks) add(tr media.Track) {
	list := t.list(tr.Type)
	*list = append(*list, tr)
}

// normalize keeps only the first selected track of each list.
func (t *Tracks) normalize() {
	for _, typ := range []media.TrackType{media.TrackVideo, media.TrackAudio, media.TrackSubtitle} {
		list := *t.list(typ)
		seen := false
		for i := range list {
			if list[i].Selected && seen {
				list[i].Selected = false
			}
			seen = seen || list[i].Selected
		}
	}
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFs sets the filesystem scanned for subtitle sidecars.
func WithFs(fs afero.Fs) Option {
	return func(r *Resolver) { r.fs = fs }
}

// WithSubtitleExtensions sets the recognized sidecar extensions.
func WithSubtitleExtensions(exts []string) Option {
	return func(r *Resolver) {
		if len(exts) > 0 {
			r.exts = exts
		}
	}
}

// WithProber sets the fallback chapter source used when the renderer
// reports none.
func WithProber(p ChapterProber) Option {
	return func(r *Resolver) { r.prober = p }
}

// Resolver enumerates tracks and chapters for an item. It holds no
// per-item state and is safe for concurrent use.
type Resolver struct {
	fs     afero.Fs
	exts   []string
	prober ChapterProber
}

// NewResolver creates a resolver reading the OS filesystem.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		fs:   afero.NewOsFs(),
		exts: DefaultSubtitleExtensions,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Extensions returns the recognized subtitle extensions.
func (r *Resolver) Extensions() []string {
	return r.exts
}

// ResolveTracks merges the renderer's embedded tracks with subtitle
// sidecars found next to the item. Renderer errors yield no embedded
// tracks; sidecars already loaded by the renderer are not repeated.
func (r *Resolver) ResolveTracks(src Source, item media.Item) Tracks {
	var t Tracks
	embedded, err := src.Tracks()
	if err != nil {
		logger.Log.Debug().Err(err).Str("item", item.ID).Msg("renderer track query failed")
	}
	for _, tr := range embedded {
		t.add(tr)
	}

	loaded := lo.FilterMap(t.Subtitle, func(tr media.Track, _ int) (string, bool) {
		return tr.Path, tr.External && tr.Path != ""
	})
	for _, sub := range r.DiscoverSubtitles(item) {
		if !slices.Contains(loaded, sub.Path) {
			t.add(sub)
		}
	}
	t.normalize()
	return t
}

// DiscoverSubtitles returns the sidecar subtitle tracks of item, plus the
// item's explicit subtitle locator if it has one.
func (r *Resolver) DiscoverSubtitles(item media.Item) []media.Track {
	subs := DiscoverSubtitles(r.fs, item.Path(), r.exts)
	if item.Subtitle == "" || lo.ContainsBy(subs, func(s media.Track) bool { return s.Path == item.Subtitle }) {
		return subs
	}
	name := filepath.Base(item.Subtitle)
	return append(subs, media.Track{
		ID:       ExternalIDPrefix + name,
		Type:     media.TrackSubtitle,
		Title:    name,
		Language: media.UnknownLanguage,
		Codec:    strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."),
		External: true,
		Path:     item.Subtitle,
	})
}

// MergeSubtitles replaces the sidecar tracks of t with subs, keeping the
// current selection when the selected track is still present.
func MergeSubtitles(t Tracks, subs []media.Track) Tracks {
	out := t.Clone()
	selected, hasSelected := t.Selected(media.TrackSubtitle)

	out.Subtitle = lo.Reject(out.Subtitle, func(tr media.Track, _ int) bool {
		return strings.HasPrefix(tr.ID, ExternalIDPrefix)
	})
	for _, s := range subs {
		if lo.ContainsBy(out.Subtitle, func(tr media.Track) bool { return tr.External && tr.Path == s.Path }) {
			continue
		}
		s.Selected = false
		out.Subtitle = append(out.Subtitle, s)
	}
	if hasSelected {
		out.MarkSelected(media.TrackSubtitle, selected.ID)
	}
	return out
}

// DefaultSubtitle returns the subtitle a freshly loaded item should show
// when the renderer selected none: the first sidecar for video, nothing
// for audio.
func DefaultSubtitle(kind media.Kind, t Tracks) (media.Track, bool) {
	if kind != media.KindVideo {
		return media.Track{}, false
	}
	if _, ok := t.Selected(media.TrackSubtitle); ok {
		return media.Track{}, false
	}
	return lo.Find(t.Subtitle, func(tr media.Track) bool { return tr.External })
}

// ResolveChapters returns the item's chapters ordered and clipped to
// duration. Renderer chapters win; the prober is consulted for local
// files when the renderer reports none.
func (r *Resolver) ResolveChapters(ctx context.Context, src Source, item media.Item, duration time.Duration) []media.Chapter {
	chapters, err := src.Chapters()
	if err != nil {
		logger.Log.Debug().Err(err).Str("item", item.ID).Msg("renderer chapter query failed")
	}
	if len(chapters) == 0 && r.prober != nil && item.Path() != "" {
		chapters, err = r.prober.Chapters(ctx, item.Path())
		if err != nil {
			logger.Log.Debug().Err(err).Str("item", item.ID).Msg("chapter probe failed")
		}
	}
	return NormalizeChapters(chapters, duration)
}

// NormalizeChapters sorts chapters by start, drops those starting at or
// past a known duration, and trims each end so no two overlap.
func NormalizeChapters(chapters []media.Chapter, duration time.Duration) []media.Chapter {
	out := slices.Clone(chapters)
	slices.SortStableFunc(out, func(a, b media.Chapter) int {
		return cmp.Compare(a.Start, b.Start)
	})
	if duration > 0 {
		out = lo.Filter(out, func(c media.Chapter, _ int) bool { return c.Start < duration })
	}
	for i := range out {
		limit := duration
		if i+1 < len(out) {
			limit = out[i+1].Start
		}
		if out[i].End <= out[i].Start || (limit > 0 && out[i].End > limit) {
			out[i].End = max(limit, out[i].Start)
		}
	}
	return out
}

// Select forwards a selection to the renderer and, on success, records it
// in t. A nil track disables the list.
func Select(src Source, t *Tracks, typ media.TrackType, track *media.Track) error {
	if err := src.SelectTrack(typ, track); err != nil {
		return err
	}
	id := ""
	if track != nil {
		id = track.ID
	}
	t.MarkSelected(typ, id)
	return nil
}

// CurrentChapter returns the chapter containing pos.
func CurrentChapter(chapters []media.Chapter, pos time.Duration) (media.Chapter, bool) {
	return lo.Find(chapters, func(c media.Chapter) bool { return c.Contains(pos) })
}

// NextChapter returns the first chapter starting after pos.
func NextChapter(chapters []media.Chapter, pos time.Duration) (media.Chapter, bool) {
	return lo.Find(chapters, func(c media.Chapter) bool { return c.Start > pos })
}

// PreviousChapter returns the last chapter starting more than threshold
// before pos, so that repeated presses at a boundary keep moving back.
func PreviousChapter(chapters []media.Chapter, pos, threshold time.Duration) (media.Chapter, bool) {
	for i := len(chapters) - 1; i >= 0; i-- {
		if chapters[i].Start < pos-threshold {
			return chapters[i], true
		}
	}
	return media.Chapter{}, false
}
