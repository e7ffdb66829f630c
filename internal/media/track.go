package media

import "time"

// TrackType identifies one of the three independent track lists.
type TrackType int

const (
	TrackVideo TrackType = iota
	TrackAudio
	TrackSubtitle
)

// String returns the track type name.
func (t TrackType) String() string {
	switch t {
	case TrackVideo:
		return "video"
	case TrackAudio:
		return "audio"
	case TrackSubtitle:
		return "subtitle"
	default:
		return "unknown"
	}
}

// UnknownLanguage is the language tag used when none can be derived.
const UnknownLanguage = "unknown"

// Track is a selectable video, audio or subtitle track.
type Track struct {
	ID       string
	Type     TrackType
	Title    string
	Language string
	Codec    string
	External bool   // discovered next to the item rather than embedded
	Path     string // external tracks only
	Selected bool
}

// Chapter is a named region of the current item.
type Chapter struct {
	ID    string
	Title string
	Start time.Duration
	End   time.Duration
}

// Contains reports whether pos falls within the chapter.
func (c Chapter) Contains(pos time.Duration) bool {
	return pos >= c.Start && pos < c.End
}
