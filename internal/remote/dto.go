package remote

import (
	"strings"

	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/playback"
	"github.com/llehouerou/deck/internal/tracks"
)

// ItemResponse describes a queue item.
type ItemResponse struct {
	ID         string `json:"id"`
	URI        string `json:"uri"`
	Title      string `json:"title"`
	Artist     string `json:"artist,omitempty"`
	Album      string `json:"album,omitempty"`
	Kind       string `json:"kind"`
	DurationMS int64  `json:"duration_ms"`
}

// ABLoopResponse describes the A-B loop markers.
type ABLoopResponse struct {
	StartMS  int64 `json:"start_ms"`
	EndMS    int64 `json:"end_ms"`
	StartSet bool  `json:"start_set"`
	Active   bool  `json:"active"`
}

// StateResponse is the engine snapshot returned by GET /state and by
// every command.
type StateResponse struct {
	Phase            string         `json:"phase"`
	Playing          bool           `json:"playing"`
	PositionMS       int64          `json:"position_ms"`
	DurationMS       int64          `json:"duration_ms"`
	Speed            float64        `json:"speed"`
	Volume           float64        `json:"volume"`
	Repeat           string         `json:"repeat"`
	Shuffle          bool           `json:"shuffle"`
	Index            int            `json:"index"`
	Total            int            `json:"total"`
	Error            string         `json:"error,omitempty"`
	Item             *ItemResponse  `json:"item,omitempty"`
	Chapter          string         `json:"chapter,omitempty"`
	ABLoop           ABLoopResponse `json:"ab_loop"`
	SleepRemainingMS int64          `json:"sleep_remaining_ms"`
	SleepActive      bool           `json:"sleep_active"`
}

// QueueResponse lists the queue in play order.
type QueueResponse struct {
	Items []ItemResponse `json:"items"`
	Index int            `json:"index"`
}

// TrackResponse describes a selectable track.
type TrackResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	Language string `json:"language"`
	External bool   `json:"external"`
	Selected bool   `json:"selected"`
}

// ChapterResponse describes a chapter.
type ChapterResponse struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	StartMS int64  `json:"start_ms"`
	EndMS   int64  `json:"end_ms"`
}

// TracksResponse lists the tracks and chapters of the current item.
type TracksResponse struct {
	Video    []TrackResponse   `json:"video"`
	Audio    []TrackResponse   `json:"audio"`
	Subtitle []TrackResponse   `json:"subtitle"`
	Chapters []ChapterResponse `json:"chapters"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func itemResponse(it media.Item) ItemResponse {
	return ItemResponse{
		ID:         it.ID,
		URI:        it.URI,
		Title:      it.DisplayTitle(),
		Artist:     it.Artist,
		Album:      it.Album,
		Kind:       it.Kind.String(),
		DurationMS: it.Duration.Milliseconds(),
	}
}

func stateResponse(s playback.Service) StateResponse {
	st := s.State()
	ab := s.ABLoop()
	resp := StateResponse{
		Phase:      strings.ToLower(st.Phase.String()),
		Playing:    st.IsPlaying,
		PositionMS: st.Position.Milliseconds(),
		DurationMS: st.Duration.Milliseconds(),
		Speed:      st.Speed,
		Volume:     st.Volume,
		Repeat:     strings.ToLower(st.RepeatMode.String()),
		Shuffle:    st.Shuffle,
		Index:      st.CurrentIndex,
		Total:      st.TotalItems,
		ABLoop: ABLoopResponse{
			StartMS:  ab.Start.Milliseconds(),
			EndMS:    ab.End.Milliseconds(),
			StartSet: ab.StartSet,
			Active:   ab.Active,
		},
		SleepRemainingMS: s.SleepTimerRemaining().Milliseconds(),
		SleepActive:      s.SleepTimerActive(),
	}
	if st.Err != nil {
		resp.Error = st.Err.Error()
	}
	if it, ok := s.CurrentItem(); ok {
		ir := itemResponse(it)
		resp.Item = &ir
	}
	if c, ok := s.CurrentChapter(); ok {
		resp.Chapter = c.Title
	}
	return resp
}

func trackResponses(list []media.Track) []TrackResponse {
	out := make([]TrackResponse, 0, len(list))
	for _, t := range list {
		out = append(out, TrackResponse{
			ID:       t.ID,
			Title:    t.Title,
			Language: t.Language,
			External: t.External,
			Selected: t.Selected,
		})
	}
	return out
}

func tracksResponse(t tracks.Tracks, chapters []media.Chapter) TracksResponse {
	resp := TracksResponse{
		Video:    trackResponses(t.Video),
		Audio:    trackResponses(t.Audio),
		Subtitle: trackResponses(t.Subtitle),
		Chapters: make([]ChapterResponse, 0, len(chapters)),
	}
	for _, c := range chapters {
		resp.Chapters = append(resp.Chapters, ChapterResponse{
			ID:      c.ID,
			Title:   c.Title,
			StartMS: c.Start.Milliseconds(),
			EndMS:   c.End.Milliseconds(),
		})
	}
	return resp
}
