package playlist

import (
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/llehouerou/deck/internal/media"
)

// ErrInvalidIndex is returned when a queue operation targets an index
// outside the queue.
var ErrInvalidIndex = errors.New("invalid queue index")

// DefaultRestartThreshold is how far into an item Previous restarts it
// instead of going back to the prior item.
const DefaultRestartThreshold = 3 * time.Second

// RepeatMode defines what happens when navigation runs past either end.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatOne
)

// String returns the repeat mode name.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "Off"
	case RepeatAll:
		return "All"
	case RepeatOne:
		return "One"
	default:
		return "Unknown"
	}
}

// ParseRepeatMode parses "off", "all" or "one", ignoring case.
func ParseRepeatMode(s string) (RepeatMode, bool) {
	switch strings.ToLower(s) {
	case "off":
		return RepeatOff, true
	case "all":
		return RepeatAll, true
	case "one":
		return RepeatOne, true
	default:
		return RepeatOff, false
	}
}

// Option configures a Queue.
type Option func(*Queue)

// WithRand sets the randomness source used to build shuffle permutations.
func WithRand(r *rand.Rand) Option {
	return func(q *Queue) { q.rng = r }
}

// WithRestartThreshold sets the Previous restart threshold.
func WithRestartThreshold(d time.Duration) Option {
	return func(q *Queue) { q.restartThreshold = d }
}

// Queue is the playback order: items, a cursor into them, an optional
// shuffle projection and a repeat mode. It performs no I/O.
//
// While shuffled, navigation walks shuffled (a permutation of item
// indices) but current always indexes items directly.
type Queue struct {
	playlist *Playlist
	current  int // -1 when empty

	shuffled   []int        // nil when shuffle is off
	shufflePos int          // position of current within shuffled
	original   []media.Item // order captured when shuffle was enabled

	repeat           RepeatMode
	restartThreshold time.Duration
	rng              *rand.Rand
}

// NewQueue creates a new empty queue.
func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		playlist:         NewPlaylist(),
		current:          -1,
		restartThreshold: DefaultRestartThreshold,
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.rng == nil {
		q.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // shuffle order only
	}
	return q
}

// SetQueue replaces the queue with items and positions the cursor at
// start. Shuffle state is cleared. An out-of-range start on a non-empty
// list leaves the queue untouched and returns ErrInvalidIndex.
func (q *Queue) SetQueue(items []media.Item, start int) error {
	if len(items) > 0 && (start < 0 || start >= len(items)) {
		return ErrInvalidIndex
	}
	q.clearShuffle()
	q.playlist.Replace(items)
	if len(items) == 0 {
		q.current = -1
		return nil
	}
	q.current = start
	return nil
}

// Current returns the item under the cursor.
func (q *Queue) Current() (media.Item, bool) {
	return q.playlist.Item(q.current)
}

// CurrentIndex returns the cursor (-1 if the queue is empty).
func (q *Queue) CurrentIndex() int {
	return q.current
}

// Items returns a copy of the items in canonical order.
func (q *Queue) Items() []media.Item {
	return q.playlist.Items()
}

// Item returns the item at index.
func (q *Queue) Item(index int) (media.Item, bool) {
	return q.playlist.Item(index)
}

// Len returns the number of items.
func (q *Queue) Len() int {
	return q.playlist.Len()
}

// IsEmpty returns true if the queue has no items.
func (q *Queue) IsEmpty() bool {
	return q.playlist.Len() == 0
}

// RepeatMode returns the repeat mode.
func (q *Queue) RepeatMode() RepeatMode {
	return q.repeat
}

// SetRepeatMode sets the repeat mode.
func (q *Queue) SetRepeatMode(mode RepeatMode) {
	q.repeat = mode
}

// Shuffle reports whether the shuffle projection is active.
func (q *Queue) Shuffle() bool {
	return q.shuffled != nil
}

// ShuffledIndices returns a copy of the shuffle permutation, or nil.
func (q *Queue) ShuffledIndices() []int {
	if q.shuffled == nil {
		return nil
	}
	return slices.Clone(q.shuffled)
}

// OriginalItems returns the order captured when shuffle was enabled, or nil.
func (q *Queue) OriginalItems() []media.Item {
	if q.original == nil {
		return nil
	}
	return slices.Clone(q.original)
}

// Next moves the cursor to the next index according to the repeat and
// shuffle modes and returns it. It returns false when the end is reached
// under RepeatOff; the cursor does not move in that case.
func (q *Queue) Next() (int, bool) {
	if q.repeat == RepeatOne && !q.IsEmpty() && q.current >= 0 {
		return q.current, true
	}
	return q.advance(q.repeat == RepeatAll)
}

// Skip moves past the current item even under RepeatOne. It wraps only
// under RepeatAll.
func (q *Queue) Skip() (int, bool) {
	return q.advance(q.repeat == RepeatAll)
}

func (q *Queue) advance(wrap bool) (int, bool) {
	if q.IsEmpty() || q.current < 0 {
		return -1, false
	}

	if q.shuffled != nil {
		pos := q.shufflePos + 1
		if pos >= len(q.shuffled) {
			if !wrap {
				return -1, false
			}
			pos = 0
		}
		q.shufflePos = pos
		q.current = q.shuffled[pos]
		return q.current, true
	}

	next := q.current + 1
	if next >= q.Len() {
		if !wrap {
			return -1, false
		}
		next = 0
	}
	q.current = next
	return next, true
}

// Previous moves the cursor back one step when position is within the
// restart threshold of the item start; otherwise, or when there is no
// prior item, it returns the current index meaning "restart".
func (q *Queue) Previous(position time.Duration) (int, bool) {
	if q.IsEmpty() || q.current < 0 {
		return -1, false
	}
	if position >= q.restartThreshold || q.repeat == RepeatOne {
		return q.current, true
	}

	if q.shuffled != nil {
		pos := q.shufflePos - 1
		if pos < 0 {
			if q.repeat != RepeatAll {
				return q.current, true
			}
			pos = len(q.shuffled) - 1
		}
		q.shufflePos = pos
		q.current = q.shuffled[pos]
		return q.current, true
	}

	prev := q.current - 1
	if prev < 0 {
		if q.repeat != RepeatAll {
			return q.current, true
		}
		prev = q.Len() - 1
	}
	q.current = prev
	return prev, true
}

// HasNext reports whether Next would succeed without moving the cursor.
func (q *Queue) HasNext() bool {
	if q.IsEmpty() || q.current < 0 {
		return false
	}
	if q.repeat != RepeatOff {
		return true
	}
	if q.shuffled != nil {
		return q.shufflePos < len(q.shuffled)-1
	}
	return q.current < q.Len()-1
}

// JumpTo moves the cursor to index.
func (q *Queue) JumpTo(index int) error {
	if index < 0 || index >= q.Len() {
		return ErrInvalidIndex
	}
	q.current = index
	if q.shuffled != nil {
		q.shufflePos = slices.Index(q.shuffled, index)
	}
	return nil
}

// SetShuffle enables or disables the shuffle projection. Enabling keeps
// the current item at the head of a fresh permutation; disabling
// restores the order captured on enable. Enabling an empty queue is a no-op.
func (q *Queue) SetShuffle(enabled bool) {
	if !enabled {
		if q.original != nil {
			q.playlist.Replace(q.original)
		}
		q.clearShuffle()
		return
	}
	if q.IsEmpty() {
		return
	}
	if q.original == nil {
		q.original = q.playlist.Items()
	}
	q.shuffled = q.permutation()
	q.shufflePos = 0
}

// permutation returns all indices with current first and the rest in
// random order.
func (q *Queue) permutation() []int {
	others := lo.Filter(lo.Range(q.Len()), func(i int, _ int) bool {
		return i != q.current
	})
	q.rng.Shuffle(len(others), func(i, j int) {
		others[i], others[j] = others[j], others[i]
	})
	if q.current < 0 {
		return others
	}
	return append([]int{q.current}, others...)
}

func (q *Queue) clearShuffle() {
	q.shuffled = nil
	q.shufflePos = 0
	q.original = nil
}

// Add appends items. An empty queue gets its cursor on the first added
// item. While shuffled, new indices are placed at random upcoming positions.
func (q *Queue) Add(items ...media.Item) {
	if len(items) == 0 {
		return
	}
	start := q.Len()
	q.playlist.Add(items...)
	if q.original != nil {
		q.original = append(q.original, items...)
	}
	if q.current < 0 {
		q.current = 0
	}
	if q.shuffled == nil {
		return
	}
	for idx := start; idx < q.Len(); idx++ {
		upcoming := len(q.shuffled) - q.shufflePos
		at := q.shufflePos + 1 + q.rng.IntN(upcoming)
		q.shuffled = slices.Insert(q.shuffled, at, idx)
	}
}

// RemoveAt removes the item at index. When the current item is removed
// the cursor moves to the item that followed it in navigation order.
func (q *Queue) RemoveAt(index int) error {
	if !q.playlist.Remove(index) {
		return ErrInvalidIndex
	}
	if q.original != nil && index < len(q.original) {
		q.original = slices.Delete(q.original, index, index+1)
	}

	if q.IsEmpty() {
		q.current = -1
		q.clearShuffle()
		return nil
	}

	if q.shuffled != nil {
		pos := slices.Index(q.shuffled, index)
		q.shuffled = slices.Delete(q.shuffled, pos, pos+1)
		for i, v := range q.shuffled {
			if v > index {
				q.shuffled[i] = v - 1
			}
		}
		if pos < q.shufflePos {
			q.shufflePos--
		}
		if q.shufflePos >= len(q.shuffled) {
			q.shufflePos = len(q.shuffled) - 1
		}
		q.current = q.shuffled[q.shufflePos]
		return nil
	}

	if q.current > index {
		q.current--
	} else if q.current >= q.Len() {
		q.current = q.Len() - 1
	}
	return nil
}

// Move moves the item at from to to, keeping the cursor on the same item.
func (q *Queue) Move(from, to int) error {
	if !q.playlist.Move(from, to) {
		return ErrInvalidIndex
	}
	if q.original != nil {
		o := NewPlaylist()
		o.Replace(q.original)
		o.Move(from, to)
		q.original = o.Items()
	}
	q.current = movedIndex(q.current, from, to)
	for i, v := range q.shuffled {
		q.shuffled[i] = movedIndex(v, from, to)
	}
	return nil
}

// Replace swaps the contents for items, keeping the cursor on the
// current item when it is still present (matched by ID). A shuffled
// queue stays shuffled: items become the order restored on disable and a
// fresh permutation starts at the current item.
func (q *Queue) Replace(items []media.Item) {
	cur, hadCurrent := q.Current()
	shuffled := q.shuffled != nil
	q.clearShuffle()
	q.playlist.Replace(items)
	if len(items) == 0 {
		q.current = -1
		return
	}
	q.current = 0
	if hadCurrent {
		if idx := slices.IndexFunc(items, func(it media.Item) bool { return it.ID == cur.ID }); idx >= 0 {
			q.current = idx
		}
	}
	if shuffled {
		q.original = q.playlist.Items()
		q.shuffled = q.permutation()
	}
}

// Clear removes all items and resets the cursor and shuffle state.
func (q *Queue) Clear() {
	q.playlist.Clear()
	q.current = -1
	q.clearShuffle()
}
