// internal/playlist/queue_test.go
//
//nolint:goconst // test file with repeated string literals
package playlist

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/llehouerou/deck/internal/media"
)

func items(ids ...string) []media.Item {
	result := make([]media.Item, len(ids))
	for i, id := range ids {
		result[i] = media.Item{ID: id, URI: "/media/" + id + ".mp3"}
	}
	return result
}

func ids(its []media.Item) []string {
	result := make([]string, len(its))
	for i, it := range its {
		result[i] = it.ID
	}
	return result
}

func seeded(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

func TestNewQueue(t *testing.T) {
	q := NewQueue()

	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
	if q.CurrentIndex() != -1 {
		t.Errorf("CurrentIndex() = %d, want -1", q.CurrentIndex())
	}
	if _, ok := q.Current(); ok {
		t.Error("Current() should report no item for empty queue")
	}
}

func TestQueue_SetQueue(t *testing.T) {
	q := NewQueue()

	if err := q.SetQueue(items("a", "b", "c"), 1); err != nil {
		t.Fatalf("SetQueue() error = %v", err)
	}

	if q.CurrentIndex() != 1 {
		t.Errorf("CurrentIndex() = %d, want 1", q.CurrentIndex())
	}
	cur, ok := q.Current()
	if !ok || cur.ID != "b" {
		t.Errorf("Current() = %v, want b", cur)
	}
}

func TestQueue_SetQueue_InvalidIndex(t *testing.T) {
	tests := []int{-1, 3, 10}
	for _, start := range tests {
		t.Run(fmt.Sprintf("start=%d", start), func(t *testing.T) {
			q := NewQueue()
			_ = q.SetQueue(items("x"), 0)

			err := q.SetQueue(items("a", "b", "c"), start)

			if !errors.Is(err, ErrInvalidIndex) {
				t.Errorf("SetQueue() error = %v, want ErrInvalidIndex", err)
			}
			if q.Len() != 1 || q.CurrentIndex() != 0 {
				t.Errorf("queue changed on invalid SetQueue: len=%d idx=%d", q.Len(), q.CurrentIndex())
			}
		})
	}
}

func TestQueue_SetQueue_EmptyClears(t *testing.T) {
	q := NewQueue()
	_ = q.SetQueue(items("a", "b"), 1)

	if err := q.SetQueue(nil, 5); err != nil {
		t.Fatalf("SetQueue(nil) error = %v", err)
	}

	if !q.IsEmpty() || q.CurrentIndex() != -1 {
		t.Errorf("expected empty queue, got len=%d idx=%d", q.Len(), q.CurrentIndex())
	}
}

func TestQueue_SetQueue_ClearsShuffle(t *testing.T) {
	q := NewQueue(seeded(1))
	_ = q.SetQueue(items("a", "b", "c"), 0)
	q.SetShuffle(true)

	_ = q.SetQueue(items("d", "e"), 0)

	if q.Shuffle() {
		t.Error("Shuffle() = true after SetQueue, want false")
	}
	if q.OriginalItems() != nil {
		t.Error("OriginalItems() should be nil after SetQueue")
	}
}

func TestQueue_Next_RepeatAllScenario(t *testing.T) {
	q := NewQueue()
	_ = q.SetQueue(items("A", "B", "C"), 0)
	q.SetRepeatMode(RepeatAll)

	want := []int{1, 2, 0}
	for i, w := range want {
		got, ok := q.Next()
		if !ok || got != w {
			t.Fatalf("Next() #%d = (%d, %v), want (%d, true)", i+1, got, ok, w)
		}
	}
}

func TestQueue_Next_AtEnd_RepeatOff(t *testing.T) {
	q := NewQueue()
	_ = q.SetQueue(items("a", "b"), 1)

	idx, ok := q.Next()

	if ok {
		t.Errorf("Next() at end = (%d, true), want no next item", idx)
	}
	if q.CurrentIndex() != 1 {
		t.Errorf("CurrentIndex() = %d, want 1 (unchanged)", q.CurrentIndex())
	}
}

func TestQueue_Next_RepeatOne_SingleItem(t *testing.T) {
	q := NewQueue()
	_ = q.SetQueue(items("only"), 0)
	q.SetRepeatMode(RepeatOne)

	idx, ok := q.Next()

	if !ok || idx != 0 {
		t.Errorf("Next() = (%d, %v), want (0, true)", idx, ok)
	}
	if q.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex() = %d, want 0", q.CurrentIndex())
	}
}

func TestQueue_Skip_IgnoresRepeatOne(t *testing.T) {
	q := NewQueue()
	_ = q.SetQueue(items("a", "b"), 0)
	q.SetRepeatMode(RepeatOne)

	if idx, ok := q.Skip(); !ok || idx != 1 {
		t.Fatalf("Skip() = (%d, %v), want (1, true)", idx, ok)
	}
	if idx, ok := q.Skip(); ok {
		t.Errorf("Skip() at end = (%d, true), want false", idx)
	}
	if q.CurrentIndex() != 1 {
		t.Errorf("CurrentIndex() = %d, want 1", q.CurrentIndex())
	}
}

func TestQueue_Next_Empty(t *testing.T) {
	q := NewQueue()
	q.SetRepeatMode(RepeatAll)

	if _, ok := q.Next(); ok {
		t.Error("Next() on empty queue should report no next item")
	}
}

func TestQueue_Next_RepeatAll_CyclesFromAnyStart(t *testing.T) {
	for _, shuffle := range []bool{false, true} {
		for start := range 5 {
			t.Run(fmt.Sprintf("shuffle=%v/start=%d", shuffle, start), func(t *testing.T) {
				q := NewQueue(seeded(uint64(start) + 7))
				_ = q.SetQueue(items("a", "b", "c", "d", "e"), start)
				q.SetRepeatMode(RepeatAll)
				q.SetShuffle(shuffle)

				for range q.Len() {
					if _, ok := q.Next(); !ok {
						t.Fatal("Next() returned no item under RepeatAll")
					}
				}

				if q.CurrentIndex() != start {
					t.Errorf("CurrentIndex() = %d after full cycle, want %d", q.CurrentIndex(), start)
				}
			})
		}
	}
}

func TestQueue_Previous(t *testing.T) {
	tests := []struct {
		name     string
		start    int
		repeat   RepeatMode
		position time.Duration
		want     int
	}{
		{"near start goes back", 2, RepeatOff, time.Second, 1},
		{"past threshold restarts", 2, RepeatOff, 10 * time.Second, 2},
		{"exactly threshold restarts", 2, RepeatOff, DefaultRestartThreshold, 2},
		{"first item restarts under off", 0, RepeatOff, 0, 0},
		{"first item wraps under all", 0, RepeatAll, 0, 2},
		{"repeat one restarts", 1, RepeatOne, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueue()
			_ = q.SetQueue(items("a", "b", "c"), tt.start)
			q.SetRepeatMode(tt.repeat)

			got, ok := q.Previous(tt.position)

			if !ok || got != tt.want {
				t.Errorf("Previous(%v) = (%d, %v), want (%d, true)", tt.position, got, ok, tt.want)
			}
			if q.CurrentIndex() != tt.want {
				t.Errorf("CurrentIndex() = %d, want %d", q.CurrentIndex(), tt.want)
			}
		})
	}
}

func TestQueue_Previous_CustomThreshold(t *testing.T) {
	q := NewQueue(WithRestartThreshold(10 * time.Second))
	_ = q.SetQueue(items("a", "b"), 1)

	got, _ := q.Previous(5 * time.Second)

	if got != 0 {
		t.Errorf("Previous(5s) with 10s threshold = %d, want 0", got)
	}
}

func TestQueue_Previous_WalksShuffle(t *testing.T) {
	q := NewQueue(seeded(3))
	_ = q.SetQueue(items("a", "b", "c", "d"), 0)
	q.SetShuffle(true)
	perm := q.ShuffledIndices()

	_, _ = q.Next()
	_, _ = q.Next()
	got, _ := q.Previous(0)

	if got != perm[1] {
		t.Errorf("Previous() = %d, want %d (permutation order)", got, perm[1])
	}
}

func TestQueue_SetShuffle_KeepsCurrentFirst(t *testing.T) {
	q := NewQueue(seeded(42))
	_ = q.SetQueue(items("a", "b", "c", "d", "e"), 3)

	q.SetShuffle(true)

	perm := q.ShuffledIndices()
	if len(perm) != 5 {
		t.Fatalf("len(ShuffledIndices()) = %d, want 5", len(perm))
	}
	if perm[0] != 3 {
		t.Errorf("ShuffledIndices()[0] = %d, want current index 3", perm[0])
	}
	sorted := slices.Clone(perm)
	slices.Sort(sorted)
	if !slices.Equal(sorted, []int{0, 1, 2, 3, 4}) {
		t.Errorf("ShuffledIndices() = %v is not a permutation", perm)
	}
	if q.CurrentIndex() != 3 {
		t.Errorf("CurrentIndex() = %d, want 3", q.CurrentIndex())
	}
}

func TestQueue_SetShuffle_Deterministic(t *testing.T) {
	a := NewQueue(seeded(9))
	b := NewQueue(seeded(9))
	_ = a.SetQueue(items("a", "b", "c", "d", "e", "f"), 0)
	_ = b.SetQueue(items("a", "b", "c", "d", "e", "f"), 0)

	a.SetShuffle(true)
	b.SetShuffle(true)

	if !slices.Equal(a.ShuffledIndices(), b.ShuffledIndices()) {
		t.Errorf("same seed produced %v and %v", a.ShuffledIndices(), b.ShuffledIndices())
	}
}

func TestQueue_SetShuffle_RoundTrip(t *testing.T) {
	for seed := range uint64(10) {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			q := NewQueue(seeded(seed))
			orig := items("a", "b", "c", "d", "e", "f")
			_ = q.SetQueue(orig, int(seed%6))
			q.SetRepeatMode(RepeatAll)

			q.SetShuffle(true)
			for range int(seed) + 3 {
				_, _ = q.Next()
			}
			_, _ = q.Previous(0)
			q.SetShuffle(false)

			if !slices.Equal(ids(q.Items()), ids(orig)) {
				t.Errorf("Items() = %v after round trip, want %v", ids(q.Items()), ids(orig))
			}
			if q.Shuffle() || q.ShuffledIndices() != nil || q.OriginalItems() != nil {
				t.Error("shuffle state not cleared on disable")
			}
		})
	}
}

func TestQueue_SetShuffle_EmptyIsNoop(t *testing.T) {
	q := NewQueue()

	q.SetShuffle(true)

	if q.Shuffle() {
		t.Error("Shuffle() = true on empty queue, want false")
	}
	q.SetShuffle(false)
}

func TestQueue_SetShuffle_CapturesOriginalOnce(t *testing.T) {
	q := NewQueue(seeded(5))
	_ = q.SetQueue(items("a", "b", "c"), 0)

	q.SetShuffle(true)
	q.SetShuffle(true)

	if !slices.Equal(ids(q.OriginalItems()), []string{"a", "b", "c"}) {
		t.Errorf("OriginalItems() = %v", ids(q.OriginalItems()))
	}
}

func TestQueue_Next_Shuffled_StopsAtEndUnderOff(t *testing.T) {
	q := NewQueue(seeded(11))
	_ = q.SetQueue(items("a", "b", "c"), 1)
	q.SetShuffle(true)
	perm := q.ShuffledIndices()

	var visited []int
	for {
		idx, ok := q.Next()
		if !ok {
			break
		}
		visited = append(visited, idx)
	}

	if !slices.Equal(visited, perm[1:]) {
		t.Errorf("visited %v, want %v", visited, perm[1:])
	}
}

func TestQueue_JumpTo(t *testing.T) {
	q := NewQueue()
	_ = q.SetQueue(items("a", "b", "c"), 0)

	if err := q.JumpTo(2); err != nil {
		t.Fatalf("JumpTo(2) error = %v", err)
	}
	if q.CurrentIndex() != 2 {
		t.Errorf("CurrentIndex() = %d, want 2", q.CurrentIndex())
	}
	if err := q.JumpTo(3); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("JumpTo(3) error = %v, want ErrInvalidIndex", err)
	}
}

func TestQueue_Add_EmptySetsCursor(t *testing.T) {
	q := NewQueue()

	q.Add(items("a", "b")...)

	if q.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex() = %d, want 0", q.CurrentIndex())
	}
}

func TestQueue_Add_WhileShuffled(t *testing.T) {
	q := NewQueue(seeded(2))
	_ = q.SetQueue(items("a", "b", "c"), 0)
	q.SetShuffle(true)

	q.Add(items("d", "e")...)

	perm := q.ShuffledIndices()
	sorted := slices.Clone(perm)
	slices.Sort(sorted)
	if !slices.Equal(sorted, []int{0, 1, 2, 3, 4}) {
		t.Errorf("ShuffledIndices() = %v is not a permutation of 5", perm)
	}
	if perm[0] != 0 {
		t.Errorf("current moved in permutation: %v", perm)
	}

	q.SetShuffle(false)
	if !slices.Equal(ids(q.Items()), []string{"a", "b", "c", "d", "e"}) {
		t.Errorf("Items() = %v after disabling shuffle", ids(q.Items()))
	}
}

func TestQueue_RemoveAt(t *testing.T) {
	tests := []struct {
		name      string
		start     int
		remove    int
		wantIdx   int
		wantItems []string
	}{
		{"before current", 2, 0, 1, []string{"b", "c"}},
		{"after current", 0, 2, 0, []string{"a", "b"}},
		{"current moves to next", 1, 1, 1, []string{"a", "c"}},
		{"current last clamps", 2, 2, 1, []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueue()
			_ = q.SetQueue(items("a", "b", "c"), tt.start)

			if err := q.RemoveAt(tt.remove); err != nil {
				t.Fatalf("RemoveAt() error = %v", err)
			}

			if q.CurrentIndex() != tt.wantIdx {
				t.Errorf("CurrentIndex() = %d, want %d", q.CurrentIndex(), tt.wantIdx)
			}
			if !slices.Equal(ids(q.Items()), tt.wantItems) {
				t.Errorf("Items() = %v, want %v", ids(q.Items()), tt.wantItems)
			}
		})
	}
}

func TestQueue_RemoveAt_LastItemEmptiesQueue(t *testing.T) {
	q := NewQueue(seeded(1))
	_ = q.SetQueue(items("a"), 0)
	q.SetShuffle(true)

	_ = q.RemoveAt(0)

	if q.CurrentIndex() != -1 || q.Shuffle() {
		t.Errorf("after removing last item idx=%d shuffle=%v", q.CurrentIndex(), q.Shuffle())
	}
}

func TestQueue_RemoveAt_Shuffled_KeepsPermutation(t *testing.T) {
	q := NewQueue(seeded(8))
	_ = q.SetQueue(items("a", "b", "c", "d"), 0)
	q.SetShuffle(true)
	cur, _ := q.Current()

	notCurrent := (q.CurrentIndex() + 1) % q.Len()
	_ = q.RemoveAt(notCurrent)

	got, _ := q.Current()
	if got.ID != cur.ID {
		t.Errorf("Current() = %s, want %s", got.ID, cur.ID)
	}
	perm := q.ShuffledIndices()
	sorted := slices.Clone(perm)
	slices.Sort(sorted)
	if !slices.Equal(sorted, []int{0, 1, 2}) {
		t.Errorf("ShuffledIndices() = %v is not a permutation of 3", perm)
	}
}

func TestQueue_Move_KeepsCurrentItem(t *testing.T) {
	q := NewQueue()
	_ = q.SetQueue(items("a", "b", "c", "d"), 1)

	if err := q.Move(1, 3); err != nil {
		t.Fatalf("Move() error = %v", err)
	}

	cur, _ := q.Current()
	if cur.ID != "b" || q.CurrentIndex() != 3 {
		t.Errorf("Current() = %s at %d, want b at 3", cur.ID, q.CurrentIndex())
	}
	if !slices.Equal(ids(q.Items()), []string{"a", "c", "d", "b"}) {
		t.Errorf("Items() = %v", ids(q.Items()))
	}
	if err := q.Move(0, 9); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("Move(0, 9) error = %v, want ErrInvalidIndex", err)
	}
}

func TestQueue_Replace_KeepsCurrentByID(t *testing.T) {
	q := NewQueue()
	_ = q.SetQueue(items("a", "b", "c"), 1)

	q.Replace(items("c", "b"))

	if q.CurrentIndex() != 1 {
		t.Errorf("CurrentIndex() = %d, want 1", q.CurrentIndex())
	}

	q.Replace(items("x"))
	if q.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex() = %d, want 0 when current is gone", q.CurrentIndex())
	}
}

func TestQueue_Replace_KeepsShuffle(t *testing.T) {
	q := NewQueue(seeded(7))
	_ = q.SetQueue(items("a", "b", "c", "d"), 2)
	q.SetShuffle(true)

	q.Replace(items("d", "c", "b", "a"))

	if !q.Shuffle() {
		t.Fatal("Replace() disabled shuffle")
	}
	if q.CurrentIndex() != 1 {
		t.Errorf("CurrentIndex() = %d, want 1", q.CurrentIndex())
	}
	order := q.ShuffledIndices()
	if len(order) != 4 || order[0] != 1 {
		t.Errorf("ShuffledIndices() = %v, want permutation starting at 1", order)
	}

	q.SetShuffle(false)
	if got := ids(q.Items()); !slices.Equal(got, []string{"d", "c", "b", "a"}) {
		t.Errorf("Items() after unshuffle = %v, want replaced order", got)
	}
}

func TestQueue_HasNext(t *testing.T) {
	q := NewQueue(seeded(3))
	if q.HasNext() {
		t.Error("HasNext() true on empty queue")
	}
	_ = q.SetQueue(items("a", "b", "c"), 1)
	if !q.HasNext() {
		t.Error("HasNext() false before the last item")
	}
	_ = q.JumpTo(2)
	if q.HasNext() {
		t.Error("HasNext() true on the last item with repeat off")
	}
	q.SetRepeatMode(RepeatOne)
	if !q.HasNext() {
		t.Error("HasNext() false with repeat one")
	}
	q.SetRepeatMode(RepeatOff)

	q.SetShuffle(true)
	for q.HasNext() {
		if _, ok := q.Next(); !ok {
			t.Fatal("Next() failed while HasNext() was true")
		}
	}
	if _, ok := q.Next(); ok {
		t.Error("Next() succeeded after HasNext() returned false")
	}
}

func TestQueue_CurrentIndexStaysInBounds(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	q := NewQueue(seeded(4))

	for step := range 2000 {
		switch r.IntN(9) {
		case 0:
			n := r.IntN(6)
			its := make([]media.Item, n)
			for i := range its {
				its[i] = media.Item{ID: fmt.Sprintf("%d-%d", step, i)}
			}
			start := 0
			if n > 0 {
				start = r.IntN(n)
			}
			_ = q.SetQueue(its, start)
		case 1, 2:
			_, _ = q.Next()
		case 3:
			_, _ = q.Previous(time.Duration(r.IntN(6)) * time.Second)
		case 4:
			q.SetShuffle(r.IntN(2) == 0)
		case 5:
			q.SetRepeatMode(RepeatMode(r.IntN(3)))
		case 6:
			if q.Len() > 0 {
				_ = q.RemoveAt(r.IntN(q.Len()))
			}
		case 7:
			q.Add(media.Item{ID: fmt.Sprintf("add-%d", step)})
		case 8:
			if q.Len() > 1 {
				_ = q.Move(r.IntN(q.Len()), r.IntN(q.Len()))
			}
		}

		if q.IsEmpty() {
			if q.CurrentIndex() != -1 {
				t.Fatalf("step %d: empty queue has CurrentIndex %d", step, q.CurrentIndex())
			}
			continue
		}
		if q.CurrentIndex() < 0 || q.CurrentIndex() >= q.Len() {
			t.Fatalf("step %d: CurrentIndex %d out of [0,%d)", step, q.CurrentIndex(), q.Len())
		}
		if q.Shuffle() && len(q.ShuffledIndices()) != q.Len() {
			t.Fatalf("step %d: permutation size %d != %d", step, len(q.ShuffledIndices()), q.Len())
		}
	}
}

func TestRepeatMode_String(t *testing.T) {
	tests := []struct {
		mode RepeatMode
		want string
	}{
		{RepeatOff, "Off"},
		{RepeatAll, "All"},
		{RepeatOne, "One"},
		{RepeatMode(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("RepeatMode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestParseRepeatMode(t *testing.T) {
	if m, ok := ParseRepeatMode("all"); !ok || m != RepeatAll {
		t.Errorf("ParseRepeatMode(all) = (%v, %v)", m, ok)
	}
	if m, ok := ParseRepeatMode("One"); !ok || m != RepeatOne {
		t.Errorf("ParseRepeatMode(One) = (%v, %v)", m, ok)
	}
	if _, ok := ParseRepeatMode("sometimes"); ok {
		t.Error("ParseRepeatMode(sometimes) should fail")
	}
}
