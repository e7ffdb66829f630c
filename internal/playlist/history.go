package playlist

import "github.com/llehouerou/deck/internal/media"

// QueueHistory keeps bounded snapshots of the queue contents for undo/redo.
type QueueHistory struct {
	states  [][]media.Item
	current int // index of current state (-1 = before any state)
	maxSize int
}

// NewQueueHistory creates a new history with the given maximum size.
func NewQueueHistory(maxSize int) *QueueHistory {
	return &QueueHistory{
		states:  make([][]media.Item, 0, maxSize),
		current: -1,
		maxSize: maxSize,
	}
}

// Push saves a snapshot of items, dropping any redo states and the
// oldest snapshots beyond maxSize.
func (h *QueueHistory) Push(items []media.Item) {
	snapshot := make([]media.Item, len(items))
	copy(snapshot, items)

	if h.current < len(h.states)-1 {
		h.states = h.states[:h.current+1]
	}

	h.states = append(h.states, snapshot)
	h.current = len(h.states) - 1

	if len(h.states) > h.maxSize {
		excess := len(h.states) - h.maxSize
		h.states = h.states[excess:]
		h.current -= excess
	}
}

// Undo returns the previous snapshot.
func (h *QueueHistory) Undo() ([]media.Item, bool) {
	if !h.CanUndo() {
		return nil, false
	}
	h.current--
	return h.snapshot(), true
}

// Redo returns the next snapshot.
func (h *QueueHistory) Redo() ([]media.Item, bool) {
	if !h.CanRedo() {
		return nil, false
	}
	h.current++
	return h.snapshot(), true
}

// CanUndo returns true if there is a previous state to undo to.
func (h *QueueHistory) CanUndo() bool {
	return h.current > 0
}

// CanRedo returns true if there is a next state to redo to.
func (h *QueueHistory) CanRedo() bool {
	return h.current < len(h.states)-1
}

// Reset drops every snapshot.
func (h *QueueHistory) Reset() {
	h.states = h.states[:0]
	h.current = -1
}

func (h *QueueHistory) snapshot() []media.Item {
	s := make([]media.Item, len(h.states[h.current]))
	copy(s, h.states[h.current])
	return s
}
