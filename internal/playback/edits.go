package playback

import (
	"github.com/llehouerou/deck/internal/logger"
	"github.com/llehouerou/deck/internal/media"
)

// AddItems appends items to the queue. Playback is not started.
func (e *Engine) AddItems(items ...media.Item) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || len(items) == 0 {
		return
	}
	e.queue.Add(items...)
	e.undo.Push(e.queue.Items())
	e.emitQueueLocked()
	e.publishLocked()
}

// RemoveAt removes the item at index. Removing the current item loads the
// one that followed it, keeping the play/pause state.
func (e *Engine) RemoveAt(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	from := e.currentRefLocked()
	wasCurrent := index == from.index
	if wasCurrent {
		e.leaveLocked()
	}
	if err := e.queue.RemoveAt(index); err != nil {
		logger.Log.Warn().Int("index", index).Msg("rejected remove index")
		return err
	}
	e.undo.Push(e.queue.Items())
	e.emitQueueLocked()

	if wasCurrent {
		e.reloadLocked(from)
		return nil
	}
	e.publishLocked()
	return nil
}

// MoveItem moves the item at from to to. The current item keeps playing.
func (e *Engine) MoveItem(from, to int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	if err := e.queue.Move(from, to); err != nil {
		logger.Log.Warn().Int("from", from).Int("to", to).Msg("rejected move index")
		return err
	}
	e.undo.Push(e.queue.Items())
	e.emitQueueLocked()
	e.publishLocked()
	return nil
}

// ClearQueue removes every item and unloads the renderer.
func (e *Engine) ClearQueue() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.queue.IsEmpty() {
		return
	}
	from := e.currentRefLocked()
	e.leaveLocked()
	e.queue.Clear()
	e.undo.Push(e.queue.Items())
	e.emitQueueLocked()
	e.emitTrackLocked(from)
	e.unloadLocked()
}

// UndoQueue restores the previous queue contents.
func (e *Engine) UndoQueue() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	items, ok := e.undo.Undo()
	if !ok {
		return false
	}
	e.applySnapshotLocked(items)
	return true
}

// RedoQueue reapplies an undone queue change.
func (e *Engine) RedoQueue() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	items, ok := e.undo.Redo()
	if !ok {
		return false
	}
	e.applySnapshotLocked(items)
	return true
}

func (e *Engine) applySnapshotLocked(items []media.Item) {
	from := e.currentRefLocked()
	e.queue.Replace(items)
	e.emitQueueLocked()

	cur, ok := e.queue.Current()
	if ok && from.item != nil && cur.ID == from.item.ID {
		e.publishLocked()
		return
	}
	e.leaveLocked()
	e.reloadLocked(from)
}

// reloadLocked loads whatever is now current after the current item was
// removed, or unloads when the queue became empty.
func (e *Engine) reloadLocked(from itemRef) {
	if _, ok := e.queue.Current(); !ok {
		e.emitTrackLocked(from)
		e.unloadLocked()
		return
	}
	if e.phase == PhaseIdle || e.phase == PhaseError {
		e.gen++
		e.phase = PhaseIdle
		e.err = nil
		e.emitTrackLocked(from)
		e.publishLocked()
		return
	}
	e.loadLocked(from, e.playing)
}
