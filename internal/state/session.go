package state

import (
	"context"
	"time"

	"github.com/llehouerou/deck/internal/logger"
	"github.com/llehouerou/deck/internal/playback"
)

// positionSaveInterval is how far playback must move before the saved
// position is refreshed.
const positionSaveInterval = 5 * time.Second

// Restore loads the saved volume and queue into e without starting
// playback. It reports whether a queue was restored.
func Restore(s Interface, e playback.Service) (bool, error) {
	volume, err := s.GetVolume()
	if err != nil {
		return false, err
	}
	e.SetVolume(volume)

	q, err := s.GetQueue()
	if err != nil {
		return false, err
	}
	if len(q.Items) == 0 || q.CurrentIndex < 0 {
		return false, nil
	}
	e.SetRepeatMode(q.RepeatMode)
	if err := e.RestoreQueue(q.Items, q.CurrentIndex, q.Position); err != nil {
		return false, err
	}
	if q.Shuffle {
		e.SetShuffle(true)
	}
	logger.Log.Info().
		Int("items", len(q.Items)).
		Int("index", q.CurrentIndex).
		Dur("position", q.Position).
		Msg("session restored")
	return true, nil
}

// Sync saves the queue and volume of e whenever they change, until ctx is
// done or the engine closes.
func Sync(ctx context.Context, s Interface, e playback.Service) {
	sub := e.Subscribe()
	defer e.Unsubscribe(sub)
	last := e.State()

	save := func(st playback.PlaybackState) {
		s.SaveQueue(QueueState{
			Items:        e.Queue(),
			CurrentIndex: st.CurrentIndex,
			Position:     st.Position,
			RepeatMode:   st.RepeatMode,
			Shuffle:      st.Shuffle,
		})
		last = st
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case <-sub.QueueChanged:
			save(e.State())
		case ev := <-sub.StateChanged:
			cur := ev.Current
			if cur.Volume != last.Volume {
				if err := s.SaveVolume(cur.Volume); err != nil {
					logger.Log.Warn().Err(err).Msg("save volume failed")
				}
			}
			if sessionChanged(last, cur) {
				save(cur)
			} else {
				last.Volume = cur.Volume
			}
		}
	}
}

func sessionChanged(a, b playback.PlaybackState) bool {
	if a.CurrentIndex != b.CurrentIndex || a.RepeatMode != b.RepeatMode ||
		a.Shuffle != b.Shuffle || a.IsPlaying != b.IsPlaying {
		return true
	}
	d := b.Position - a.Position
	return d >= positionSaveInterval || d <= -positionSaveInterval
}
