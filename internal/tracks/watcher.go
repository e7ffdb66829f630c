package tracks

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/llehouerou/deck/internal/logger"
)

const watchDebounce = 500 * time.Millisecond

// Watcher reports subtitle sidecars appearing or disappearing next to a
// media file. Bursts of filesystem events are coalesced into one call.
type Watcher struct {
	fsw      *fsnotify.Watcher
	base     string
	exts     []string
	onChange func()

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Watch starts watching the directory of itemPath. onChange runs on the
// watcher goroutine.
func Watch(itemPath string, exts []string, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(itemPath)); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		base:     strings.TrimSuffix(filepath.Base(itemPath), filepath.Ext(itemPath)),
		exts:     exts,
		onChange: onChange,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)

	var pending <-chan time.Time
	for {
		select {
		case <-w.stop:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if pending == nil {
				pending = time.After(watchDebounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Log.Debug().Err(err).Msg("subtitle watcher error")
		case <-pending:
			pending = nil
			w.onChange()
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	_, ok := matchSubtitle(filepath.Base(ev.Name), w.base, w.exts)
	return ok
}

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stop)
		err = w.fsw.Close()
		<-w.done
	})
	return err
}
