package services

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mkarren/chesstime/internal/logger"
)

// snapshotWatcher re-imports a snapshot file whenever it changes on disk,
// so a cache synced from elsewhere is picked up without restarting.
type snapshotWatcher struct {
	path          string
	manager       *Manager
	watcher       *fsnotify.Watcher
	debounceTimer *time.Timer
	stopChan      chan struct{}
}

func newSnapshotWatcher(path string, m *Manager) (*snapshotWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory to catch file creation and atomic renames.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return nil, err
	}

	w := &snapshotWatcher{
		path:     path,
		manager:  m,
		watcher:  watcher,
		stopChan: make(chan struct{}),
	}
	go w.watchLoop()

	logger.Info("watching snapshot for changes", "path", path)
	return w, nil
}

// Close stops the watch loop.
func (w *snapshotWatcher) Close() error {
	close(w.stopChan)
	return w.watcher.Close()
}

// watchLoop handles file system events with debouncing.
func (w *snapshotWatcher) watchLoop() {
	const debounceInterval = 200 * time.Millisecond

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if w.debounceTimer != nil {
					w.debounceTimer.Stop()
				}
				w.debounceTimer = time.AfterFunc(debounceInterval, w.handleChange)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.manager.broadcast(ErrorEvent{Service: "watcher", Error: err})

		case <-w.stopChan:
			return
		}
	}
}

func (w *snapshotWatcher) handleChange() {
	if err := w.manager.Import(w.path); err != nil {
		w.manager.broadcast(ErrorEvent{Service: "watcher", Error: err})
	}
}
