// Package watch monitors a directory and emits newly created candidate
// inputs so they can be fed through the solve pipeline as they arrive.
package watch

import (
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"skysolve/internal/fsutil"
)

// Event is one newly arrived input.
type Event struct {
	Path string
	Time time.Time
}

// Watcher monitors directories for new solve candidates.
type Watcher struct {
	watcher   *fsnotify.Watcher
	log       *slog.Logger
	Events    chan Event
	watchDirs []string
	done      chan struct{}
}

// New creates a watcher over the given directories.
func New(log *slog.Logger, dirs []string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:   fw,
		log:       log,
		Events:    make(chan Event, 100),
		watchDirs: dirs,
		done:      make(chan struct{}),
	}, nil
}

// Start begins monitoring the configured directories.
func (w *Watcher) Start() error {
	for _, dir := range w.watchDirs {
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
		w.log.Info("watching directory", "dir", dir)
	}
	go w.processEvents()
	return nil
}

// Stop stops the watcher. The event channel closes once the event loop
// drains.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) processEvents() {
	defer close(w.Events)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !fsutil.IsCandidateInput(event.Name) {
				continue
			}
			select {
			case w.Events <- Event{Path: event.Name, Time: time.Now()}:
			case <-w.done:
				return
			default:
				w.log.Warn("event buffer full, dropping input", "path", event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("filesystem watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}
