package mpt

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher re-expands source files whenever they change on disk.
type Watcher struct {
	watcher     *fsnotify.Watcher
	logger      *zap.Logger
	factory     EngineFactory
	instantFail bool
	onResult    func(Result)
	isWatching  atomic.Bool
}

// NewWatcher creates a watcher that invokes onResult after each re-expansion.
func NewWatcher(logger *zap.Logger, factory EngineFactory, instantFail bool, onResult func(Result)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:     fw,
		logger:      logger,
		factory:     factory,
		instantFail: instantFail,
		onResult:    onResult,
	}, nil
}

// Add registers a file to watch.
func (w *Watcher) Add(path string) error {
	return w.watcher.Add(path)
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() error {
	if !w.isWatching.CompareAndSwap(false, true) {
		return fmt.Errorf("already watching")
	}
	go w.watchLoop()
	return nil
}

// Stop ends watching and closes the underlying watcher.
func (w *Watcher) Stop() error {
	if !w.isWatching.Swap(false) {
		w.logger.Warn("not watching")
	}
	return w.watcher.Close()
}

func (w *Watcher) watchLoop() {
	for w.isWatching.Load() {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFileEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Write != fsnotify.Write {
		return
	}
	// wait a little so an editor's burst of writes counts as one change
	time.Sleep(100 * time.Millisecond)
	result, err := ExpandFile(w.factory(), event.Name, w.instantFail)
	if err != nil {
		w.logger.Error("re-expansion failed", zap.String("file", event.Name), zap.Error(err))
		return
	}
	w.logger.Info("re-expanded",
		zap.String("file", event.Name),
		zap.Int("errors", len(result.Errors)))
	if w.onResult != nil {
		w.onResult(result)
	}
}
