// Package watch re-runs work when a file on disk changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/procmesh/internal/logger"
)

// Handler is called with the changed path once events settle.
type Handler func(ctx context.Context, path string)

// Watcher debounces write and create events on a set of files.
type Watcher struct {
	fsnotify *fsnotify.Watcher
	debounce time.Duration
	handler  Handler
	files    map[string]bool
	log      *zap.Logger
}

// New creates a watcher for files. The parent directories are watched so
// editors that replace a file on save still trigger the handler.
func New(files []string, debounce time.Duration, handler Handler) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watch: nil handler")
	}
	if len(files) == 0 {
		return nil, errors.New("watch: no files")
	}

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsnotify: fsWatch,
		debounce: debounce,
		handler:  handler,
		files:    make(map[string]bool, len(files)),
		log:      logger.Named("watch"),
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fsWatch.Close()
			return nil, err
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsWatch.Add(dir); err != nil {
			fsWatch.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	return w, nil
}

// Run dispatches events until ctx is cancelled, then closes the watcher.
// The handler runs on the Run goroutine, so a slow handler delays the next.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsnotify.Close()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	var pending string

	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return nil
			}
			if !w.relevant(e) {
				continue
			}
			w.log.Debug("file event", zap.String("path", e.Name), zap.Stringer("op", e.Op))
			pending = e.Name
			timer.Reset(w.debounce)

		case <-timer.C:
			if pending == "" {
				continue
			}
			path := pending
			pending = ""
			w.log.Info("file changed", zap.String("path", path))
			w.handler(ctx, path)

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-ctx.Done():
			timer.Stop()
			return nil
		}
	}
}

func (w *Watcher) relevant(e fsnotify.Event) bool {
	if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return false
	}
	abs, err := filepath.Abs(e.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}
