package photos

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher runs a callback once the incoming directory has been quiet for
// Debounce after a file was added or written.
type Watcher struct {
	Dir      string
	Ignore   string
	Debounce time.Duration
	OnChange func(ctx context.Context) error
	Log      *zap.Logger
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return false
	}
	if w.Ignore != "" {
		if rel, err := filepath.Rel(w.Ignore, ev.Name); err == nil && !strings.HasPrefix(rel, "..") {
			return false
		}
	}
	return !strings.Contains(filepath.Base(ev.Name), "processed")
}

// Watch blocks until ctx is cancelled or the watcher fails.
func (w *Watcher) Watch(ctx context.Context) error {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(w.Dir); err != nil {
		return err
	}
	log.Info("watching for new images", zap.String("dir", w.Dir))

	timer := time.NewTimer(w.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.relevant(ev) {
				timer.Reset(w.Debounce)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Error("watcher error", zap.Error(err))
		case <-timer.C:
			if err := w.OnChange(ctx); err != nil {
				log.Error("watch pipeline failed", zap.Error(err))
			}
		}
	}
}
