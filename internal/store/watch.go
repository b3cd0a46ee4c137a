package store

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeCallback is called with the collection key whose file changed on
// disk outside this process (or after our own save; reloads are
// idempotent, so no self-write suppression is attempted).
type ChangeCallback func(key string)

// Watch runs an fsnotify loop over the data directory until ctx is
// cancelled, invoking cb for each changed collection file. Events are
// debounced so a burst of writes to the same key yields one callback.
func (s *Store) Watch(ctx context.Context, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(s.root); err != nil {
		return err
	}

	s.logger.Info("watcher: started", slog.String("root", s.root))

	pending := make(map[string]struct{})
	var flushTimer *time.Timer
	var flushCh <-chan time.Time

	scheduleFlush := func() {
		if flushTimer == nil {
			flushTimer = time.NewTimer(200 * time.Millisecond)
			flushCh = flushTimer.C
		} else {
			flushTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if flushTimer != nil {
				flushTimer.Stop()
			}
			s.logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if strings.HasPrefix(name, ".ansuz-tmp-") {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			key, known := s.keyForFile(name)
			if !known {
				continue
			}
			pending[key] = struct{}{}
			scheduleFlush()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher: error", slog.String("error", err.Error()))

		case <-flushCh:
			for key := range pending {
				s.logger.Debug("watcher: collection changed", slog.String("key", key))
				if cb != nil {
					cb(key)
				}
			}
			pending = make(map[string]struct{})
		}
	}
}
