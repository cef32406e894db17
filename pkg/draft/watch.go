package draft

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchSettle absorbs the write bursts editors produce when saving.
const watchSettle = 200 * time.Millisecond

// Watch observes one endpoint's draft file and invokes fn with the reloaded
// draft after each external write. It blocks until ctx is cancelled. The
// parent directory is watched, not the file, so editors that replace the
// file on save (rename-over) keep being observed.
func (s *Store) Watch(ctx context.Context, logger *slog.Logger, endpointID string, fn func(*Draft)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.root); err != nil {
		return fmt.Errorf("watch %s: %w", s.root, err)
	}

	target := s.Path(endpointID)

	var settle *time.Timer

	settleCh := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Name != target || !event.Op.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}

			if settle == nil {
				settle = time.AfterFunc(watchSettle, func() {
					select {
					case settleCh <- struct{}{}:
					default:
					}
				})
			} else {
				settle.Reset(watchSettle)
			}
		case <-settleCh:
			settle = nil

			draft, err := s.Load(endpointID)
			if err != nil {
				logger.Warn("draft changed but could not be reloaded", "endpoint_id", endpointID, "error", err)

				continue
			}

			fn(draft)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.Error("draft watcher error", "error", err)
		}
	}
}
