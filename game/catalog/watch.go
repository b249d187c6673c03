package catalog

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch invalidates cached packs whenever their files change on disk. It
// returns once the watcher is running; the watcher stops when ctx is done.
// Sessions already playing a pack keep the catalog they started with.
func (m *Manager) Watch(ctx context.Context) error {
	if m.dir == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create levels watcher: %w", err)
	}
	if err := watcher.Add(m.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", m.dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				id, ok := packIDFromFilename(filepath.Base(event.Name))
				if !ok {
					continue
				}
				m.Invalidate(id)
				m.logger.Info("level pack changed", "pack", id, "op", event.Op.String())
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				m.logger.Warn("levels watcher error", "error", err)
			}
		}
	}()

	return nil
}
