package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/soccer/logging"
)

// watchSettle is how long the file must stay quiet before it is re-read. A single save often
// produces several events.
const watchSettle = 50 * time.Millisecond

// Watch re-reads the config at path whenever the file is written or replaced and hands every
// valid result to onChange. Invalid configs are logged and skipped. Watch blocks until ctx is
// done; onChange is never called after it returns.
func Watch(ctx context.Context, path string, logger logging.Logger, onChange func(*Config)) (err error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create watcher")
	}
	defer func() {
		err = multierr.Combine(err, watcher.Close())
	}()
	// Editors often replace the file, which drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return errors.Wrapf(err, "failed to watch %q", path)
	}

	reloads := make(chan struct{}, 1)
	debounced := debounce.New(watchSettle)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			debounced(func() {
				select {
				case reloads <- struct{}{}:
				default:
				}
			})
		case <-reloads:
			cfg, err := Read(absPath)
			if err != nil {
				logger.Warnw("ignoring invalid config change", "path", path, "error", err)
				continue
			}
			logger.Infow("config changed", "path", path)
			onChange(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Errorw("config watcher error", "error", err)
		}
	}
}
