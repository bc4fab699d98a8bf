package complete

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ErrWatch indicates the schema directory could not be watched.
var ErrWatch = errors.New("watch schema")

// Watch reloads the schema whenever its file is created, written, renamed
// or removed, until ctx is canceled. Reload failures are logged and do not
// stop the watch. The directory holding the schema file must exist.
func (p *Provider) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWatch, err)
	}

	defer func() {
		closeErr := w.Close()
		if closeErr != nil {
			p.logger.Warn("close schema watcher", slog.Any("error", closeErr))
		}
	}()

	target := filepath.Clean(p.schemaPath)

	// Watching the directory survives editors that save by rename.
	err = w.Add(filepath.Dir(target))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWatch, err)
	}

	p.logger.Debug("watching schema", slog.String("path", target))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != target || event.Op == fsnotify.Chmod {
				continue
			}

			p.logger.Debug("schema changed",
				slog.String("path", event.Name),
				slog.String("op", event.Op.String()),
			)

			// Reload logs its own failures.
			_ = p.Reload()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			p.logger.Warn("schema watcher", slog.Any("error", err))
		}
	}
}
