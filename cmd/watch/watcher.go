package watch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceInterval = 300 * time.Millisecond

// watchAndRerun calls rerun once per burst of changes to file until ctx is done.
// The parent directory is watched so editors that replace the file on save
// are still picked up.
func watchAndRerun(ctx context.Context, file string, errOut io.Writer, rerun func()) error {
	absFile, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", file, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(absFile)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(absFile), err)
	}

	debounce := time.NewTimer(debounceInterval)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isRelevantChange(event, absFile) {
				continue
			}
			debounce.Reset(debounceInterval)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(errOut, "watcher error: %v\n", err)

		case <-debounce.C:
			rerun()
		}
	}
}

func isRelevantChange(event fsnotify.Event, absFile string) bool {
	if filepath.Clean(event.Name) != absFile {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
