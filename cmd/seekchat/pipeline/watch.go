package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/papercomputeco/seekchat/pkg/documents"
	"github.com/papercomputeco/seekchat/pkg/rag"
)

// Event reports what Watch did for one file change.
type Event struct {
	Path    string
	Removed bool
	Stats   rag.Stats
	Err     error
}

// Watch keeps the index in sync with dir until ctx is done. Supported files
// that are written or created are re-indexed; removed or renamed ones are
// dropped from the store. Every handled change is passed to report, which
// runs on the calling goroutine.
func (s *Stack) Watch(ctx context.Context, dir string, report func(Event)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := addTree(watcher, dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if e, handled := s.handle(ctx, watcher, ev); handled {
				report(e)
			}

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", "error", werr)
		}
	}
}

func (s *Stack) handle(ctx context.Context, watcher *fsnotify.Watcher, ev fsnotify.Event) (Event, bool) {
	if hidden(ev.Name) {
		return Event{}, false
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := addTree(watcher, ev.Name); err != nil {
				s.logger.Warn("watching new directory", "path", ev.Name, "error", err)
			}
			return Event{}, false
		}
	}

	if !documents.Supported(ev.Name) {
		return Event{}, false
	}

	s.logger.Debug("file event", "path", ev.Name, "op", ev.Op.String())

	switch {
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		return Event{Path: ev.Name, Removed: true, Err: s.Index.Remove(ctx, ev.Name)}, true

	case ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create):
		stats, err := s.IndexFile(ctx, ev.Name)
		if errors.Is(err, fs.ErrNotExist) {
			// Gone again before we read it; a Remove event follows.
			return Event{}, false
		}
		return Event{Path: ev.Name, Stats: stats, Err: err}, true
	}

	return Event{}, false
}

// addTree watches dir and every non-hidden directory below it.
func addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func hidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
