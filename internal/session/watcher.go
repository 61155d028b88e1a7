package session

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"hopper/internal/logging"
)

// Watch is a live registration on a folder tree. Closing it stops delivery
// synchronously.
type Watch interface {
	Close() error
}

// Source produces raw change notifications for a folder tree. Implementations
// deliver changes on their own goroutine until the returned Watch is closed.
type Source interface {
	Watch(folder string, recursive bool, deliver func(Change)) (Watch, error)
}

type fsnotifySource struct {
	logger *slog.Logger
}

// NewFSNotifySource returns the production Source backed by OS file watches.
// With recursive enabled it seeds a watch on every existing directory under
// the root and picks up directories created while running.
func NewFSNotifySource(logger *slog.Logger) Source {
	return &fsnotifySource{logger: logging.NewComponentLogger(logger, "watch-source")}
}

func (s *fsnotifySource) Watch(folder string, recursive bool, deliver func(Change)) (Watch, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(folder); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", folder, err)
	}
	if recursive {
		// Subdirectories that vanish mid-walk are skipped, not fatal.
		_ = filepath.WalkDir(folder, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil || !entry.IsDir() || path == folder {
				return nil
			}
			if addErr := watcher.Add(path); addErr != nil {
				s.logger.Debug("watch add failed", logging.String("path", path), logging.Error(addErr))
			}
			return nil
		})
	}

	go s.pump(watcher, recursive, deliver)
	return watcher, nil
}

func (s *fsnotifySource) pump(watcher *fsnotify.Watcher, recursive bool, deliver func(Change)) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			op := OpOther
			switch {
			case event.Op&fsnotify.Create != 0:
				op = OpCreate
			case event.Op&fsnotify.Write != 0:
				op = OpModify
			}
			if op == OpCreate && recursive {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if addErr := watcher.Add(event.Name); addErr != nil {
						s.logger.Debug("watch add failed", logging.String("path", event.Name), logging.Error(addErr))
					}
					continue
				}
			}
			deliver(Change{Op: op, Paths: []string{event.Name}})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watch error", logging.Error(err))
		}
	}
}
