// Package watch re-scans a catalog project when its files change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// extensions that can change catalog content.
var extensions = map[string]bool{".md": true, ".mdx": true, ".yml": true, ".yaml": true, ".json": true}

var ignoredDirs = map[string]bool{".git": true, "node_modules": true, "dist": true, ".eventcatalog-core": true}

type Option func(*Watcher)

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// Watcher calls onChange once per burst of content changes under root.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	onChange func(ctx context.Context) error
	debounce time.Duration
	logger   *zap.Logger
}

func New(root string, onChange func(ctx context.Context) error, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		root:     root,
		watcher:  fw,
		onChange: onChange,
		debounce: 250 * time.Millisecond,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches dir and every directory below it. fsnotify is not recursive.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && ignoredDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// Run blocks until ctx is cancelled. Reload errors are logged, not returned,
// so a broken edit does not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	w.logger.Info("watching catalog", zap.String("root", w.root))

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !ignoredDirs[info.Name()] {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn("failed to watch new directory", zap.String("path", event.Name), zap.Error(err))
					}
				}
			}
			if !relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.logger.Info("catalog changed, reloading")
			if err := w.onChange(ctx); err != nil {
				w.logger.Error("reload failed", zap.Error(err))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("file watcher error", zap.Error(err))
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	return extensions[strings.ToLower(filepath.Ext(event.Name))]
}
