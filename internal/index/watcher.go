package index

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/quiet/internal/storage"
)

// UpdateFunc is called with the absolute path of every created, modified or
// deleted entry under the watched root.
type UpdateFunc func(path string) error

// Watcher reports changes below a root directory. Every non-hidden
// directory is registered with fsnotify, including directories created or
// moved in after watching began.
type Watcher struct {
	root     string
	onUpdate UpdateFunc
	logger   *slog.Logger

	fsw   *fsnotify.Watcher
	mu    sync.Mutex
	dirs  map[string]struct{}
	ready chan struct{}
}

// NewWatcher creates a watcher for root. Nothing is watched until Run.
func NewWatcher(root string, onUpdate UpdateFunc, logger *slog.Logger) *Watcher {
	return &Watcher{
		root:     filepath.Clean(root),
		onUpdate: onUpdate,
		logger:   logger,
		dirs:     make(map[string]struct{}),
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the initial walk has reported every existing file.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run registers the tree, reports every existing file once and then
// processes change events until ctx is cancelled or no watched directory is
// left. Run must be called at most once.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		close(w.ready)
		return fmt.Errorf("watcher: create: %w", err)
	}
	defer fsw.Close()
	w.fsw = fsw

	w.walk(w.root)
	close(w.ready)

	if w.dirCount() == 0 {
		return fmt.Errorf("watcher: cannot watch root %s", w.root)
	}
	w.logger.Info("watcher: started", slog.String("root", w.root), slog.Int("dirs", w.dirCount()))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
			if w.dirCount() == 0 {
				w.logger.Warn("watcher: no directories left, stopping", slog.String("root", w.root))
				return nil
			}

		case watchErr, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	if storage.IsHidden(filepath.Base(path)) {
		return
	}

	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		if n := w.unregister(path); n > 0 {
			w.logger.Debug("watcher: directory gone", slog.String("path", path), slog.Int("dirs", n))
		} else {
			w.logger.Debug("watcher: deleted", slog.String("path", path))
		}
		w.notify(path)

	case ev.Has(fsnotify.Create):
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			w.logger.Debug("watcher: new directory", slog.String("path", path))
			w.walk(path)
			return
		}
		w.logger.Debug("watcher: created", slog.String("path", path))
		w.notify(path)

	case ev.Has(fsnotify.Write):
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return
		}
		w.logger.Debug("watcher: modified", slog.String("path", path))
		w.notify(path)
	}
}

// walk registers dir and every non-hidden directory below it, and reports
// every non-hidden file it finds.
func (w *Watcher) walk(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("watcher: walk failed", slog.String("path", path), slog.String("error", err.Error()))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if storage.IsHidden(d.Name()) && path != w.root {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if addErr := w.fsw.Add(path); addErr != nil {
				w.logger.Warn("watcher: register failed", slog.String("path", path), slog.String("error", addErr.Error()))
				return fs.SkipDir
			}
			w.mu.Lock()
			w.dirs[path] = struct{}{}
			w.mu.Unlock()
			return nil
		}
		w.notify(path)
		return nil
	})
}

// unregister drops path and every registered directory below it and returns
// how many were dropped.
func (w *Watcher) unregister(path string) int {
	w.mu.Lock()
	var gone []string
	for d := range w.dirs {
		if covers(path, d) {
			gone = append(gone, d)
			delete(w.dirs, d)
		}
	}
	w.mu.Unlock()

	for _, d := range gone {
		// fsnotify already forgets watches on deleted directories
		if err := w.fsw.Remove(d); err != nil && !errors.Is(err, fsnotify.ErrNonExistentWatch) {
			w.logger.Debug("watcher: unregister failed", slog.String("path", d), slog.String("error", err.Error()))
		}
	}
	return len(gone)
}

func (w *Watcher) notify(path string) {
	if err := w.onUpdate(path); err != nil {
		w.logger.Error("watcher: update failed", slog.String("path", path), slog.String("error", err.Error()))
	}
}

func (w *Watcher) dirCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.dirs)
}

// Dirs returns the currently registered directories, sorted.
func (w *Watcher) Dirs() []string {
	w.mu.Lock()
	out := make([]string, 0, len(w.dirs))
	for d := range w.dirs {
		out = append(out, d)
	}
	w.mu.Unlock()
	sort.Strings(out)
	return out
}

// Enqueue returns an UpdateFunc that adds every reported path to q.
func Enqueue(q *Queue) UpdateFunc {
	return func(path string) error {
		if strings.TrimSpace(path) == "" {
			return errors.New("index: empty path")
		}
		q.Add(path)
		return nil
	}
}
