package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/starford/quiet/internal/models"
	"github.com/starford/quiet/internal/storage"
)

// DefaultInterval is the pause between two drain cycles.
const DefaultInterval = 200 * time.Millisecond

// Event kinds passed to an EventCallback.
const (
	EventIndexed = "indexed"
	EventRemoved = "removed"
)

// EventCallback is called after a worker-driven index change.
// kind is EventIndexed or EventRemoved.
type EventCallback func(kind string, path string)

// Stats summarises one drain cycle.
type Stats struct {
	Processed int
	Indexed   int
	Removed   int
	Failed    int
}

// Worker periodically drains a Queue into an Index.
type Worker struct {
	queue    *Queue
	index    *Index
	builder  Builder
	store    storage.Provider
	logger   *slog.Logger
	interval time.Duration
	cb       EventCallback
	busy     atomic.Bool
	cycles   atomic.Int64
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithInterval sets the pause between drain cycles.
func WithInterval(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithCallback registers cb to be notified of every index change.
func WithCallback(cb EventCallback) WorkerOption {
	return func(w *Worker) {
		w.cb = cb
	}
}

// NewWorker creates a worker. It does nothing until Run or Drain is called.
func NewWorker(queue *Queue, index *Index, builder Builder, store storage.Provider, logger *slog.Logger, opts ...WorkerOption) *Worker {
	w := &Worker{
		queue:    queue,
		index:    index,
		builder:  builder,
		store:    store,
		logger:   logger,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run drains the queue every interval until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("worker: started", slog.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker: stopped")
			return nil
		case <-ticker.C:
			st := w.Drain()
			if st.Processed > 0 {
				w.logger.Debug("worker: drained",
					slog.Int("processed", st.Processed),
					slog.Int("indexed", st.Indexed),
					slog.Int("removed", st.Removed),
					slog.Int("failed", st.Failed),
					slog.Int("total", w.index.Len()))
			}
		}
	}
}

// Drain runs one cycle: every pending path is invalidated in the index and,
// if it is still a content file on disk, parsed and inserted again.
// Parse failures are logged and leave the path absent until its next change.
func (w *Worker) Drain() Stats {
	w.busy.Store(true)
	defer func() {
		w.busy.Store(false)
		w.cycles.Add(1)
	}()

	var st Stats
	for _, path := range w.queue.Drain() {
		st.Processed++

		var post *models.Post
		if w.store.Exists(path) && storage.IsContentFile(filepath.Base(path)) {
			p, err := w.builder.Build(path)
			if err != nil {
				st.Failed++
				w.logger.Error("worker: parse failed",
					slog.String("path", path),
					slog.String("error", err.Error()))
			} else {
				post = p
			}
		}

		removed := w.index.Replace(path, post)
		for _, r := range removed {
			if post != nil && r == post.Path {
				continue
			}
			st.Removed++
			w.logger.Debug("worker: removed", slog.String("path", r))
			w.notify(EventRemoved, r)
		}
		if post != nil {
			st.Indexed++
			w.logger.Debug("worker: indexed", slog.String("path", post.Path), slog.String("title", post.Title))
			w.notify(EventIndexed, post.Path)
		}
	}
	return st
}

// Idle reports whether no paths are pending and no cycle is in progress.
func (w *Worker) Idle() bool {
	return !w.busy.Load() && w.queue.Len() == 0
}

// Cycles returns the number of completed drain cycles.
func (w *Worker) Cycles() int64 {
	return w.cycles.Load()
}

func (w *Worker) notify(kind, path string) {
	if w.cb != nil {
		w.cb(kind, path)
	}
}
