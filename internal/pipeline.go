package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/quiet/internal/index"
	"github.com/starford/quiet/internal/postservice"
	"github.com/starford/quiet/internal/render"
	"github.com/starford/quiet/internal/storage"
)

// pipeline is the live indexing subsystem:
// watcher -> queue -> worker -> builder -> index.
type pipeline struct {
	root    string
	index   *index.Index
	queue   *index.Queue
	watcher *index.Watcher
	worker  *index.Worker
}

// newPipeline wires the indexing components for cfg. cb, if non-nil,
// receives worker events with paths relative to the content root.
func newPipeline(cfg ContentConfig, logger *slog.Logger, cb index.EventCallback) (*pipeline, error) {
	root, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve content dir: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create content dir: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	store, err := storage.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	p := &pipeline{
		root:  root,
		index: index.NewIndex(cfg.HiddenCategories),
		queue: index.NewQueue(),
	}
	opts := []index.WorkerOption{index.WithInterval(cfg.PollInterval)}
	if cb != nil {
		opts = append(opts, index.WithCallback(func(kind, path string) {
			cb(kind, p.relative(path))
		}))
	}
	builder := index.NewPostBuilder(store, render.NewMarkdown())
	p.worker = index.NewWorker(p.queue, p.index, builder, store, logger, opts...)
	p.watcher = index.NewWatcher(root, index.Enqueue(p.queue), logger)
	return p, nil
}

// service returns the read-side service over the pipeline's index.
func (p *pipeline) service(pageSize int) *postservice.Service {
	return postservice.NewService(p.index, pageSize)
}

// ready reports whether the initial population has been fully indexed.
func (p *pipeline) ready() bool {
	select {
	case <-p.watcher.Ready():
		return p.worker.Idle()
	default:
		return false
	}
}

// scan runs the initial walk once and indexes everything it found.
func (p *pipeline) scan(ctx context.Context) (index.Stats, error) {
	ctx, cancel := context.WithCancel(ctx)
	errc := make(chan error, 1)
	go func() { errc <- p.watcher.Run(ctx) }()

	select {
	case <-p.watcher.Ready():
	case err := <-errc:
		cancel()
		if err == nil {
			err = fmt.Errorf("watcher stopped before the initial walk")
		}
		return index.Stats{}, err
	case <-ctx.Done():
		cancel()
		return index.Stats{}, ctx.Err()
	}
	cancel()
	<-errc
	return p.worker.Drain(), nil
}

func (p *pipeline) relative(path string) string {
	rel, err := filepath.Rel(p.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
