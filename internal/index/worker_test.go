package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/quiet/internal/models"
	"github.com/starford/quiet/internal/render"
	"github.com/starford/quiet/internal/storage"
	"github.com/starford/quiet/internal/testutil"
)

// countingBuilder records how often each path was built.
type countingBuilder struct {
	inner Builder
	mu    sync.Mutex
	calls map[string]int
}

func (c *countingBuilder) Build(path string) (*models.Post, error) {
	c.mu.Lock()
	c.calls[path]++
	c.mu.Unlock()
	return c.inner.Build(path)
}

type workerEnv struct {
	root    string
	queue   *Queue
	index   *Index
	builder *countingBuilder
	worker  *Worker
	events  []string
}

func newWorkerEnv(t *testing.T, hidden ...string) *workerEnv {
	t.Helper()
	root := testutil.ContentRoot(t)
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	env := &workerEnv{
		root:    root,
		queue:   NewQueue(),
		index:   NewIndex(hidden),
		builder: &countingBuilder{inner: NewPostBuilder(store, render.NewMarkdown()), calls: map[string]int{}},
	}
	env.worker = NewWorker(env.queue, env.index, env.builder, store, testutil.Discard(),
		WithCallback(func(kind, path string) {
			env.events = append(env.events, kind+":"+path)
		}))
	return env
}

func TestWorker_DedupedReprocessing(t *testing.T) {
	env := newWorkerEnv(t)
	p := testutil.WriteFile(t, env.root, "a.md", "hello")
	for i := 0; i < 10; i++ {
		env.queue.Add(p)
	}

	st := env.worker.Drain()
	if st.Processed != 1 || st.Indexed != 1 {
		t.Errorf("stats = %+v", st)
	}
	if env.builder.calls[p] != 1 {
		t.Errorf("built %d times, want 1", env.builder.calls[p])
	}
	if env.index.Len() != 1 {
		t.Errorf("index len = %d", env.index.Len())
	}
}

func TestWorker_SkipsNonContentFiles(t *testing.T) {
	env := newWorkerEnv(t)
	for _, name := range []string{"notes.txt", "_draft.md", "~backup.md"} {
		env.queue.Add(testutil.WriteFile(t, env.root, name, "x"))
	}
	st := env.worker.Drain()
	if st.Processed != 3 || st.Indexed != 0 || st.Failed != 0 {
		t.Errorf("stats = %+v", st)
	}
	if len(env.builder.calls) != 0 {
		t.Errorf("builder called for %v", env.builder.calls)
	}
}

func TestWorker_DirectoryDeletion(t *testing.T) {
	env := newWorkerEnv(t)
	dir := filepath.Join(env.root, "series")
	for i := 0; i < 3; i++ {
		env.queue.Add(testutil.WriteFile(t, env.root, fmt.Sprintf("series/part%d.md", i), "x"))
	}
	env.queue.Add(testutil.WriteFile(t, env.root, "keep.md", "x"))
	env.worker.Drain()
	if env.index.Len() != 4 {
		t.Fatalf("precondition: index len = %d, want 4", env.index.Len())
	}

	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	env.queue.Add(dir)
	st := env.worker.Drain()

	if st.Removed != 3 {
		t.Errorf("removed = %d, want 3", st.Removed)
	}
	if env.index.Len() != 1 || env.index.Get(filepath.Join(env.root, "keep.md")) == nil {
		t.Errorf("only keep.md should remain, len = %d", env.index.Len())
	}
}

func TestWorker_FileDeletion(t *testing.T) {
	env := newWorkerEnv(t)
	p := testutil.WriteFile(t, env.root, "gone.md", "x")
	env.queue.Add(p)
	env.worker.Drain()

	_ = os.Remove(p)
	env.queue.Add(p)
	env.worker.Drain()

	if env.index.Len() != 0 {
		t.Errorf("index len = %d, want 0", env.index.Len())
	}
	want := []string{"indexed:" + p, "removed:" + p}
	if len(env.events) != 2 || env.events[0] != want[0] || env.events[1] != want[1] {
		t.Errorf("events = %v, want %v", env.events, want)
	}
}

func TestWorker_ParseFailureIsolation(t *testing.T) {
	env := newWorkerEnv(t)
	for i := 0; i < 9; i++ {
		env.queue.Add(testutil.WriteFile(t, env.root, fmt.Sprintf("ok%d.md", i), "fine"))
	}
	bad := testutil.WriteFile(t, env.root, "bad.md", "---\nno colon\n---\nbody")
	env.queue.Add(bad)

	st := env.worker.Drain()
	if st.Indexed != 9 || st.Failed != 1 {
		t.Errorf("stats = %+v, want 9 indexed / 1 failed", st)
	}
	if env.index.Len() != 9 || env.index.Get(bad) != nil {
		t.Errorf("index len = %d", env.index.Len())
	}

	// A broken rewrite of a good file drops it; only the next change brings it back.
	good := filepath.Join(env.root, "ok0.md")
	testutil.WriteFile(t, env.root, "ok0.md", "---\nbroken\n---\n")
	env.queue.Add(good)
	env.worker.Drain()
	if env.index.Get(good) != nil {
		t.Error("failed reparse should leave the path absent")
	}
	env.worker.Drain()
	if env.builder.calls[good] != 2 {
		t.Errorf("failed path retried without a change: %d builds", env.builder.calls[good])
	}
}

func TestWorker_HiddenCategoryStillReplaced(t *testing.T) {
	env := newWorkerEnv(t, "drafts")
	p := testutil.WriteFile(t, env.root, "drafts/wip.md", testutil.Post("x", "title: one"))
	env.queue.Add(p)
	env.worker.Drain()

	testutil.WriteFile(t, env.root, "drafts/wip.md", testutil.Post("x", "title: two"))
	env.queue.Add(p)
	env.worker.Drain()

	if env.index.Len() != 1 || env.index.Count() != 0 {
		t.Fatalf("len/count = %d/%d, want 1/0", env.index.Len(), env.index.Count())
	}
	if got := env.index.Get(p).Title; got != "two" {
		t.Errorf("title = %q, want two", got)
	}
}

func TestWorker_RunDrainsPeriodically(t *testing.T) {
	env := newWorkerEnv(t)
	env.worker = NewWorker(env.queue, env.index, env.builder, mustFS(t, env.root), testutil.Discard(),
		WithInterval(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = env.worker.Run(ctx)
		close(done)
	}()

	env.queue.Add(testutil.WriteFile(t, env.root, "tick.md", "x"))
	testutil.Eventually(t, 2*time.Second, 10*time.Millisecond, func() bool {
		return env.index.Len() == 1 && env.worker.Idle()
	}, "worker did not index queued file")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancel")
	}
	if env.worker.Cycles() == 0 {
		t.Error("expected at least one completed cycle")
	}
}

func mustFS(t *testing.T, root string) *storage.FS {
	t.Helper()
	fs, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return fs
}
