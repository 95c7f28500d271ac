package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"
	"github.com/tristendillon/tsfix/core/cache"
	"github.com/tristendillon/tsfix/core/config"
	"github.com/tristendillon/tsfix/core/walker"
)

func newTestWatcher(t *testing.T) (*FileWatcher, string, chan []walker.File) {
	t.Helper()
	root := t.TempDir()
	fw, batches := newWatcherAt(t, root)
	return fw, root, batches
}

func newWatcherAt(t *testing.T, root string) (*FileWatcher, chan []walker.File) {
	t.Helper()
	cfg := config.Default()
	cfg.Root = root

	batches := make(chan []walker.File, 8)
	fw, err := NewFileWatcher(walker.New(cfg), cache.NewContentCache(), func(files []walker.File) {
		batches <- files
	})
	require.NoError(t, err)
	fw.Debounce = 200 * time.Millisecond
	t.Cleanup(func() { fw.Close() })
	return fw, batches
}

func startWatch(t *testing.T, fw *FileWatcher, dirs int) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- fw.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("Watch did not return after cancel")
		}
	})

	require.Eventually(t, func() bool {
		return len(fw.Watcher.WatchList()) == dirs
	}, 5*time.Second, 10*time.Millisecond)
}

func writeFile(t *testing.T, root, rel, body string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func receive(t *testing.T, batches chan []walker.File) []walker.File {
	t.Helper()
	select {
	case batch := <-batches:
		return batch
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a batch")
		return nil
	}
}

func TestHandleEventBatchesCandidates(t *testing.T) {
	fw, root, batches := newTestWatcher(t)
	a := writeFile(t, root, "lib/a.ts", "a")
	b := writeFile(t, root, "components/ui/b/b.tsx", "b")
	md := writeFile(t, root, "README.md", "r")
	dep := writeFile(t, root, "node_modules/x/index.ts", "x")

	fw.handleEvent(fsnotify.Event{Name: b, Op: fsnotify.Write})
	fw.handleEvent(fsnotify.Event{Name: a, Op: fsnotify.Create})
	fw.handleEvent(fsnotify.Event{Name: a, Op: fsnotify.Write})
	fw.handleEvent(fsnotify.Event{Name: md, Op: fsnotify.Write})
	fw.handleEvent(fsnotify.Event{Name: dep, Op: fsnotify.Write})
	fw.handleEvent(fsnotify.Event{Name: a, Op: fsnotify.Chmod})

	batch := receive(t, batches)
	require.Equal(t, []walker.File{
		{Path: b, RelPath: "components/ui/b/b.tsx"},
		{Path: a, RelPath: "lib/a.ts"},
	}, batch)
}

func TestFlushSkipsOwnWrites(t *testing.T) {
	fw, root, batches := newTestWatcher(t)
	a := writeFile(t, root, "lib/a.ts", "fixed")
	b := writeFile(t, root, "lib/b.ts", "edited")
	fw.Cache.Record(a, "fixed")
	fw.Cache.Record(b, "before edit")

	fw.handleEvent(fsnotify.Event{Name: a, Op: fsnotify.Write})
	fw.handleEvent(fsnotify.Event{Name: b, Op: fsnotify.Write})

	require.Equal(t, []walker.File{{Path: b, RelPath: "lib/b.ts"}}, receive(t, batches))
}

func TestFlushWithOnlyOwnWritesCallsNothing(t *testing.T) {
	fw, root, batches := newTestWatcher(t)
	a := writeFile(t, root, "lib/a.ts", "fixed")
	fw.Cache.Record(a, "fixed")

	fw.enqueue(walker.File{Path: a, RelPath: "lib/a.ts"})
	fw.flush()

	select {
	case batch := <-batches:
		t.Fatalf("unexpected batch %v", batch)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRemoveDropsPendingAndCache(t *testing.T) {
	fw, root, batches := newTestWatcher(t)
	a := writeFile(t, root, "lib/a.ts", "a")
	b := writeFile(t, root, "lib/b.ts", "b")
	fw.Cache.Record(a, "a")

	fw.handleEvent(fsnotify.Event{Name: a, Op: fsnotify.Write})
	fw.handleEvent(fsnotify.Event{Name: b, Op: fsnotify.Write})
	fw.handleEvent(fsnotify.Event{Name: a, Op: fsnotify.Remove})

	require.Equal(t, []walker.File{{Path: b, RelPath: "lib/b.ts"}}, receive(t, batches))
	same, err := fw.Cache.Unchanged(a)
	require.NoError(t, err)
	require.False(t, same, "removed files are forgotten")
}

func TestWatchPicksUpEdits(t *testing.T) {
	fw, root, batches := newTestWatcher(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "lib"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dist"), 0o755))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- fw.Watch(ctx) }()

	require.Eventually(t, func() bool {
		return len(fw.Watcher.WatchList()) == 2
	}, 5*time.Second, 10*time.Millisecond)

	path := writeFile(t, root, "lib/state.ts", `import { T } from "@/types/t";`)
	batch := receive(t, batches)
	require.Equal(t, []walker.File{{Path: path, RelPath: "lib/state.ts"}}, batch)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatchQueuesFilesOfNewDirectory(t *testing.T) {
	fw, root, batches := newTestWatcher(t)
	startWatch(t, fw, 1)

	staging := t.TempDir()
	writeFile(t, staging, "card/card.tsx", `import { cn } from "@/lib/utils";`)
	writeFile(t, staging, "card/parts/header.tsx", `export {}`)
	writeFile(t, staging, "card/README.md", "card")
	writeFile(t, staging, "card/node_modules/x/index.ts", "x")
	require.NoError(t, os.Rename(filepath.Join(staging, "card"), filepath.Join(root, "card")))

	require.Equal(t, []walker.File{
		{Path: filepath.Join(root, "card", "card.tsx"), RelPath: "card/card.tsx"},
		{Path: filepath.Join(root, "card", "parts", "header.tsx"), RelPath: "card/parts/header.tsx"},
	}, receive(t, batches))
	require.Eventually(t, func() bool {
		return len(fw.Watcher.WatchList()) == 3
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatchSymlinkedRoot(t *testing.T) {
	target := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(target, "lib"), 0o755))
	root := filepath.Join(t.TempDir(), "src")
	require.NoError(t, os.Symlink(target, root))

	fw, batches := newWatcherAt(t, root)
	startWatch(t, fw, 2)

	writeFile(t, target, "lib/state.ts", `import { T } from "@/types/t";`)
	require.Equal(t, []walker.File{
		{Path: filepath.Join(root, "lib", "state.ts"), RelPath: "lib/state.ts"},
	}, receive(t, batches))
}
