package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/karrick/godirwalk"
	"github.com/tristendillon/tsfix/core/cache"
	"github.com/tristendillon/tsfix/core/logger"
	"github.com/tristendillon/tsfix/core/walker"
)

const DefaultDebounce = 500 * time.Millisecond

// FileWatcher collects changes to candidate files under the walker root and
// hands them to OnChange in debounced batches.
type FileWatcher struct {
	Watcher  *fsnotify.Watcher
	Walker   *walker.Walker
	Cache    *cache.ContentCache
	Debounce time.Duration
	OnChange func(files []walker.File)

	// root is Walker.Root with symlinks resolved; fsnotify reports paths under it.
	root    string
	mutex   sync.Mutex
	timer   *time.Timer
	pending map[string]walker.File
	// flushMu keeps batches from overlapping when a timer fires mid-batch.
	flushMu sync.Mutex
}

func NewFileWatcher(w *walker.Walker, contentCache *cache.ContentCache, onChange func([]walker.File)) (*FileWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	root, err := w.ResolvedRoot()
	if err != nil {
		root = filepath.Clean(w.Root)
	}
	return &FileWatcher{
		root:     root,
		Watcher:  fsw,
		Walker:   w,
		Cache:    contentCache,
		Debounce: DefaultDebounce,
		OnChange: onChange,
		pending:  make(map[string]walker.File),
	}, nil
}

// Watch blocks until ctx is done or fsnotify shuts down.
func (fw *FileWatcher) Watch(ctx context.Context) error {
	root, err := fw.Walker.ResolvedRoot()
	if err != nil {
		return err
	}
	fw.root = root
	if err := fw.addWatchersRecursively(root, false); err != nil {
		return fmt.Errorf("failed to add watchers: %w", err)
	}
	logger.Info("Watching %s for changes", fw.Walker.Root)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			fw.handleEvent(event)

		case err, ok := <-fw.Watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error("Watcher error: %v", err)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	rel, ok := fw.relPath(event.Name)
	if !ok {
		return
	}
	logger.Debug("File event: %s %s", event.Op, rel)
	file := fw.Walker.File(filepath.FromSlash(rel))

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		fw.Cache.Remove(file.Path)
		fw.dropPending(file.Path)
		return
	}

	if event.Has(fsnotify.Create) {
		if stat, err := os.Stat(event.Name); err == nil && stat.IsDir() {
			if !fw.Walker.SkipsDir(rel) {
				// A directory moved or copied in arrives with its files already inside.
				if err := fw.addWatchersRecursively(event.Name, true); err != nil {
					logger.Error("Failed to watch new directory %s: %v", rel, err)
				}
			}
			return
		}
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	fw.enqueueCandidate(file)
}

func (fw *FileWatcher) enqueueCandidate(file walker.File) {
	if fw.Walker.InSkippedDir(file.RelPath) || !fw.Walker.Match(file) {
		return
	}
	fw.enqueue(file)
}

func (fw *FileWatcher) enqueue(file walker.File) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()

	fw.pending[file.Path] = file
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.Debounce, fw.flush)
}

func (fw *FileWatcher) dropPending(path string) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	delete(fw.pending, path)
}

// flush hands the pending batch to OnChange, minus files whose content is what
// tsfix itself last wrote.
func (fw *FileWatcher) flush() {
	fw.flushMu.Lock()
	defer fw.flushMu.Unlock()

	fw.mutex.Lock()
	batch := make([]walker.File, 0, len(fw.pending))
	for _, f := range fw.pending {
		batch = append(batch, f)
	}
	fw.pending = make(map[string]walker.File)
	fw.mutex.Unlock()

	sort.Slice(batch, func(i, j int) bool { return batch[i].RelPath < batch[j].RelPath })

	var changed []walker.File
	for _, f := range batch {
		same, err := fw.Cache.Unchanged(f.Path)
		if err != nil {
			logger.Debug("Cache check failed for %s: %v", f.RelPath, err)
		}
		if same {
			logger.Debug("Ignoring own write: %s", f.RelPath)
			continue
		}
		changed = append(changed, f)
	}

	if len(changed) == 0 {
		return
	}
	logger.Debug("File changes detected, fixing %d file(s)", len(changed))
	fw.OnChange(changed)
}

func (fw *FileWatcher) Close() error {
	fw.mutex.Lock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.mutex.Unlock()

	return fw.Watcher.Close()
}

func (fw *FileWatcher) relPath(path string) (string, bool) {
	rel, err := filepath.Rel(fw.root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// addWatchersRecursively watches dir and every directory below it that is not
// skipped. With queueFiles set, candidate files found on the way are queued.
func (fw *FileWatcher) addWatchersRecursively(dir string, queueFiles bool) error {
	return godirwalk.Walk(dir, &godirwalk.Options{
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			rel, ok := fw.relPath(osPathname)
			if !de.IsDir() {
				if queueFiles && ok {
					fw.enqueueCandidate(fw.Walker.File(filepath.FromSlash(rel)))
				}
				return nil
			}
			if ok && fw.Walker.SkipsDir(rel) {
				logger.Debug("Excluding directory: %s", rel)
				return godirwalk.SkipThis
			}

			logger.Debug("Adding watcher for: %s", osPathname)
			if err := fw.Watcher.Add(osPathname); err != nil {
				return fmt.Errorf("failed to add watcher for %s: %w", osPathname, err)
			}
			return nil
		},
	})
}
