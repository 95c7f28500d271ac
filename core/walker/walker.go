package walker

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/karrick/godirwalk"
	"github.com/tristendillon/tsfix/core/config"
	"github.com/tristendillon/tsfix/core/logger"
)

// File is a candidate source file found under the walk root.
type File struct {
	// Path is the on-disk path, joined onto the root as given.
	Path string
	// RelPath is slash separated and relative to the root.
	RelPath string
}

// Name returns the base name of the file.
func (f File) Name() string {
	return filepath.Base(f.Path)
}

type Walker struct {
	Root       string
	Extensions []string
	SkipDirs   []string
	Exclude    []string
	// SkipNameContains drops files whose base name contains any fragment.
	SkipNameContains []string
}

func New(cfg *config.Config) *Walker {
	return &Walker{
		Root:       cfg.Root,
		Extensions: cfg.Extensions,
		SkipDirs:   cfg.SkipDirs,
		Exclude:    cfg.Exclude,
	}
}

// WithSkipNameContains returns a copy of w that also drops files by name fragment.
func (w *Walker) WithSkipNameContains(fragments []string) *Walker {
	cp := *w
	cp.SkipNameContains = fragments
	return &cp
}

// ResolvedRoot returns Root with symlinks evaluated. godirwalk refuses to
// start from a symlink, and fsnotify reports events under the resolved path.
func (w *Walker) ResolvedRoot() (string, error) {
	info, err := os.Stat(w.Root)
	if err != nil {
		return "", fmt.Errorf("failed to stat root %s: %w", w.Root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("root %s is not a directory", w.Root)
	}
	resolved, err := filepath.EvalSymlinks(w.Root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root %s: %w", w.Root, err)
	}
	return filepath.Clean(resolved), nil
}

// Walk calls fn for every candidate file in lexical order. An error from fn
// stops the walk and is returned, as is a failure to read the root itself.
func (w *Walker) Walk(fn func(File) error) error {
	root, err := w.ResolvedRoot()
	if err != nil {
		return err
	}

	err = godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			rel, err := filepath.Rel(root, osPathname)
			if err != nil {
				return err
			}
			if rel == "." {
				return nil
			}

			if de.IsDir() {
				if w.shouldSkipDir(de.Name()) {
					logger.Debug("Skipping directory: %s", filepath.ToSlash(rel))
					return godirwalk.SkipThis
				}
				return nil
			}

			// Symlinked directories are not followed.
			if de.IsSymlink() {
				if st, err := os.Stat(osPathname); err == nil && st.IsDir() {
					return nil
				}
			}

			file := w.File(rel)
			if !w.Match(file) {
				return nil
			}
			if err := fn(file); err != nil {
				return &stopError{err: err}
			}
			return nil
		},
		ErrorCallback: func(osPathname string, err error) godirwalk.ErrorAction {
			var stop *stopError
			if errors.As(err, &stop) {
				return godirwalk.Halt
			}
			if filepath.Clean(osPathname) == root {
				return godirwalk.Halt
			}
			logger.Error("Error walking %s: %v", osPathname, err)
			return godirwalk.SkipNode
		},
	})

	var stop *stopError
	if errors.As(err, &stop) {
		return stop.err
	}
	return err
}

// File builds the File for rel, a path relative to the root in OS form. Path
// is joined onto Root as configured, not onto the resolved root.
func (w *Walker) File(rel string) File {
	return File{Path: filepath.Join(w.Root, rel), RelPath: filepath.ToSlash(rel)}
}

// stopError carries an error returned by the caller's fn through godirwalk.
type stopError struct {
	err error
}

func (e *stopError) Error() string { return e.err.Error() }

func (e *stopError) Unwrap() error { return e.err }

// Match reports whether file passes the extension, name and glob filters.
func (w *Walker) Match(file File) bool {
	if !w.hasExtension(file.RelPath) {
		return false
	}
	name := filepath.Base(file.RelPath)
	for _, fragment := range w.SkipNameContains {
		if fragment != "" && strings.Contains(name, fragment) {
			return false
		}
	}
	for _, pattern := range w.Exclude {
		if ok, _ := doublestar.Match(pattern, file.RelPath); ok {
			logger.Debug("Excluded by %q: %s", pattern, file.RelPath)
			return false
		}
	}
	return true
}

// InSkippedDir reports whether any directory of the slash separated file path
// rel is in SkipDirs.
func (w *Walker) InSkippedDir(rel string) bool {
	return w.SkipsDir(path.Dir(rel))
}

// SkipsDir reports whether the slash separated directory rel, or any of its
// parents, is in SkipDirs.
func (w *Walker) SkipsDir(rel string) bool {
	for _, dir := range strings.Split(rel, "/") {
		if w.shouldSkipDir(dir) {
			return true
		}
	}
	return false
}

func (w *Walker) hasExtension(name string) bool {
	for _, ext := range w.Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func (w *Walker) shouldSkipDir(name string) bool {
	for _, skip := range w.SkipDirs {
		if name == skip {
			return true
		}
	}
	return false
}
