package runner

import (
	"fmt"
	"os"

	"github.com/tristendillon/tsfix/core/logger"
	"github.com/tristendillon/tsfix/core/walker"
)

// Fixer transforms the content of one file. relPath is slash separated and
// relative to the walk root. The bool reports whether a fix applied; the
// returned text may still equal the input.
type Fixer interface {
	Name() string
	Fix(relPath, content string) (string, bool)
}

type WritePolicy int

const (
	// WriteAlways writes every visited file back, changed or not.
	WriteAlways WritePolicy = iota
	// WriteOnChange writes only files the fixer reported as fixed.
	WriteOnChange
)

type Options struct {
	Policy WritePolicy
	DryRun bool
	// ReportFixed logs "Fixed: <path>" at INFO for every changed file written.
	ReportFixed bool
	// Recorder, when set, is told the content of every file written.
	Recorder Recorder
}

type Recorder interface {
	Record(filePath, content string)
}

// Result counts what a run did. Failed files are included in Visited.
type Result struct {
	Visited int
	Changed int
	Written int
	Failed  int
}

// Outcome is the result of processing a single file.
type Outcome struct {
	// Changed is the fixer's report, not a byte comparison.
	Changed bool
	Written bool
	// Content is what the file holds after processing.
	Content string
}

// FileError is the only per-file failure kind: reading, inspecting or writing
// one file went wrong.
type FileError struct {
	Path string
	Op   string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

type Runner struct {
	walker *walker.Walker
	fixer  Fixer
	opts   Options
}

func New(w *walker.Walker, fixer Fixer, opts Options) *Runner {
	return &Runner{walker: w, fixer: fixer, opts: opts}
}

func (r *Runner) Name() string {
	return r.fixer.Name()
}

// Matches reports whether f is a file this runner would visit during Run.
func (r *Runner) Matches(f walker.File) bool {
	return r.walker.Match(f) && !r.walker.InSkippedDir(f.RelPath)
}

// Run processes every candidate file in walk order. A failing file is logged
// and skipped; only a failure to walk the root is returned.
func (r *Runner) Run() (*Result, error) {
	result := &Result{}
	err := r.walker.Walk(func(f walker.File) error {
		result.Visited++
		outcome, err := r.ProcessFile(f)
		if err != nil {
			result.Failed++
			logger.Error("Error processing %s: %v", f.Path, unwrapFileError(err))
			return nil
		}
		if outcome.Changed {
			result.Changed++
		}
		if outcome.Written {
			result.Written++
		}
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("failed to walk %s: %w", r.walker.Root, err)
	}

	logger.Debug("%s: visited=%d changed=%d written=%d failed=%d",
		r.fixer.Name(), result.Visited, result.Changed, result.Written, result.Failed)
	return result, nil
}

// ProcessFile reads f, runs the fixer over it and writes it back according to
// the write policy.
func (r *Runner) ProcessFile(f walker.File) (*Outcome, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, &FileError{Path: f.Path, Op: "read", Err: err}
	}

	content := string(data)
	fixed, changed := r.fixer.Fix(f.RelPath, content)
	outcome := &Outcome{Changed: changed, Content: content}

	if r.opts.DryRun {
		if changed {
			logger.Info("Would fix: %s", f.Path)
		}
		return outcome, nil
	}

	if !changed && r.opts.Policy == WriteOnChange {
		return outcome, nil
	}

	info, err := os.Stat(f.Path)
	if err != nil {
		return nil, &FileError{Path: f.Path, Op: "stat", Err: err}
	}
	if err := os.WriteFile(f.Path, []byte(fixed), info.Mode().Perm()); err != nil {
		return nil, &FileError{Path: f.Path, Op: "write", Err: err}
	}
	outcome.Written = true
	outcome.Content = fixed
	if r.opts.Recorder != nil {
		r.opts.Recorder.Record(f.Path, fixed)
	}

	if changed && r.opts.ReportFixed {
		logger.Info("Fixed: %s", f.Path)
	} else if changed {
		logger.Debug("Rewrote %s", f.Path)
	}
	return outcome, nil
}

func unwrapFileError(err error) error {
	if fe, ok := err.(*FileError); ok {
		return fe.Err
	}
	return err
}
