package runner

import (
	"fmt"
	"sync"

	"github.com/tristendillon/tsfix/core/logger"
	"github.com/tristendillon/tsfix/core/walker"
)

// Step is one runner of a pipeline and the message logged when its full run
// completes.
type Step struct {
	Runner *Runner
	Done   string
}

// Pipeline runs its steps one after another. Steps share nothing; each
// re-reads the files the previous one wrote.
type Pipeline struct {
	steps []Step
	mu    sync.Mutex
}

func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Run walks the root once per step.
func (p *Pipeline) Run() (map[string]*Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	results := make(map[string]*Result, len(p.steps))
	for _, step := range p.steps {
		result, err := step.Runner.Run()
		if err != nil {
			return results, fmt.Errorf("%s: %w", step.Runner.Name(), err)
		}
		results[step.Runner.Name()] = result
		if step.Done != "" {
			logger.Info("%s", step.Done)
		}
	}
	return results, nil
}

// ProcessFiles runs every step over the given files only, skipping files a
// step would not visit. Failures are logged per file like a full run.
func (p *Pipeline) ProcessFiles(files []walker.File) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, step := range p.steps {
		for _, f := range files {
			if !step.Runner.Matches(f) {
				continue
			}
			if _, err := step.Runner.ProcessFile(f); err != nil {
				logger.Error("Error processing %s: %v", f.Path, unwrapFileError(err))
			}
		}
	}
}
