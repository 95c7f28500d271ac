package cmd

import (
	"github.com/tristendillon/tsfix/core/config"
	"github.com/tristendillon/tsfix/core/rewrite"
	"github.com/tristendillon/tsfix/core/runner"
	"github.com/tristendillon/tsfix/core/walker"
)

func aliasStep(cfg *config.Config, rec runner.Recorder) runner.Step {
	r := runner.New(walker.New(cfg), rewrite.NewAliasFixer(cfg.Aliases), runner.Options{
		Policy:   runner.WriteAlways,
		DryRun:   cfg.DryRun,
		Recorder: rec,
	})
	return runner.Step{Runner: r, Done: "Import pattern fixing complete."}
}

func relativeStep(cfg *config.Config, rec runner.Recorder) runner.Step {
	w := walker.New(cfg).WithSkipNameContains(cfg.Relative.SkipNameContains)
	r := runner.New(w, rewrite.NewRelativeFixer(cfg.Relative), runner.Options{
		Policy:      runner.WriteOnChange,
		DryRun:      cfg.DryRun,
		ReportFixed: true,
		Recorder:    rec,
	})
	return runner.Step{Runner: r, Done: "Relative path fixing complete."}
}

func runSteps(steps ...runner.Step) error {
	_, err := runner.NewPipeline(steps...).Run()
	return err
}
