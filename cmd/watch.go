package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tristendillon/tsfix/core/cache"
	"github.com/tristendillon/tsfix/core/logger"
	"github.com/tristendillon/tsfix/core/runner"
	"github.com/tristendillon/tsfix/core/walker"
	"github.com/tristendillon/tsfix/core/watcher"
)

var debounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Fix the tree, then keep fixing files as they change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cleanup, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		contentCache := cache.NewContentCache()
		pipeline := runner.NewPipeline(aliasStep(cfg, contentCache), relativeStep(cfg, contentCache))
		if _, err := pipeline.Run(); err != nil {
			return err
		}

		fw, err := watcher.NewFileWatcher(walker.New(cfg), contentCache, pipeline.ProcessFiles)
		if err != nil {
			return err
		}
		defer fw.Close()
		fw.Debounce = debounce

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := fw.Watch(ctx); err != nil {
			return fmt.Errorf("failed to watch %s: %w", cfg.Root, err)
		}

		hits, misses := contentCache.Stats()
		logger.Debug("Content cache: %d own writes ignored, %d edits processed", hits, misses)
		logger.Info("Shutting down watcher...")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounce, "Quiet period before a batch of changes is fixed")
}
