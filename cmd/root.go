/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tristendillon/tsfix/core/config"
	"github.com/tristendillon/tsfix/core/logger"
)

var rootCmd = &cobra.Command{
	Use:   "tsfix",
	Short: "Rewrites alias and relative imports in a TypeScript source tree.",
	Long: `tsfix walks a TypeScript source tree and rewrites import specifiers.

The aliases pass turns "@/..." alias imports into relative imports chosen by the
directory a file lives in. The relative pass repairs relative imports inside the
UI component tree whose depth the aliases pass got wrong.`,
	SilenceUsage: true,
}

var (
	cfgFile string
	rootDir string
	logfile string
	verbose bool
	noColor bool
	dryRun  bool
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./"+config.FileName+")")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Source tree to rewrite (overrides config and TSFIX_ROOT); markers such as components/ui match paths relative to it, so point it above them")
	rootCmd.PersistentFlags().StringVar(&logfile, "logfile", "", "File to write logs to")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing files")
}

// loadConfig resolves the configuration for a command: file, then environment,
// then flags. The returned func releases the log file, if any.
func loadConfig(cmd *cobra.Command) (*config.Config, func(), error) {
	logger.SetVerbose(verbose)
	logger.SetColor(!noColor)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("root") {
		cfg.Root = rootDir
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if flags.Changed("no-color") {
		cfg.NoColor = noColor
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = dryRun
	}

	logger.SetVerbose(cfg.Verbose)
	logger.SetColor(!cfg.NoColor)

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	cleanup := func() {}
	if logfile != "" {
		closeFn, err := logger.OpenLogFile(logfile)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() {
			if err := closeFn(); err != nil {
				fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
			}
		}
	}

	logger.Debug("%s called with root %s", cmd.Name(), cfg.Root)
	return cfg, cleanup, nil
}
