/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
)

var relativeCmd = &cobra.Command{
	Use:   "relative",
	Short: "Repair relative imports inside the UI component tree",
	Long: `Walks the source tree and corrects relative imports of files nested inside
the UI component tree: the utils import depth, sibling module imports and
namesake imports. Only files that change are written back.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cleanup, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		return runSteps(relativeStep(cfg, nil))
	},
}

func init() {
	rootCmd.AddCommand(relativeCmd)
}
