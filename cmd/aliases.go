/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
)

var aliasesCmd = &cobra.Command{
	Use:   "aliases",
	Short: "Rewrite @/ alias imports into relative imports",
	Long: `Walks the source tree and rewrites "@/..." alias imports according to the
category of each file's directory. Every visited file is written back, and a
malformed "from [ 'x' ]" clause is repaired along the way.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cleanup, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		return runSteps(aliasStep(cfg, nil))
	},
}

func init() {
	rootCmd.AddCommand(aliasesCmd)
}
