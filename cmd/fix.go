/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
)

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Run the aliases pass followed by the relative pass",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cleanup, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		return runSteps(aliasStep(cfg, nil), relativeStep(cfg, nil))
	},
}

func init() {
	rootCmd.AddCommand(fixCmd)
}
