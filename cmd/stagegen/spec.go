package main

import (
	"github.com/aretw0/stagegen/internal/cli"
	"github.com/spf13/cobra"
)

var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "Inspect the rule document",
}

var specValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the rule document and report every problem",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, cfg, err := newLogger(cmd)
		if err != nil {
			return err
		}
		return cli.ValidateSpec(cmd.Context(), cfg.SpecPath, cmd.OutOrStdout(), logger)
	},
}

var specDescribeCmd = &cobra.Command{
	Use:   "describe [input-table]",
	Short: "Describe every stage; with an input table, list generated headers",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, cfg, err := newLogger(cmd)
		if err != nil {
			return err
		}
		input := ""
		if len(args) > 0 {
			input = args[0]
		}
		return cli.DescribeSpec(cmd.Context(), cfg.SpecPath, input, cmd.OutOrStdout(), logger)
	},
}

func init() {
	specCmd.AddCommand(specValidateCmd, specDescribeCmd)
	rootCmd.AddCommand(specCmd)
}
