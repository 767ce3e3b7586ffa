package main

import (
	"github.com/aretw0/stagegen/internal/cli"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <table.csv>...",
	Short: "Check that files referenced by generated tables exist",
	Long: `Joins every PathName_/FileName_ pair and looks the file up. Container
paths that do not exist are retried on the host side of the rule document's
path_translation. Exits 1 when any file is missing.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, cfg, err := newLogger(cmd)
		if err != nil {
			return err
		}
		return cli.Check(cmd.Context(), cfg.SpecPath, args, cmd.OutOrStdout(), logger)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
