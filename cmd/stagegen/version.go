package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/stagegen"
	"github.com/aretw0/stagegen/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of stagegen",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if tui.IsTerminal(out) {
			tui.PrintBanner(out)
		}
		fmt.Fprintf(out, "stagegen version %s\n", strings.TrimSpace(stagegen.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
