package main

import (
	"github.com/aretw0/stagegen/internal/cli"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate <input-table>",
	Short: "Generate the load table of every stage",
	Long: `Reads the sample sheet, writes one CSV per stage into --output-dir and,
with --validate, compares each table with its reference. Validation
mismatches are reported but do not change the exit code.

Exit codes: 0 success, 1 I/O, 2 invalid arguments or rule document, 3 a stage failed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, cfg, err := newLogger(cmd)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		cfg.Input = args[0]
		cfg.OutputDir, _ = flags.GetString("output-dir")
		cfg.ReferenceDir, _ = flags.GetString("reference-dir")
		cfg.Validate, _ = flags.GetBool("validate")
		cfg.Wells, _ = flags.GetString("wells")
		cfg.Stages, _ = flags.GetStringArray("stage")
		cfg.Concurrency, _ = flags.GetInt("concurrency")
		cfg.MaxMismatches, _ = flags.GetInt("max-mismatches")
		cfg.MetricsFile, _ = flags.GetString("metrics-file")
		cfg.BasePath, _ = flags.GetString("base-path")
		cfg.Format, _ = flags.GetString("format")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		err = cli.Generate(ctx, cfg, cmd.OutOrStdout(), logger)
		if sig := ctx.Signal(); sig != nil {
			logger.Warn("interrupted", "signal", sig.String())
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	defaults := cli.DefaultConfig()
	f := generateCmd.Flags()
	f.StringP("output-dir", "o", defaults.OutputDir, "Directory for generated tables")
	f.String("reference-dir", "", "Directory holding reference tables (default: --output-dir)")
	f.Bool("validate", false, "Compare generated tables with reference tables")
	f.String("wells", "", `Restrict to wells matching glob patterns, e.g. "A*,{B,C}1"`)
	f.StringArray("stage", nil, "Stage to generate (repeatable, default: all)")
	f.Int("concurrency", 0, "Stages generated at once (0: all)")
	f.Int("max-mismatches", defaults.MaxMismatches, "Mismatching cells listed per stage")
	f.String("metrics-file", "", "Write Prometheus metrics to this textfile")
	f.String("base-path", "", "Override the rule document's base_path variable")
	f.String("format", defaults.Format, "Report format: text, json, markdown")
}
