package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/stagegen/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stagegen",
	Short: "Generate per-stage load tables from a sample sheet",
	Long: `stagegen turns a flat sample sheet into the load tables of every
stage of an image-analysis workflow, following a declarative rule document
(the embedded pcpip document unless --spec is given).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("spec", "", "Rule document: YAML/JSON file or directory of per-stage documents (default: embedded pcpip)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
}

// commonConfig reads the persistent flags into a default config.
func commonConfig(cmd *cobra.Command) cli.Config {
	cfg := cli.DefaultConfig()
	cfg.SpecPath, _ = cmd.Flags().GetString("spec")
	cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	cfg.LogFormat, _ = cmd.Flags().GetString("log-format")
	return cfg
}

func newLogger(cmd *cobra.Command) (*slog.Logger, cli.Config, error) {
	cfg := commonConfig(cmd)
	logger, err := cli.CreateLogger(cfg)
	return logger, cfg, err
}
