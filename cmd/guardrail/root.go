package main

import (
	"fmt"
	"os"

	"github.com/vcodec/guardrail/internal/config"
	"github.com/vcodec/guardrail/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "guardrail",
	Short: "Release guardrails for the video-encoding library",
	Long: `Guardrail is the CI gate protecting the video-encoding library against
memory leaks, scheduler starvation, unsafe handling of malformed input, and
throughput regressions. Each check runs in its own child process so a native
crash in one check cannot take down the harness.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd)
		if err != nil {
			return err
		}

		logger.Setup(cfg.Harness.LogLevel)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.guardrail/config.yaml)")
	rootCmd.PersistentFlags().String("harness.log_level", config.DefaultHarnessLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("harness.guard_timeout", config.DefaultHarnessGuardTimeout, "wall-clock budget per guardrail")
	rootCmd.PersistentFlags().String("harness.report_path", config.DefaultHarnessReportPath, "JSON report output path (empty disables)")
}
