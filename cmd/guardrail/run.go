package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/vcodec/guardrail/internal/report"
	"github.com/vcodec/guardrail/internal/runner"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every guardrail and produce the aggregate verdict",
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := runSuite(cmd)
		if err != nil {
			return err
		}

		if !rep.AllPassed() {
			return fmt.Errorf("%d of %d guardrails did not pass", rep.Failed, rep.Passed+rep.Failed)
		}
		return nil
	},
}

// runSuite executes the full guardrail suite once and emits both artifacts.
// Shared by run and watch.
func runSuite(cmd *cobra.Command) (report.Report, error) {
	specs, err := runner.BuildSpecs(cfg)
	if err != nil {
		return report.Report{}, err
	}

	started := time.Now()
	r := runner.New(specs, cfg.Harness.LockPath)
	results, err := r.Run(cmd.Context())
	if err != nil {
		return report.Report{}, err
	}

	rep := report.Build(started, results)
	fmt.Fprintln(os.Stdout, report.Render(rep))

	if cfg.Harness.ReportPath != "" {
		if err := report.WriteFile(cfg.Harness.ReportPath, rep); err != nil {
			return report.Report{}, err
		}
		slog.Info("Report written", "path", cfg.Harness.ReportPath, "run_id", rep.RunID)
	}

	return rep, nil
}

func init() {
	rootCmd.AddCommand(runCmd)
}
