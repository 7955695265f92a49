package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var (
	watchSchedule string
	watchFailFast bool
)

// watchCmd re-runs the suite on a cron schedule, for soaking a development
// build overnight without CI involvement.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the guardrail suite on a cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Suite runs must not overlap: guardrails hold the harness lock and
		// manipulate process-wide counters in their children.
		failures := 0
		c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
		_, err := c.AddFunc(watchSchedule, func() {
			rep, err := runSuite(cmd)
			if err != nil {
				slog.Error("Suite run failed", "error", err)
				failures++
			} else if !rep.AllPassed() {
				slog.Error("Suite reported failures", "failed", rep.Failed, "run_id", rep.RunID)
				failures++
			} else {
				slog.Info("Suite passed", "run_id", rep.RunID)
			}

			if failures > 0 && watchFailFast {
				stop()
			}
		})
		if err != nil {
			return fmt.Errorf("invalid schedule %q: %w", watchSchedule, err)
		}

		slog.Info("Watch mode started", "schedule", watchSchedule)
		c.Start()
		<-ctx.Done()

		stopCtx := c.Stop()
		<-stopCtx.Done()

		if failures > 0 {
			return fmt.Errorf("%d scheduled run(s) did not pass", failures)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "@hourly", "cron schedule for suite runs")
	watchCmd.Flags().BoolVar(&watchFailFast, "fail-fast", false, "stop watching after the first failing run")
}
