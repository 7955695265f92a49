package main

import (
	"log/slog"

	"github.com/vcodec/guardrail/internal/errors"
	"github.com/vcodec/guardrail/internal/guardrail"

	"github.com/spf13/cobra"
)

// guardCmd is the child-process entry the runner re-execs for each check.
// Exactly one guardrail runs in this process; its exit code is the verdict.
var guardCmd = &cobra.Command{
	Use:    "guard <name>",
	Short:  "Run a single guardrail in this process",
	Hidden: true,
	Args:   cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := guardrail.Lookup(args[0])
		if err != nil {
			return err
		}

		err = g.Run(cmd.Context(), cfg)
		if errors.IsCategory(err, errors.ErrAdvisoryBreach) {
			// Advisory thresholds warn without flipping the exit status.
			slog.Warn("Advisory threshold exceeded", "guardrail", g.Name(), "detail", err)
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(guardCmd)
}
