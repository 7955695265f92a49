// Package report turns runner results into the two harness artifacts: the
// human-readable summary table and the optional machine-readable JSON file.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/natefinch/atomic"
	"github.com/oklog/ulid/v2"

	"github.com/vcodec/guardrail/internal/errors"
	"github.com/vcodec/guardrail/internal/runner"
)

// Report aggregates one harness run. RunID is a fresh ULID so CI artifacts
// from repeated runs stay distinguishable.
type Report struct {
	RunID     string          `json:"run_id"`
	StartedAt time.Time       `json:"started_at"`
	Results   []runner.Result `json:"results"`
	Passed    int             `json:"passed"`
	Failed    int             `json:"failed"`
}

func Build(startedAt time.Time, results []runner.Result) Report {
	passed, failed := runner.Summarize(results)
	return Report{
		RunID:     ulid.Make().String(),
		StartedAt: startedAt,
		Results:   results,
		Passed:    passed,
		Failed:    failed,
	}
}

func (r Report) AllPassed() bool {
	return r.Failed == 0
}

// WriteFile persists the report as JSON. The write is atomic so a harness
// killed mid-write never leaves a truncated artifact for CI to parse.
func WriteFile(path string, r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal report")
	}
	data = append(data, '\n')

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return errors.Wrap(err, "write report")
	}
	return nil
}

// Render produces the terminal summary table plus the aggregate verdict line.
func Render(r Report) string {
	green := lipgloss.Color("42")
	red := lipgloss.Color("196")
	yellow := lipgloss.Color("220")
	gray := lipgloss.Color("245")

	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1).Foreground(gray)
	outcomeStyles := map[runner.Outcome]lipgloss.Style{
		runner.OutcomePassed:   lipgloss.NewStyle().Padding(0, 1).Foreground(green),
		runner.OutcomeFailed:   lipgloss.NewStyle().Padding(0, 1).Foreground(red),
		runner.OutcomeCrashed:  lipgloss.NewStyle().Padding(0, 1).Foreground(red),
		runner.OutcomeTimedOut: lipgloss.NewStyle().Padding(0, 1).Foreground(yellow),
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(gray)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 {
				if style, ok := outcomeStyles[r.Results[row].Outcome]; ok {
					return style
				}
			}
			return cellStyle
		}).
		Headers("GUARDRAIL", "OUTCOME", "DURATION")

	for _, res := range r.Results {
		t.Row(res.Name, string(res.Outcome), res.Duration.Round(time.Millisecond).String())
	}

	verdict := fmt.Sprintf("%d passed, %d failed", r.Passed, r.Failed)
	if r.AllPassed() {
		verdict = lipgloss.NewStyle().Foreground(green).Bold(true).Render(verdict)
	} else {
		verdict = lipgloss.NewStyle().Foreground(red).Bold(true).Render(verdict)
	}

	return fmt.Sprintf("%s\nrun %s: %s", t.String(), r.RunID, verdict)
}
