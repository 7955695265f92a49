// Package runner orchestrates guardrail execution. Every guardrail runs as
// a fully isolated child process - the harness binary re-executed with
// "guard <name>" - so a native crash in one check can never take down the
// runner or skip the checks that follow.
package runner

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/shlex"

	"github.com/vcodec/guardrail/internal/config"
	"github.com/vcodec/guardrail/internal/errors"
	"github.com/vcodec/guardrail/internal/guardrail"
)

// Outcome classifies how a guardrail invocation ended.
type Outcome string

const (
	OutcomePassed   Outcome = "passed"
	OutcomeFailed   Outcome = "failed"
	OutcomeTimedOut Outcome = "timed_out"
	OutcomeCrashed  Outcome = "crashed"
)

// Spec declares one guardrail invocation. Specs are immutable after
// BuildSpecs; slice order is execution order.
type Spec struct {
	Name    string
	Command string
	Args    []string
	Timeout time.Duration
}

// Result records the outcome of one completed invocation. Output holds the
// child's interleaved stdout/stderr up to the kill point on timeout.
type Result struct {
	Name     string        `json:"name"`
	Outcome  Outcome       `json:"outcome"`
	Duration time.Duration `json:"duration"`
	Output   string        `json:"output"`
}

// Grace period for a killed child to release its pipes.
const waitDelay = 5 * time.Second

// BuildSpecs derives the invocation table from the guardrail registry: the
// harness re-execs itself with the hidden guard subcommand, forwarding any
// configured extra arguments (config path, log level overrides).
func BuildSpecs(cfg *config.Config) ([]Spec, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, errors.Wrap(err, "resolve harness executable")
	}

	timeout, err := config.DurationOrDefault(cfg.Harness.GuardTimeout, config.DefaultHarnessGuardTimeout)
	if err != nil {
		return nil, errors.Wrap(err, "guard timeout")
	}

	extra, err := shlex.Split(cfg.Harness.GuardArgs)
	if err != nil {
		return nil, errors.Wrap(err, "parse guard args")
	}

	var specs []Spec
	for _, g := range guardrail.Registry() {
		args := append([]string{"guard", g.Name()}, extra...)
		specs = append(specs, Spec{
			Name:    g.Name(),
			Command: exe,
			Args:    args,
			Timeout: timeout,
		})
	}
	return specs, nil
}

// Runner executes specs strictly sequentially. Output defaults to the
// runner's stdout; child output is streamed there live and captured for the
// result record at the same time.
type Runner struct {
	Specs    []Spec
	Output   io.Writer
	LockPath string
}

func New(specs []Spec, lockPath string) *Runner {
	return &Runner{
		Specs:    specs,
		Output:   os.Stdout,
		LockPath: lockPath,
	}
}

// Run executes every spec regardless of earlier failures and returns all
// results. The error return covers harness-level faults only (lock
// contention); per-guardrail failures live in the results.
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	if r.LockPath != "" {
		unlock, err := r.acquireLock()
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	results := make([]Result, 0, len(r.Specs))
	for _, spec := range r.Specs {
		slog.Info("Guardrail starting", "name", spec.Name, "timeout", spec.Timeout)
		res := r.runOne(ctx, spec)
		results = append(results, res)

		switch res.Outcome {
		case OutcomePassed:
			slog.Info("Guardrail passed", "name", res.Name, "duration", res.Duration)
		default:
			slog.Error("Guardrail did not pass", "name", res.Name, "outcome", res.Outcome, "duration", res.Duration)
		}
	}

	return results, nil
}

func (r *Runner) runOne(ctx context.Context, spec Spec) Result {
	cctx, cancel := context.WithTimeout(ctx, spec.Timeout)
	defer cancel()

	var captured bytes.Buffer
	sink := io.MultiWriter(r.Output, &captured)

	cmd := exec.CommandContext(cctx, spec.Command, spec.Args...)
	cmd.Stdout = sink
	cmd.Stderr = sink
	cmd.WaitDelay = waitDelay

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	return Result{
		Name:     spec.Name,
		Outcome:  classify(cctx, err),
		Duration: duration,
		Output:   captured.String(),
	}
}

// classify maps a finished child invocation to an outcome. Timeout is
// checked first because the deadline kill also looks like a
// signal-terminated child.
func classify(cctx context.Context, err error) Outcome {
	if cctx.Err() == context.DeadlineExceeded {
		return OutcomeTimedOut
	}
	if err == nil {
		return OutcomePassed
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		if exitErr.ExitCode() == -1 {
			// Terminated by signal: native fault territory.
			return OutcomeCrashed
		}
		return OutcomeFailed
	}

	// Failed to launch at all.
	return OutcomeFailed
}

func (r *Runner) acquireLock() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(r.LockPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "create lock directory")
	}

	fl := flock.New(r.LockPath)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, errors.Wrap(err, "acquire harness lock")
	}
	if !locked {
		return nil, errors.Internal(fmt.Sprintf("another harness run holds the lock at %s", r.LockPath))
	}

	slog.Debug("Harness lock acquired", "path", r.LockPath)
	return func() {
		if err := fl.Unlock(); err != nil {
			slog.Warn("Failed to release harness lock", "path", r.LockPath, "error", err)
		}
	}, nil
}

// Summarize counts outcomes for the aggregate verdict.
func Summarize(results []Result) (passed, failed int) {
	for _, res := range results {
		if res.Outcome == OutcomePassed {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}
