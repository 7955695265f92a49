// Package guardrail holds the independently executable checks that gate a
// release of the encoding library: memory retention, scheduling
// responsiveness, malformed-input handling, and encode throughput.
//
// Each guardrail owns one measurement technique and one verdict policy. A
// nil return from Run is a pass; ErrAdvisoryBreach is a logged warning that
// still passes; any other error fails the guardrail. Guardrails never share
// state - the runner executes each one in its own child process.
package guardrail

import (
	"context"
	"fmt"

	"github.com/vcodec/guardrail/internal/config"
	"github.com/vcodec/guardrail/internal/errors"
)

type Guardrail interface {
	Name() string
	Describe() string
	Run(ctx context.Context, cfg *config.Config) error
}

// Registry returns the guardrails in execution order. Declaration order is
// significant: the runner executes them strictly sequentially.
func Registry() []Guardrail {
	return []Guardrail{
		&MemorySentinel{},
		&Watchdog{},
		&Fuzzer{},
		&Throughput{},
	}
}

// Lookup resolves a guardrail by name for the guard child-process entry.
func Lookup(name string) (Guardrail, error) {
	for _, g := range Registry() {
		if g.Name() == name {
			return g, nil
		}
	}
	return nil, errors.InvalidInput(fmt.Sprintf("unknown guardrail %q", name))
}
