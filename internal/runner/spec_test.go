package runner

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcodec/guardrail/internal/config"
)

func TestBuildSpecs(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := config.Load(nil)
	require.NoError(t, err)

	specs, err := BuildSpecs(cfg)
	require.NoError(t, err)
	require.Len(t, specs, 4)

	exe, err := os.Executable()
	require.NoError(t, err)

	names := make([]string, len(specs))
	for i, spec := range specs {
		names[i] = spec.Name
		assert.Equal(t, exe, spec.Command)
		require.GreaterOrEqual(t, len(spec.Args), 2)
		assert.Equal(t, "guard", spec.Args[0])
		assert.Equal(t, spec.Name, spec.Args[1])
		assert.Equal(t, 5*time.Minute, spec.Timeout)
	}
	assert.Equal(t, []string{"memory", "watchdog", "fuzz", "throughput"}, names)
}

func TestBuildSpecsForwardsGuardArgs(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := config.Load(nil)
	require.NoError(t, err)
	cfg.Harness.GuardArgs = `--config "/etc/guardrail/ci.yaml" --harness.log_level debug`

	specs, err := BuildSpecs(cfg)
	require.NoError(t, err)

	for _, spec := range specs {
		assert.Equal(t, []string{"guard", spec.Name, "--config", "/etc/guardrail/ci.yaml", "--harness.log_level", "debug"}, spec.Args)
	}
}

func TestBuildSpecsRejectsBadTimeout(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := config.Load(nil)
	require.NoError(t, err)
	cfg.Harness.GuardTimeout = "soonish"

	_, err = BuildSpecs(cfg)
	require.Error(t, err)
}
