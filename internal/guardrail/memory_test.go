package guardrail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcodec/guardrail/internal/errors"
)

func TestMemorySentinelPasses(t *testing.T) {
	cfg := testConfig(t)

	s := &MemorySentinel{}
	err := s.Run(context.Background(), cfg)
	require.NoError(t, err)
}

func TestMemorySentinelThresholdBreach(t *testing.T) {
	cfg := testConfig(t)
	// A limit below any possible delta forces the breach path.
	cfg.Memory.LimitMB = -100_000

	s := &MemorySentinel{}
	err := s.Run(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.ErrThresholdBreach))
}

func TestMemorySentinelHonoursCancellation(t *testing.T) {
	cfg := testConfig(t)
	cfg.Memory.Iterations = 1_000_000

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &MemorySentinel{}
	err := s.Run(ctx, cfg)
	require.ErrorIs(t, err, context.Canceled)
}
