package guardrail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcodec/guardrail/internal/errors"
)

func TestThroughputPasses(t *testing.T) {
	cfg := testConfig(t)

	b := &Throughput{}
	err := b.Run(context.Background(), cfg)
	require.NoError(t, err)
}

func TestThroughputThresholdBreach(t *testing.T) {
	cfg := testConfig(t)
	// No software path reaches a billion frames per second.
	cfg.Throughput.TargetFPS = 1e9

	b := &Throughput{}
	err := b.Run(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.ErrThresholdBreach))
}

func TestThroughputUnsupportedCodec(t *testing.T) {
	cfg := testConfig(t)
	cfg.Encoder.Codec = "mpeg1"

	b := &Throughput{}
	err := b.Run(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.ErrInvalidInput))
}
