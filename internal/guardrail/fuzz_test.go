package guardrail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcodec/guardrail/internal/encoder"
)

func TestFuzzerPassesAgainstValidatingEncoder(t *testing.T) {
	cfg := testConfig(t)

	f := &Fuzzer{}
	err := f.Run(context.Background(), cfg)
	require.NoError(t, err)
}

func TestFuzzVectorTable(t *testing.T) {
	cfg := testConfig(t)

	f := &Fuzzer{}
	vectors := f.vectors(cfg)
	require.Len(t, vectors, 7)

	// Each vector must vary exactly the dimension its name claims, and every
	// one must be rejected at frame construction by the current library.
	for _, v := range vectors {
		frame, err := encoder.NewFrame(v.buf, v.desc)
		assert.Error(t, err, "vector %q should be rejected", v.name)
		assert.Nil(t, frame)
	}
}

func TestFuzzerCancellation(t *testing.T) {
	cfg := testConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &Fuzzer{}
	err := f.Run(ctx, cfg)
	require.ErrorIs(t, err, context.Canceled)
}
