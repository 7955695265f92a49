package guardrail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vcodec/guardrail/internal/config"
	"github.com/vcodec/guardrail/internal/encoder"
	"github.com/vcodec/guardrail/internal/errors"
	"github.com/vcodec/guardrail/internal/metrics"
)

const bytesPerMiB = 1 << 20

// MemorySentinel detects encoder-internal allocations that survive frame
// release. It hammers one encoder with encode/release cycles over a reused
// buffer and compares resident memory against the baseline, forcing a full
// collection around every reading so ordinary heap churn does not pollute
// the measurement.
type MemorySentinel struct{}

func (s *MemorySentinel) Name() string {
	return "memory"
}

func (s *MemorySentinel) Describe() string {
	return "encode/release cycles must not grow resident memory past the configured limit"
}

func (s *MemorySentinel) Run(ctx context.Context, cfg *config.Config) error {
	mcfg := cfg.Memory

	metrics.ForceGC()
	baseline := metrics.RSSBytes()
	slog.Info("Memory sentinel started",
		"iterations", mcfg.Iterations,
		"resolution", fmt.Sprintf("%dx%d", mcfg.Width, mcfg.Height),
		"baseline_mib", baseline/bytesPerMiB,
		"limit_mib", mcfg.LimitMB)

	var chunks int
	enc, err := encoder.New(encoder.Config{
		Codec:   cfg.Encoder.Codec,
		Width:   mcfg.Width,
		Height:  mcfg.Height,
		Bitrate: cfg.Encoder.Bitrate,
	}, encoder.Callbacks{
		OnChunk: func(encoder.Chunk) { chunks++ },
		OnError: func(err error) { slog.Error("Encoder error", "error", err) },
	})
	if err != nil {
		return errors.Wrap(err, "configure encoder")
	}
	defer enc.Close()

	buf := make([]byte, encoder.BufferSize(mcfg.Width, mcfg.Height))
	var samples metrics.Series

	for i := 1; i <= mcfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := encoder.NewFrame(buf, encoder.FrameDescriptor{
			CodedWidth:  mcfg.Width,
			CodedHeight: mcfg.Height,
			Timestamp:   int64(i) * 33_333,
		})
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("construct frame %d", i))
		}

		err = enc.Encode(frame)
		frame.Close()
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("encode frame %d", i))
		}

		if mcfg.SampleEvery > 0 && i%mcfg.SampleEvery == 0 {
			metrics.ForceGC()
			delta := rssDelta(baseline)
			samples.Observe(float64(delta))
			slog.Info("RSS sample",
				"iteration", i,
				"delta_mib", fmt.Sprintf("%.1f", float64(delta)/bytesPerMiB))
		}
	}

	if err := enc.Flush(ctx); err != nil {
		return errors.Wrap(err, "flush encoder")
	}

	metrics.ForceGC()
	growth := rssDelta(baseline)
	limit := int64(mcfg.LimitMB) * bytesPerMiB

	if growth > limit {
		return errors.ThresholdBreach(fmt.Sprintf(
			"rss grew %.1f MiB over baseline after %d encode/release cycles, limit %d MiB",
			float64(growth)/bytesPerMiB, mcfg.Iterations, mcfg.LimitMB))
	}

	slog.Info("Memory sentinel passed",
		"growth_mib", fmt.Sprintf("%.1f", float64(growth)/bytesPerMiB),
		"chunks", chunks,
		"samples", samples.Len())
	return nil
}

func rssDelta(baseline uint64) int64 {
	return int64(metrics.RSSBytes()) - int64(baseline)
}
