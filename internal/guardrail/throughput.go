package guardrail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vcodec/guardrail/internal/config"
	"github.com/vcodec/guardrail/internal/encoder"
	"github.com/vcodec/guardrail/internal/errors"
)

// Throughput checks that sustained encode speed clears the real-time floor:
// a fixed number of frames submitted back-to-back must average at least the
// configured frames-per-second target.
type Throughput struct{}

func (t *Throughput) Name() string {
	return "throughput"
}

func (t *Throughput) Describe() string {
	return "sustained encode rate must meet the configured frames-per-second target"
}

func (t *Throughput) Run(ctx context.Context, cfg *config.Config) error {
	tcfg := cfg.Throughput

	slog.Info("Throughput benchmark started",
		"frames", tcfg.Frames,
		"resolution", fmt.Sprintf("%dx%d", tcfg.Width, tcfg.Height),
		"target_fps", tcfg.TargetFPS)

	enc, err := encoder.New(encoder.Config{
		Codec:   cfg.Encoder.Codec,
		Width:   tcfg.Width,
		Height:  tcfg.Height,
		Bitrate: cfg.Encoder.Bitrate,
	}, encoder.Callbacks{
		OnChunk: func(encoder.Chunk) {},
		OnError: func(err error) { slog.Error("Encoder error", "error", err) },
	})
	if err != nil {
		return errors.Wrap(err, "configure encoder")
	}
	defer enc.Close()

	buf := make([]byte, encoder.BufferSize(tcfg.Width, tcfg.Height))

	start := time.Now()
	for i := 0; i < tcfg.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := encoder.NewFrame(buf, encoder.FrameDescriptor{
			CodedWidth:  tcfg.Width,
			CodedHeight: tcfg.Height,
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
	}

	if err := enc.Flush(ctx); err != nil {
		return errors.Wrap(err, "flush encoder")
	}
	elapsed := time.Since(start)

	fps := float64(tcfg.Frames) / elapsed.Seconds()
	if fps < tcfg.TargetFPS {
		return errors.ThresholdBreach(fmt.Sprintf(
			"measured %.1f fps over %d frames, target %.1f fps", fps, tcfg.Frames, tcfg.TargetFPS))
	}

	slog.Info("Throughput benchmark passed",
		"fps", fmt.Sprintf("%.1f", fps),
		"elapsed", elapsed)
	return nil
}
