package guardrail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vcodec/guardrail/internal/config"
	"github.com/vcodec/guardrail/internal/encoder"
	"github.com/vcodec/guardrail/internal/errors"
	"github.com/vcodec/guardrail/internal/metrics"
)

// Watchdog measures whether sustained encode work starves scheduled timers.
// A heartbeat records the excess over its expected interval at every firing
// while frames are submitted back-to-back on another goroutine; the maximum
// observed lag is the metric. The threshold is advisory at the current
// maturity level unless the severity is configured to "fail".
type Watchdog struct{}

func (w *Watchdog) Name() string {
	return "watchdog"
}

func (w *Watchdog) Describe() string {
	return "sustained encoding must not starve a concurrent heartbeat timer past the lag threshold"
}

func (w *Watchdog) Run(ctx context.Context, cfg *config.Config) error {
	wcfg := cfg.Watchdog

	interval, err := config.DurationOrDefault(wcfg.Interval, config.DefaultWatchdogInterval)
	if err != nil {
		return errors.Wrap(err, "watchdog interval")
	}
	maxLag, err := config.DurationOrDefault(wcfg.MaxLag, config.DefaultWatchdogMaxLag)
	if err != nil {
		return errors.Wrap(err, "watchdog max lag")
	}

	slog.Info("Responsiveness watchdog started",
		"frames", wcfg.Frames,
		"resolution", fmt.Sprintf("%dx%d", wcfg.Width, wcfg.Height),
		"interval", interval,
		"max_lag", maxLag,
		"severity", wcfg.Severity)

	var lags metrics.Series
	stop := make(chan struct{})
	done := make(chan struct{})

	go heartbeat(interval, &lags, stop, done)

	encodeErr := w.encodeLoad(ctx, cfg)

	close(stop)
	<-done

	if encodeErr != nil {
		return encodeErr
	}

	observed := time.Duration(lags.Max())
	slog.Info("Heartbeat lag measured",
		"ticks", lags.Len(),
		"max_lag", observed)

	if observed > maxLag {
		message := fmt.Sprintf("max heartbeat lag %s exceeds %s, encoding is starving the scheduler", observed, maxLag)
		if wcfg.Severity == config.SeverityFail {
			return errors.ThresholdBreach(message)
		}
		return errors.AdvisoryBreach(message)
	}

	slog.Info("Responsiveness watchdog passed", "max_lag", observed)
	return nil
}

func (w *Watchdog) encodeLoad(ctx context.Context, cfg *config.Config) error {
	wcfg := cfg.Watchdog

	enc, err := encoder.New(encoder.Config{
		Codec:   cfg.Encoder.Codec,
		Width:   wcfg.Width,
		Height:  wcfg.Height,
		Bitrate: cfg.Encoder.Bitrate,
	}, encoder.Callbacks{
		OnChunk: func(encoder.Chunk) {},
		OnError: func(err error) { slog.Error("Encoder error", "error", err) },
	})
	if err != nil {
		return errors.Wrap(err, "configure encoder")
	}
	defer enc.Close()

	buf := make([]byte, encoder.BufferSize(wcfg.Width, wcfg.Height))

	for i := 0; i < wcfg.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := encoder.NewFrame(buf, encoder.FrameDescriptor{
			CodedWidth:  wcfg.Width,
			CodedHeight: wcfg.Height,
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

	return errors.Wrap(enc.Flush(ctx), "flush encoder")
}

// heartbeat records positive lag per tick until stop closes. Lag is the
// elapsed time since the previous firing minus the expected interval.
func heartbeat(interval time.Duration, lags *metrics.Series, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			if lag := now.Sub(last) - interval; lag > 0 {
				lags.Observe(float64(lag))
			}
			last = now
		}
	}
}
