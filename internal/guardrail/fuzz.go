package guardrail

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vcodec/guardrail/internal/config"
	"github.com/vcodec/guardrail/internal/encoder"
	"github.com/vcodec/guardrail/internal/errors"
)

// Fuzzer asserts that malformed inputs surface through the library's
// structured error path rather than undefined native behavior. Each vector
// varies one dimension of validity so a fix in one dimension cannot mask a
// gap in another. A vector that is silently accepted fails the guardrail;
// the guardrail process finishing at all rules out the worst failure mode.
type Fuzzer struct{}

type fuzzVector struct {
	name string
	buf  []byte
	desc encoder.FrameDescriptor
}

func (f *Fuzzer) Name() string {
	return "fuzz"
}

func (f *Fuzzer) Describe() string {
	return "every malformed input vector must be rejected with a structured error"
}

func (f *Fuzzer) vectors(cfg *config.Config) []fuzzVector {
	w := cfg.Fuzz.Width
	h := cfg.Fuzz.Height

	return []fuzzVector{
		{name: "empty buffer", buf: nil, desc: encoder.FrameDescriptor{CodedWidth: w, CodedHeight: h}},
		{name: "undersized buffer", buf: make([]byte, 10), desc: encoder.FrameDescriptor{CodedWidth: w, CodedHeight: h}},
		{name: "huge dimensions for tiny buffer", buf: make([]byte, 100), desc: encoder.FrameDescriptor{CodedWidth: 10_000, CodedHeight: 10_000}},
		{name: "negative timestamp", buf: make([]byte, 40_000), desc: encoder.FrameDescriptor{CodedWidth: w, CodedHeight: h, Timestamp: -1}},
		{name: "zero width", buf: make([]byte, encoder.BufferSize(w, h)), desc: encoder.FrameDescriptor{CodedWidth: 0, CodedHeight: h}},
		{name: "zero height", buf: make([]byte, encoder.BufferSize(w, h)), desc: encoder.FrameDescriptor{CodedWidth: w, CodedHeight: 0}},
		{name: "negative width", buf: make([]byte, encoder.BufferSize(w, h)), desc: encoder.FrameDescriptor{CodedWidth: -10, CodedHeight: h}},
	}
}

func (f *Fuzzer) Run(ctx context.Context, cfg *config.Config) error {
	enc, err := encoder.New(encoder.Config{
		Codec:   cfg.Encoder.Codec,
		Width:   cfg.Fuzz.Width,
		Height:  cfg.Fuzz.Height,
		Bitrate: cfg.Encoder.Bitrate,
	}, encoder.Callbacks{
		OnChunk: func(encoder.Chunk) {},
		OnError: func(err error) { slog.Error("Encoder error", "error", err) },
	})
	if err != nil {
		return errors.Wrap(err, "configure baseline encoder")
	}
	defer enc.Close()

	vectors := f.vectors(cfg)
	slog.Info("Input fuzzer started", "vectors", len(vectors))

	var accepted []string
	for _, v := range vectors {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := f.submit(enc, v); err != nil {
			slog.Info("Vector rejected", "vector", v.name, "error", err)
			continue
		}

		slog.Error("Vector silently accepted", "vector", v.name)
		accepted = append(accepted, v.name)
	}

	if len(accepted) > 0 {
		return errors.MalformedInputAccepted(fmt.Sprintf(
			"%d of %d vectors accepted without error: %s",
			len(accepted), len(vectors), strings.Join(accepted, ", ")))
	}

	slog.Info("Input fuzzer passed", "vectors", len(vectors))
	return nil
}

func (f *Fuzzer) submit(enc encoder.Encoder, v fuzzVector) error {
	frame, err := encoder.NewFrame(v.buf, v.desc)
	if err != nil {
		return err
	}
	defer frame.Close()

	return enc.Encode(frame)
}
