// Package encoder models the capability surface of the video-encoding
// library under test: encoder construction with output/error callbacks,
// frame construction with validation, synchronous submission, and flush.
//
// The backend compresses each frame through zstd. That is deliberately not a
// real codec; it produces genuine CPU load, allocations, and output chunks
// while keeping the surface a black box to the guardrails exercising it.
package encoder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/vcodec/guardrail/internal/errors"
)

// Config mirrors the encoder configuration object of the target library.
type Config struct {
	Codec   string
	Width   int
	Height  int
	Bitrate int
}

// Chunk is one produced unit of encoded output.
type Chunk struct {
	Data      []byte
	Timestamp int64
	Key       bool
}

// Callbacks is the capability interface the caller supplies: one callback
// per produced chunk, one for internal encoder errors. All callbacks for
// frames submitted before Flush are delivered before Flush returns.
type Callbacks struct {
	OnChunk func(Chunk)
	OnError func(error)
}

// Encoder is the submission surface. Encode runs synchronously on the
// calling goroutine, which is the cooperative-scheduling property the
// responsiveness watchdog measures.
type Encoder interface {
	Encode(frame *Frame) error
	Flush(ctx context.Context) error
	Close() error
}

// Key frame cadence for the software backend.
const keyFrameInterval = 30

var supportedCodecPrefixes = []string{"avc1.", "vp8", "vp09.", "av01."}

type softwareEncoder struct {
	mu      sync.Mutex
	cfg     Config
	cb      Callbacks
	backend *zstd.Encoder
	frames  int64
	closed  bool
}

// New validates the configuration and constructs an encoder.
func New(cfg Config, cb Callbacks) (Encoder, error) {
	if !codecSupported(cfg.Codec) {
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported codec %q", cfg.Codec))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("invalid encoder dimensions %dx%d", cfg.Width, cfg.Height))
	}
	if cb.OnChunk == nil {
		return nil, errors.InvalidInput("chunk callback is required")
	}

	backend, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, errors.Wrap(err, "initialize backend")
	}

	slog.Debug("Encoder configured",
		"codec", cfg.Codec,
		"width", cfg.Width,
		"height", cfg.Height,
		"bitrate", cfg.Bitrate)

	return &softwareEncoder{cfg: cfg, cb: cb, backend: backend}, nil
}

func codecSupported(codec string) bool {
	for _, prefix := range supportedCodecPrefixes {
		if strings.HasPrefix(codec, prefix) {
			return true
		}
	}
	return false
}

func (e *softwareEncoder) Encode(frame *Frame) error {
	if frame == nil {
		return errors.InvalidInput("frame is nil")
	}

	payload, err := frame.payload()
	if err != nil {
		return err
	}

	desc := frame.Descriptor()
	if desc.CodedWidth != e.cfg.Width || desc.CodedHeight != e.cfg.Height {
		return errors.InvalidInput(fmt.Sprintf("frame is %dx%d, encoder is configured for %dx%d",
			desc.CodedWidth, desc.CodedHeight, e.cfg.Width, e.cfg.Height))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return errors.EncoderClosed("encode on closed encoder")
	}

	data := e.backend.EncodeAll(payload, nil)
	if len(data) == 0 {
		err := errors.Internal("backend produced no output")
		e.reportError(err)
		return err
	}

	chunk := Chunk{
		Data:      data,
		Timestamp: desc.Timestamp,
		Key:       e.frames%keyFrameInterval == 0,
	}
	e.frames++
	e.cb.OnChunk(chunk)
	return nil
}

// Flush returns once every previously submitted frame has been processed
// and its chunk delivered. Submission is synchronous, so there is no
// buffered output left to drain; Flush only honours cancellation and the
// closed state.
func (e *softwareEncoder) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return errors.EncoderClosed("flush on closed encoder")
	}
	return nil
}

func (e *softwareEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	slog.Debug("Encoder closed", "frames", e.frames)
	return e.backend.Close()
}

func (e *softwareEncoder) reportError(err error) {
	if e.cb.OnError != nil {
		e.cb.OnError(err)
	}
}
