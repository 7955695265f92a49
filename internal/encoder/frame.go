package encoder

import (
	"fmt"

	"github.com/vcodec/guardrail/internal/errors"
)

// FrameDescriptor declares the geometry and presentation timestamp of a raw
// frame. Timestamp is in microseconds.
type FrameDescriptor struct {
	CodedWidth  int
	CodedHeight int
	Timestamp   int64
}

// Frame wraps a raw I420 pixel buffer. The buffer is borrowed, not copied;
// Close releases the reference synchronously and the frame must not be
// submitted afterwards.
type Frame struct {
	desc   FrameDescriptor
	buf    []byte
	closed bool
}

// BufferSize returns the I420 (4:2:0) buffer requirement for the given
// coded dimensions.
func BufferSize(width, height int) int {
	return width * height * 3 / 2
}

// NewFrame validates the buffer against the descriptor and constructs a
// frame. Every rejection is a structured ErrInvalidInput so callers (and the
// input fuzzer) can distinguish validation from native failure.
func NewFrame(buf []byte, desc FrameDescriptor) (*Frame, error) {
	if desc.CodedWidth <= 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("coded width must be positive, got %d", desc.CodedWidth))
	}
	if desc.CodedHeight <= 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("coded height must be positive, got %d", desc.CodedHeight))
	}
	if desc.Timestamp < 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("timestamp must not be negative, got %d", desc.Timestamp))
	}
	if len(buf) == 0 {
		return nil, errors.InvalidInput("frame buffer is empty")
	}
	if need := BufferSize(desc.CodedWidth, desc.CodedHeight); len(buf) < need {
		return nil, errors.InvalidInput(fmt.Sprintf("frame buffer holds %d bytes, %dx%d requires %d", len(buf), desc.CodedWidth, desc.CodedHeight, need))
	}

	return &Frame{desc: desc, buf: buf}, nil
}

// Descriptor returns the frame geometry and timestamp.
func (f *Frame) Descriptor() FrameDescriptor {
	return f.desc
}

// Close releases the frame's buffer reference. Closing twice is a no-op.
func (f *Frame) Close() {
	f.buf = nil
	f.closed = true
}

// Closed reports whether the frame was released.
func (f *Frame) Closed() bool {
	return f.closed
}

func (f *Frame) payload() ([]byte, error) {
	if f.closed {
		return nil, errors.EncoderClosed("frame already closed")
	}
	return f.buf[:BufferSize(f.desc.CodedWidth, f.desc.CodedHeight)], nil
}
