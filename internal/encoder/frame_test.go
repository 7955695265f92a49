package encoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcodec/guardrail/internal/errors"
)

func TestNewFrameValid(t *testing.T) {
	buf := make([]byte, BufferSize(100, 100))
	frame, err := NewFrame(buf, FrameDescriptor{CodedWidth: 100, CodedHeight: 100, Timestamp: 0})
	require.NoError(t, err)
	require.NotNil(t, frame)

	desc := frame.Descriptor()
	assert.Equal(t, 100, desc.CodedWidth)
	assert.Equal(t, 100, desc.CodedHeight)
	assert.False(t, frame.Closed())
}

func TestNewFrameRejections(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		desc FrameDescriptor
	}{
		{"empty buffer", nil, FrameDescriptor{CodedWidth: 100, CodedHeight: 100}},
		{"undersized buffer", make([]byte, 10), FrameDescriptor{CodedWidth: 100, CodedHeight: 100}},
		{"huge dimensions", make([]byte, 100), FrameDescriptor{CodedWidth: 10_000, CodedHeight: 10_000}},
		{"negative timestamp", make([]byte, 40_000), FrameDescriptor{CodedWidth: 100, CodedHeight: 100, Timestamp: -1}},
		{"zero width", make([]byte, 15_000), FrameDescriptor{CodedWidth: 0, CodedHeight: 100}},
		{"zero height", make([]byte, 15_000), FrameDescriptor{CodedWidth: 100, CodedHeight: 0}},
		{"negative width", make([]byte, 15_000), FrameDescriptor{CodedWidth: -10, CodedHeight: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := NewFrame(tt.buf, tt.desc)
			require.Error(t, err)
			assert.Nil(t, frame)
			assert.True(t, errors.IsCategory(err, errors.ErrInvalidInput),
				"rejection must be a structured invalid-input error, got %v", err)
		})
	}
}

func TestFrameClose(t *testing.T) {
	buf := make([]byte, BufferSize(64, 64))
	frame, err := NewFrame(buf, FrameDescriptor{CodedWidth: 64, CodedHeight: 64})
	require.NoError(t, err)

	frame.Close()
	assert.True(t, frame.Closed())

	// Double close is a no-op.
	frame.Close()
	assert.True(t, frame.Closed())

	_, err = frame.payload()
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.ErrEncoderClosed))
}

func TestBufferSize(t *testing.T) {
	// I420: one full luma plane plus two quarter chroma planes.
	assert.Equal(t, 15_000, BufferSize(100, 100))
	assert.Equal(t, 460_800, BufferSize(640, 480))
	assert.Equal(t, 3_110_400, BufferSize(1920, 1080))
}
