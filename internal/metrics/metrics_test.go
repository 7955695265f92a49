package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeries(t *testing.T) {
	var s Series

	_, ok := s.Last()
	assert.False(t, ok)
	assert.Equal(t, 0.0, s.Max())

	s.Observe(3)
	s.Observe(10)
	s.Observe(7)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 10.0, s.Max())

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 7.0, last.Value)
	assert.False(t, last.At.IsZero())
}

func TestRSSBytes(t *testing.T) {
	rss := RSSBytes()
	assert.Greater(t, rss, uint64(0), "a running process always has resident memory")
}

func TestForceGCStabilizesReading(t *testing.T) {
	// Not a leak assertion - just that forcing collection and sampling twice
	// in a row does not wildly diverge for an idle process.
	ForceGC()
	first := RSSBytes()
	ForceGC()
	second := RSSBytes()

	diff := int64(second) - int64(first)
	if diff < 0 {
		diff = -diff
	}
	assert.Less(t, diff, int64(64<<20))
}
