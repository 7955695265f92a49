package errors

import (
	"fmt"
	"testing"
)

func TestCategoryRoundTrip(t *testing.T) {
	tests := []struct {
		err      error
		category error
		name     string
	}{
		{ThresholdBreach("rss grew 80 MiB"), ErrThresholdBreach, "ErrThresholdBreach"},
		{AdvisoryBreach("lag 25ms"), ErrAdvisoryBreach, "ErrAdvisoryBreach"},
		{MalformedInputAccepted("zero width"), ErrMalformedInputAccepted, "ErrMalformedInputAccepted"},
		{InvalidInput("empty buffer"), ErrInvalidInput, "ErrInvalidInput"},
		{EncoderClosed("flush on closed encoder"), ErrEncoderClosed, "ErrEncoderClosed"},
		{Internal("backend fault"), ErrInternal, "ErrInternal"},
	}

	for _, tt := range tests {
		if !IsCategory(tt.err, tt.category) {
			t.Errorf("%v should belong to %v", tt.err, tt.category)
		}
		if got := Category(tt.err); got != tt.name {
			t.Errorf("Category(%v) = %s, want %s", tt.err, got, tt.name)
		}
	}
}

func TestWrapPreservesCategory(t *testing.T) {
	err := Wrap(ThresholdBreach("measured 12.1 fps"), "throughput benchmark")
	if !IsCategory(err, ErrThresholdBreach) {
		t.Errorf("wrapping should preserve the category, got %v", err)
	}

	if Wrap(nil, "anything") != nil {
		t.Error("wrapping nil should stay nil")
	}
}

func TestCategoryUnknown(t *testing.T) {
	if got := Category(fmt.Errorf("plain")); got != "Unknown" {
		t.Errorf("expected Unknown, got %s", got)
	}
	if got := Category(nil); got != "" {
		t.Errorf("expected empty category for nil, got %s", got)
	}
	if IsCategory(nil, ErrInternal) {
		t.Error("nil error has no category")
	}
}
