package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the guardrail taxonomy
var (
	// ErrThresholdBreach - a guardrail completed its measurement but the metric
	// violated its configured hard limit (fails the guardrail)
	ErrThresholdBreach = errors.New("threshold breach")

	// ErrAdvisoryBreach - a soft limit was exceeded; logged as a warning and the
	// guardrail still passes (currently only the responsiveness watchdog)
	ErrAdvisoryBreach = errors.New("advisory breach")

	// ErrMalformedInputAccepted - a fuzz vector that should have been rejected
	// made it through frame construction and submission without an error
	ErrMalformedInputAccepted = errors.New("malformed input accepted")

	// ErrInvalidInput - structured rejection of bad caller input (the error path
	// the fuzzer asserts on)
	ErrInvalidInput = errors.New("invalid input")

	// ErrEncoderClosed - operation on an encoder or frame whose resources were
	// already released
	ErrEncoderClosed = errors.New("encoder closed")

	// ErrInternal - unexpected internal failure
	ErrInternal = errors.New("internal error")
)

// ThresholdBreach wraps a message as a hard threshold violation
func ThresholdBreach(message string) error {
	return fmt.Errorf("%s: %w", message, ErrThresholdBreach)
}

// AdvisoryBreach wraps a message as a soft, non-failing violation
func AdvisoryBreach(message string) error {
	return fmt.Errorf("%s: %w", message, ErrAdvisoryBreach)
}

// MalformedInputAccepted wraps a message naming the accepted vector(s)
func MalformedInputAccepted(message string) error {
	return fmt.Errorf("%s: %w", message, ErrMalformedInputAccepted)
}

// InvalidInput wraps a message as an input validation failure
func InvalidInput(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInvalidInput)
}

// EncoderClosed wraps a message as a use-after-close failure
func EncoderClosed(message string) error {
	return fmt.Errorf("%s: %w", message, ErrEncoderClosed)
}

// Internal wraps a message as an internal error
func Internal(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInternal)
}

// Wrap adds context to an error without changing its category
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, category)
}

// Category returns the taxonomy name for an error
func Category(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrThresholdBreach):
		return "ErrThresholdBreach"
	case errors.Is(err, ErrAdvisoryBreach):
		return "ErrAdvisoryBreach"
	case errors.Is(err, ErrMalformedInputAccepted):
		return "ErrMalformedInputAccepted"
	case errors.Is(err, ErrInvalidInput):
		return "ErrInvalidInput"
	case errors.Is(err, ErrEncoderClosed):
		return "ErrEncoderClosed"
	case errors.Is(err, ErrInternal):
		return "ErrInternal"
	default:
		return "Unknown"
	}
}
