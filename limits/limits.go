// Package limits provides centralized size limits for the tonelink codec.
// This ensures consistent validation across configuration, encoding and decoding.
package limits

import (
	"errors"
	"fmt"
)

const (
	// MaxPayloadLength is the largest payload, in bytes, a single message may carry.
	// At roughly one byte per word an acoustic message this long already lasts minutes.
	MaxPayloadLength = 1024

	// MaxPitchCount is the largest frequency alphabet accepted by the configuration.
	MaxPitchCount = 256

	// MaxChordSize is the largest number of data pitches active in one word.
	MaxChordSize = 16

	// MaxBitsPerWord bounds the value carried by one data word so it fits in uint32.
	MaxBitsPerWord = 32

	// MaxWordSamples is the longest word, in samples, the analyzer will process.
	// This prevents memory exhaustion from absurd durations or sample rates.
	MaxWordSamples = 1 << 20

	// DefaultScanBudget is the number of samples a synchronizer scans before giving up
	// when the caller does not provide a budget (10 minutes at 48 kHz).
	DefaultScanBudget = 48000 * 600
)

var (
	// ErrEmptyBuffer indicates an empty sample buffer or payload was provided
	ErrEmptyBuffer = errors.New("empty buffer")

	// ErrPayloadLength indicates a payload does not match the configured length
	ErrPayloadLength = errors.New("payload length mismatch")

	// ErrTooLarge indicates a value exceeds its maximum size
	ErrTooLarge = errors.New("size exceeds limit")
)

// ValidatePayloadLength validates a configured payload length against MaxPayloadLength.
// A zero length is allowed: such a message consists of calibration words only.
func ValidatePayloadLength(length int) error {
	if length < 0 {
		return fmt.Errorf("%w: negative payload length %d", ErrPayloadLength, length)
	}
	if length > MaxPayloadLength {
		return fmt.Errorf("%w: payload length %d exceeds limit %d", ErrTooLarge, length, MaxPayloadLength)
	}
	return nil
}

// ValidatePayload checks that payload has exactly the expected length.
// Returns an error with context including the actual and expected sizes.
func ValidatePayload(payload []byte, expected int) error {
	if err := ValidatePayloadLength(expected); err != nil {
		return err
	}
	if len(payload) != expected {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrPayloadLength, len(payload), expected)
	}
	return nil
}

// ValidateSampleBuffer validates a sample buffer against MaxWordSamples.
// Returns ErrEmptyBuffer for nil or empty input.
func ValidateSampleBuffer(samples []float64) error {
	if len(samples) == 0 {
		return ErrEmptyBuffer
	}
	if len(samples) > MaxWordSamples {
		return fmt.Errorf("%w: buffer of %d samples exceeds limit %d", ErrTooLarge, len(samples), MaxWordSamples)
	}
	return nil
}

// ValidateWordSamples validates a word length in samples.
func ValidateWordSamples(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: word length %d samples", ErrEmptyBuffer, n)
	}
	if n > MaxWordSamples {
		return fmt.Errorf("%w: word length %d exceeds limit %d", ErrTooLarge, n, MaxWordSamples)
	}
	return nil
}
