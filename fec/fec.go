package fec

import (
	"errors"
	"fmt"
)

// ErrUncorrectable indicates a received block could not be reconciled.
// Use errors.As with *UncorrectableError to access the partial payload.
var ErrUncorrectable = errors.New("uncorrectable errors")

// Codec is the forward-error-correction capability applied on top of the raw
// bit stream carried by data words.
//
// Encode expands a payload with redundancy; the modulator carries exactly
// EncodedLen(len(payload)) bytes. Decode reconciles a received block of that
// length and returns the corrected payload, or an *UncorrectableError.
//
// Implementations must be deterministic and safe for concurrent use.
type Codec interface {
	// Encode adds redundancy to payload
	Encode(payload []byte) ([]byte, error)
	// Decode corrects received and strips the redundancy
	Decode(received []byte) ([]byte, error)
	// EncodedLen returns the carried length for a payload of payloadLen bytes
	EncodedLen(payloadLen int) int
	// Name identifies the codec in logs
	Name() string
}

// UncorrectableError reports a block the codec could not reconcile.
type UncorrectableError struct {
	// Errors is the number of errors detected, at least 1.
	Errors int
	// Partial is the best-effort payload, possibly nil.
	Partial []byte
}

func (e *UncorrectableError) Error() string {
	return fmt.Sprintf("%v: %d detected", ErrUncorrectable, e.Errors)
}

// Unwrap makes errors.Is(err, ErrUncorrectable) hold.
func (e *UncorrectableError) Unwrap() error {
	return ErrUncorrectable
}

// Passthrough is the identity codec: the carried bits are the payload bits.
type Passthrough struct{}

// Encode returns a copy of payload.
func (Passthrough) Encode(payload []byte) ([]byte, error) {
	return append([]byte(nil), payload...), nil
}

// Decode returns a copy of received.
func (Passthrough) Decode(received []byte) ([]byte, error) {
	return append([]byte(nil), received...), nil
}

// EncodedLen returns payloadLen.
func (Passthrough) EncodedLen(payloadLen int) int {
	return payloadLen
}

// Name returns "passthrough".
func (Passthrough) Name() string {
	return "passthrough"
}
