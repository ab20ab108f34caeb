package modem

import (
	"errors"
	"fmt"
)

// Synchronization errors.
var (
	// ErrSynchronizationTimeout indicates the scan budget was exhausted, or the
	// stream ended, without a qualifying calibration pattern. It is recoverable:
	// the caller may supply more audio and scan again.
	ErrSynchronizationTimeout = errors.New("synchronization timeout")

	// ErrStreamDiscarded indicates a request for samples the stream already dropped.
	ErrStreamDiscarded = errors.New("samples already discarded")

	// ErrInvalidOptions indicates receiver tuning outside its valid range.
	ErrInvalidOptions = errors.New("invalid receiver options")
)

// Decoding errors.
var (
	// ErrSymbolConfidence classifies *SymbolConfidenceError values with errors.Is.
	ErrSymbolConfidence = errors.New("symbol confidence too low")

	// ErrDecodeFailure indicates a message could not be decoded, even after the
	// re-synchronization attempt.
	ErrDecodeFailure = errors.New("decode failure")
)

// SymbolConfidenceError reports a word whose chord could not be trusted:
// expected trigger tones were missing, or the data chord was incomplete or
// not a valid codeword.
type SymbolConfidenceError struct {
	// Word is the index of the data word within the message.
	Word int
	// Missing lists the trigger pitch indices below the detection threshold.
	Missing []int
	// Err is the underlying cause when the triggers were present.
	Err error
}

func (e *SymbolConfidenceError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%v: word %d: trigger pitches %v below threshold", ErrSymbolConfidence, e.Word, e.Missing)
	}
	return fmt.Sprintf("%v: word %d: %v", ErrSymbolConfidence, e.Word, e.Err)
}

// Is makes errors.Is(err, ErrSymbolConfidence) hold.
func (e *SymbolConfidenceError) Is(target error) bool {
	return target == ErrSymbolConfidence
}

// Unwrap returns the underlying cause, if any.
func (e *SymbolConfidenceError) Unwrap() error {
	return e.Err
}
