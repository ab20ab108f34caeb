// Package limits provides centralized size constants and validation functions
// for the tonelink codec. Configuration, encoder and receiver all validate
// against the same bounds.
//
// # Limits
//
//   - MaxPayloadLength (1024 bytes): the largest payload one message carries.
//   - MaxPitchCount (256): the largest frequency alphabet.
//   - MaxChordSize (16): the largest number of data pitches sounding in one word.
//   - MaxBitsPerWord (32): the widest value one data word may encode.
//   - MaxWordSamples (1 Mi samples): the longest word the analyzer processes.
//   - DefaultScanBudget: samples a synchronizer scans when no budget is given.
//
// # Validation Functions
//
//	if err := limits.ValidatePayload(payload, cfg.PayloadLength()); err != nil {
//	    // ErrPayloadLength or ErrTooLarge
//	}
//
//	if err := limits.ValidateSampleBuffer(samples); err != nil {
//	    // ErrEmptyBuffer or ErrTooLarge
//	}
//
// All errors wrap one of ErrEmptyBuffer, ErrPayloadLength or ErrTooLarge and
// should be classified with errors.Is.
package limits
