// Package tonelink implements an acoustic data codec that carries short byte
// payloads over a speaker and microphone as chords of pure tones.
//
// Every word of a message sounds a fixed set of trigger pitches, used for
// synchronization and level calibration, plus a chord of data pitches that
// encodes the payload bits. The receiver locates the calibration words with a
// generalized Goertzel estimator and decodes each data word against a
// threshold derived from the same word's trigger levels.
//
// # Getting Started
//
// Create a codec with the default parameters and round-trip a payload:
//
//	options := tonelink.NewOptions()
//	options.Params.PayloadLength = 6
//
//	codec, err := tonelink.New(options)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	samples, err := codec.Encode([]byte("parrot"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	payload, err := codec.Decode(ctx, interfaces.NewSliceSource(samples))
//
// # Configuration
//
// Parameters come from config.DefaultParams, a YAML file (Options.ConfigFile)
// or TONELINK_* environment variables (Options.UseEnvironment). The validated
// config.Configuration is immutable and may be shared between goroutines.
//
// # Errors
//
// Configuration problems wrap config.ErrConfiguration. Receiving may fail
// with modem.ErrSynchronizationTimeout (no message found within the scan
// budget, recoverable), modem.ErrDecodeFailure, or fec.ErrUncorrectable.
// Use errors.Is and errors.As to classify them.
//
// # Packages
//
//   - config: parameters, frequency table and validation
//   - dsp: generalized Goertzel and RMS estimators
//   - symbol: the shared bit to chord mapping
//   - fec: forward-error-correction contract
//   - modem: encoder, synchronizer, decoder and receiver
//   - pcm: 16-bit PCM and FLAC adapters
//   - simulation: in-memory acoustic channel for tests
package tonelink
