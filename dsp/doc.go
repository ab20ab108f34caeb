// Package dsp provides the numeric primitives of the tonelink codec: a
// generalized Goertzel estimator, an RMS estimator and the Hann window they
// share.
//
// # Generalized Goertzel
//
// The classic Goertzel filter evaluates one DFT bin. Analyzer evaluates the
// same second-order recurrence at an arbitrary angular frequency, so tones
// whose bin index N·f/sampleRate is fractional are measured without
// scalloping loss:
//
//	a, err := dsp.NewAnalyzer(44100, 3846, frequencies)
//	levels, err := a.Analyze(word)
//
// Buffers are Hann-windowed and the result is divided by the window gain and
// scaled by √2, so a pure sinusoid of RMS level P reads as P. Estimates are
// therefore directly comparable with RMS over the same buffer.
//
// # Concurrency
//
// All functions are pure. An Analyzer only holds precomputed coefficients and
// may be shared between goroutines; AnalyzeParallel spreads the frequencies of
// one buffer over several workers.
package dsp
