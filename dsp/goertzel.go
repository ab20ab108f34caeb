package dsp

import (
	"fmt"
	"math"
	"sync"

	"github.com/sirupsen/logrus"
)

// Analyzer estimates the level of a fixed set of frequencies over buffers of a
// fixed length using the generalized Goertzel recurrence.
//
// The target frequencies do not need to fall on an integer DFT bin: the
// recurrence is evaluated at the exact angular frequency 2π·f/sampleRate, so the
// bin index k = N·f/sampleRate may be fractional. Buffers are Hann-windowed
// before the recurrence and the result is normalized by the window gain, so a
// buffer holding one sinusoid of RMS level P yields an estimate of P.
//
// An Analyzer holds only read-only precomputed state and is safe for
// concurrent use.
type Analyzer struct {
	sampleRate  float64
	length      int
	frequencies []float64
	coeffs      []float64 // 2·cos(ω) per frequency
	window      []float64
	scale       float64 // √2 / window gain
}

// NewAnalyzer creates an analyzer for buffers of length samples.
//
// Returns ErrInvalidArgument when length is not positive, the sample rate is not
// positive, the frequency list is empty, or any frequency is outside the open
// interval (0, sampleRate/2).
func NewAnalyzer(sampleRate float64, length int, frequencies []float64) (*Analyzer, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: buffer length %d", ErrInvalidArgument, length)
	}
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: sample rate %v", ErrInvalidArgument, sampleRate)
	}
	if len(frequencies) == 0 {
		return nil, fmt.Errorf("%w: empty frequency list", ErrInvalidArgument)
	}

	nyquist := sampleRate / 2
	coeffs := make([]float64, len(frequencies))
	for i, f := range frequencies {
		if !(f > 0 && f < nyquist) {
			return nil, fmt.Errorf("%w: frequency %v Hz outside (0, %v) Hz", ErrInvalidArgument, f, nyquist)
		}
		coeffs[i] = 2 * math.Cos(2*math.Pi*f/sampleRate)
	}

	window := HannWindow(length)

	logrus.WithFields(logrus.Fields{
		"function":    "NewAnalyzer",
		"sample_rate": sampleRate,
		"length":      length,
		"frequencies": len(frequencies),
	}).Debug("Created generalized Goertzel analyzer")

	return &Analyzer{
		sampleRate:  sampleRate,
		length:      length,
		frequencies: append([]float64(nil), frequencies...),
		coeffs:      coeffs,
		window:      window,
		scale:       math.Sqrt2 / windowGain(window),
	}, nil
}

// Length returns the buffer length the analyzer expects.
func (a *Analyzer) Length() int {
	return a.length
}

// Frequencies returns a copy of the analyzed frequencies.
func (a *Analyzer) Frequencies() []float64 {
	return append([]float64(nil), a.frequencies...)
}

// Analyze returns one RMS-equivalent estimate per frequency, in the order the
// frequencies were given to NewAnalyzer.
func (a *Analyzer) Analyze(samples []float64) ([]float64, error) {
	windowed, err := a.prepare(samples)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(a.coeffs))
	a.evaluate(windowed, out, 0, len(a.coeffs))
	return out, nil
}

// AnalyzeParallel is Analyze with the frequencies split across up to workers
// goroutines. Results are identical to Analyze.
func (a *Analyzer) AnalyzeParallel(samples []float64, workers int) ([]float64, error) {
	windowed, err := a.prepare(samples)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(a.coeffs))
	if workers > len(a.coeffs) {
		workers = len(a.coeffs)
	}
	if workers <= 1 {
		a.evaluate(windowed, out, 0, len(a.coeffs))
		return out, nil
	}

	chunk := (len(a.coeffs) + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < len(a.coeffs); start += chunk {
		end := start + chunk
		if end > len(a.coeffs) {
			end = len(a.coeffs)
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			a.evaluate(windowed, out, start, end)
		}(start, end)
	}
	wg.Wait()
	return out, nil
}

// prepare validates the buffer and returns a windowed copy of it.
func (a *Analyzer) prepare(samples []float64) ([]float64, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: empty sample buffer", ErrInvalidArgument)
	}
	if len(samples) != a.length {
		return nil, fmt.Errorf("%w: buffer has %d samples, analyzer expects %d", ErrInvalidArgument, len(samples), a.length)
	}
	windowed := make([]float64, a.length)
	for i, s := range samples {
		windowed[i] = s * a.window[i]
	}
	return windowed, nil
}

// evaluate runs the Goertzel recurrence for frequencies [start, end).
func (a *Analyzer) evaluate(windowed, out []float64, start, end int) {
	for i := start; i < end; i++ {
		coeff := a.coeffs[i]
		var s1, s2 float64
		for _, x := range windowed {
			s0 := x + coeff*s1 - s2
			s2 = s1
			s1 = s0
		}
		// |X(ω)|² = s1² + s2² − 2cos(ω)·s1·s2 holds for any ω, integer bin or not.
		power := s1*s1 + s2*s2 - coeff*s1*s2
		if power < 0 {
			power = 0
		}
		out[i] = math.Sqrt(power) * a.scale
	}
}

// GeneralizedGoertzel estimates the RMS level of each frequency in samples.
// It is a convenience wrapper around NewAnalyzer and Analyze for one-off calls.
func GeneralizedGoertzel(samples []float64, sampleRate float64, frequencies []float64) ([]float64, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: empty sample buffer", ErrInvalidArgument)
	}
	a, err := NewAnalyzer(sampleRate, len(samples), frequencies)
	if err != nil {
		return nil, err
	}
	return a.Analyze(samples)
}
