package dsp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// RMS returns the root-mean-square level of samples.
// An empty buffer is rejected with ErrInvalidArgument.
func RMS(samples []float64) (float64, error) {
	if len(samples) == 0 {
		return 0, fmt.Errorf("%w: empty sample buffer", ErrInvalidArgument)
	}
	return math.Sqrt(floats.Dot(samples, samples) / float64(len(samples))), nil
}

// ToDecibels converts an RMS level to 20·log10(level).
// Silence maps to negative infinity.
func ToDecibels(level float64) float64 {
	if level <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(level)
}
