package config

import (
	"fmt"
	"math"
)

// BuildFrequencyTable returns the geometric pitch alphabet
// first, first·multiplier, first·multiplier², ... of count entries.
//
// Fails with ErrConfiguration when multiplier ≤ 1, count ≤ 0, a parameter is not
// finite, or the highest frequency is not strictly below sampleRate/2.
func BuildFrequencyTable(first, multiplier float64, count int, sampleRate float64) ([]float64, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: pitch count %d must be positive", ErrConfiguration, count)
	}
	if !(multiplier > 1) || math.IsInf(multiplier, 0) {
		return nil, fmt.Errorf("%w: frequency multiplier %v must be greater than 1", ErrConfiguration, multiplier)
	}
	if !(first > 0) || math.IsInf(first, 0) {
		return nil, fmt.Errorf("%w: first frequency %v Hz must be positive", ErrConfiguration, first)
	}
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: sample rate %v Hz must be positive", ErrConfiguration, sampleRate)
	}

	table := make([]float64, count)
	table[0] = first
	for i := 1; i < count; i++ {
		table[i] = table[i-1] * multiplier
	}

	nyquist := sampleRate / 2
	if top := table[count-1]; !(top < nyquist) {
		return nil, fmt.Errorf("%w: highest pitch %.2f Hz is not below the Nyquist limit %.2f Hz", ErrConfiguration, top, nyquist)
	}
	return table, nil
}
