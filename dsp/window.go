package dsp

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// HannWindow returns a symmetric Hann window of length n.
// A window of length 1 is the single coefficient 1.
func HannWindow(n int) []float64 {
	if n <= 0 {
		return nil
	}
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	denom := float64(n - 1)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/denom)
	}
	return w
}

// windowGain returns the coherent gain of w, the sum of its coefficients.
func windowGain(w []float64) float64 {
	return floats.Sum(w)
}
