package pcm

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// ErrInvalidScale indicates a full-scale level that is not a positive finite number.
var ErrInvalidScale = errors.New("invalid full-scale level")

// DefaultFullScale maps encoder levels to 16-bit samples: a tone encoded at
// RMS level 500 peaks at 707, about -33 dBFS.
const DefaultFullScale = 32768.0

func checkScale(fullScale float64) error {
	if !(fullScale > 0) || math.IsInf(fullScale, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidScale, fullScale)
	}
	return nil
}

// Quantize converts samples to 16-bit PCM, mapping ±fullScale to the int16
// range. Samples beyond the range are clipped; the number clipped is returned.
func Quantize(samples []float64, fullScale float64) ([]int16, int, error) {
	if err := checkScale(fullScale); err != nil {
		return nil, 0, err
	}
	gain := 32768.0 / fullScale
	out := make([]int16, len(samples))
	clipped := 0
	for i, s := range samples {
		v := math.Round(s * gain)
		if v > 32767.0 {
			out[i] = 32767
			clipped++
		} else if v < -32768.0 {
			out[i] = -32768
			clipped++
		} else {
			out[i] = int16(v)
		}
	}

	if clipped > 0 {
		logrus.WithFields(logrus.Fields{
			"function":      "Quantize",
			"clipped_count": clipped,
			"total_samples": len(samples),
			"full_scale":    fullScale,
		}).Warn("Clipping detected during quantization")
	}
	return out, clipped, nil
}

// Dequantize converts 16-bit PCM to samples, mapping the int16 range to ±fullScale.
func Dequantize(samples []int16, fullScale float64) ([]float64, error) {
	if err := checkScale(fullScale); err != nil {
		return nil, err
	}
	gain := fullScale / 32768.0
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s) * gain
	}
	return out, nil
}
