package modem

import (
	"math"
	"testing"

	"github.com/opd-ai/tonelink/config"
	"github.com/stretchr/testify/require"
)

const testPower = 500.0

// testConfig builds a configuration from the defaults with payloadLength bytes.
func testConfig(t testing.TB, payloadLength int, mutate func(*config.Params), opts ...config.Option) *config.Configuration {
	t.Helper()
	p := config.DefaultParams()
	p.PayloadLength = payloadLength
	if mutate != nil {
		mutate(&p)
	}
	cfg, err := config.New(p, opts...)
	require.NoError(t, err)
	return cfg
}

func encode(t testing.TB, cfg *config.Configuration, payload []byte) []float64 {
	t.Helper()
	samples, err := NewEncoder(cfg).Encode(testPower, payload)
	require.NoError(t, err)
	return samples
}

// chord synthesizes one word sounding pitches, each at RMS level.
func chord(cfg *config.Configuration, level float64, pitches ...int) []float64 {
	out := make([]float64, cfg.WordSamples())
	for _, p := range pitches {
		omega := 2 * math.Pi * cfg.Frequency(p) / cfg.SampleRate()
		for n := range out {
			out[n] += level * math.Sqrt2 * math.Sin(omega*float64(n))
		}
	}
	return out
}

// zeroSource yields silence forever.
type zeroSource struct{}

func (zeroSource) ReadSamples(p []float64) (int, error) {
	clear(p)
	return len(p), nil
}

// stalledSource never yields samples.
type stalledSource struct{}

func (stalledSource) ReadSamples([]float64) (int, error) {
	return 0, nil
}
