package modem

import (
	"errors"
	"testing"

	"github.com/opd-ai/tonelink/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoder_DecodesEncodedWords(t *testing.T) {
	cfg := testConfig(t, 8, nil)
	payload := []byte{0x00, 0xff, 0x5a, 0xa5, 0x01, 0x80, 0x7f, 0x33}
	samples := encode(t, cfg, payload)

	dec, err := NewDecoder(cfg, NewReceiverOptions())
	require.NoError(t, err)

	w := cfg.WordSamples()
	for i, b := range payload {
		start := (2 + i) * w
		word, err := dec.DecodeWord(i, samples[start:start+w])
		require.NoError(t, err, "word %d", i)
		assert.Equal(t, uint32(b), word.Value, "word %d", i)
		assert.Len(t, word.Chord, 2)
		assert.Equal(t, word.Chord, word.Active)
		assert.Len(t, word.Levels, cfg.PitchCount())
		assert.Greater(t, word.Threshold, 0.0)
	}
}

func TestDecoder_MissingTriggers(t *testing.T) {
	cfg := testConfig(t, 1, nil)
	dec, err := NewDecoder(cfg, NewReceiverOptions())
	require.NoError(t, err)

	tests := []struct {
		name    string
		samples []float64
		missing []int
	}{
		{"silence", make([]float64, cfg.WordSamples()), []int{9, 25}},
		{"data only", chord(cfg, 250, 0, 1), []int{9, 25}},
		{"one trigger", chord(cfg, 250, 0, 1, 9), []int{25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dec.DecodeWord(3, tt.samples)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSymbolConfidence)

			var cerr *SymbolConfidenceError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, 3, cerr.Word)
			assert.Equal(t, tt.missing, cerr.Missing)
		})
	}
}

func TestDecoder_IncompleteChord(t *testing.T) {
	cfg := testConfig(t, 1, nil)
	dec, err := NewDecoder(cfg, NewReceiverOptions())
	require.NoError(t, err)

	_, err = dec.DecodeWord(0, chord(cfg, 250, 9, 25, 4))
	assert.ErrorIs(t, err, ErrSymbolConfidence)
	assert.ErrorIs(t, err, symbol.ErrInvalidChord)
}

func TestDecoder_UnusedChordRejected(t *testing.T) {
	cfg := testConfig(t, 1, nil)
	dec, err := NewDecoder(cfg, NewReceiverOptions())
	require.NoError(t, err)

	// The two highest data pitches rank beyond the 256 values of an 8-bit word.
	_, err = dec.DecodeWord(0, chord(cfg, 250, 9, 25, 30, 31))
	assert.ErrorIs(t, err, ErrSymbolConfidence)
	assert.ErrorIs(t, err, symbol.ErrInvalidChord)
}

func TestDecoder_ExtraPitchPicksStrongest(t *testing.T) {
	cfg := testConfig(t, 1, nil)
	dec, err := NewDecoder(cfg, NewReceiverOptions())
	require.NoError(t, err)

	want, err := cfg.Mapping().Chord(0x42)
	require.NoError(t, err)
	samples := chord(cfg, 250, append([]int{9, 25}, want...)...)
	extra := chord(cfg, 160, 20)
	for i := range samples {
		samples[i] += extra[i]
	}

	word, err := dec.DecodeWord(0, samples)
	require.NoError(t, err)
	assert.Len(t, word.Active, 3)
	assert.Equal(t, want, word.Chord)
	assert.Equal(t, uint32(0x42), word.Value)
}

func TestDecoder_ThresholdFollowsTriggers(t *testing.T) {
	cfg := testConfig(t, 1, nil)
	dec, err := NewDecoder(cfg, NewReceiverOptions())
	require.NoError(t, err)

	data, err := cfg.Mapping().Chord(7)
	require.NoError(t, err)
	for _, level := range []float64{1, 250, 10000} {
		word, err := dec.DecodeWord(0, chord(cfg, level, append([]int{9, 25}, data...)...))
		require.NoError(t, err, "level %v", level)
		assert.Equal(t, uint32(7), word.Value)
		assert.InEpsilon(t, 0.5*level, word.Threshold, 1e-3)
	}
}

func TestDecoder_CheckCalibration(t *testing.T) {
	cfg := testConfig(t, 1, nil)
	dec, err := NewDecoder(cfg, NewReceiverOptions())
	require.NoError(t, err)

	missing, err := dec.CheckCalibration(chord(cfg, 350, 9, 25))
	require.NoError(t, err)
	assert.Empty(t, missing)

	missing, err = dec.CheckCalibration(chord(cfg, 350, 9, 3))
	require.NoError(t, err)
	assert.Equal(t, []int{25}, missing)

	_, err = dec.CheckCalibration(nil)
	assert.Error(t, err)
}

func TestStrongest_TiesPreferLowerPitch(t *testing.T) {
	levels := []float64{5, 5, 5, 9}
	assert.Equal(t, []int{0, 3}, strongest([]int{0, 1, 2, 3}, levels, 2))
}
