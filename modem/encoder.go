package modem

import (
	"fmt"
	"math"
	"sort"

	"github.com/opd-ai/tonelink/config"
	"github.com/opd-ai/tonelink/dsp"
	"github.com/opd-ai/tonelink/interfaces"
	"github.com/opd-ai/tonelink/limits"
	"github.com/opd-ai/tonelink/symbol"
	"github.com/sirupsen/logrus"
)

// Encoder turns payloads into waveforms.
//
// Every tone of a word has the same power: a word sounding m pitches gives each
// one an RMS level of P/√m, and chords are rescaled so the word's total RMS
// level is exactly P. The decoder's thresholds assume this policy.
//
// An Encoder is stateless beyond its configuration and safe for concurrent use.
type Encoder struct {
	cfg    *config.Configuration
	omegas []float64 // angular frequency per pitch, radians per sample
}

// NewEncoder creates an encoder for cfg.
func NewEncoder(cfg *config.Configuration) *Encoder {
	omegas := make([]float64, cfg.PitchCount())
	for i := range omegas {
		omegas[i] = 2 * math.Pi * cfg.Frequency(i) / cfg.SampleRate()
	}
	return &Encoder{cfg: cfg, omegas: omegas}
}

// Chords returns the active pitch set of every word of the message carrying
// payload, in transmission order. Each set is ascending.
func (e *Encoder) Chords(payload []byte) ([][]int, error) {
	if err := limits.ValidatePayload(payload, e.cfg.PayloadLength()); err != nil {
		return nil, fmt.Errorf("%w: %w", dsp.ErrInvalidArgument, err)
	}

	carried, err := e.cfg.FEC().Encode(payload)
	if err != nil {
		return nil, fmt.Errorf("applying %s: %w", e.cfg.FEC().Name(), err)
	}
	mapping := e.cfg.Mapping()
	values, err := symbol.Pack(carried, mapping.Bits())
	if err != nil {
		return nil, err
	}

	triggers := e.cfg.Triggers()
	layout := NewLayout(e.cfg, len(payload))
	if len(values) != layout.DataWords {
		return nil, fmt.Errorf("%s produced %d bytes, layout expects %d data words", e.cfg.FEC().Name(), len(carried), layout.DataWords)
	}

	chords := make([][]int, 0, layout.Words())
	for _, t := range triggers {
		chords = append(chords, []int{t})
	}
	for _, v := range values {
		data, err := mapping.Chord(v)
		if err != nil {
			return nil, err
		}
		chord := append(append(make([]int, 0, len(triggers)+len(data)), triggers...), data...)
		sort.Ints(chord)
		chords = append(chords, chord)
	}
	closing := append([]int(nil), triggers...)
	sort.Ints(closing)
	for i := 0; i < layout.TrailerWords; i++ {
		chords = append(chords, closing)
	}
	return chords, nil
}

// Encode synthesizes the waveform carrying payload at total RMS level rmsPower.
// The result has exactly WindowSize(cfg, len(payload)) samples.
//
// Returns an error wrapping dsp.ErrInvalidArgument when rmsPower is not a
// positive finite number or payload does not have the configured length.
func (e *Encoder) Encode(rmsPower float64, payload []byte) ([]float64, error) {
	if !(rmsPower > 0) || math.IsInf(rmsPower, 0) {
		return nil, fmt.Errorf("%w: RMS power %v", dsp.ErrInvalidArgument, rmsPower)
	}
	chords, err := e.Chords(payload)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":     "Encoder.Encode",
			"payload_size": len(payload),
			"error":        err.Error(),
		}).Warn("Rejected payload")
		return nil, err
	}

	w := e.cfg.WordSamples()
	out := make([]float64, len(chords)*w)
	for i, chord := range chords {
		if err := e.synthesize(out[i*w:(i+1)*w], chord, rmsPower); err != nil {
			return nil, err
		}
	}

	logrus.WithFields(logrus.Fields{
		"function":     "Encoder.Encode",
		"payload_size": len(payload),
		"words":        len(chords),
		"samples":      len(out),
		"rms_power":    rmsPower,
		"fec":          e.cfg.FEC().Name(),
	}).Debug("Encoded message")

	return out, nil
}

// EncodeTo encodes payload and writes the waveform to sink.
func (e *Encoder) EncodeTo(sink interfaces.ISampleSink, rmsPower float64, payload []byte) error {
	samples, err := e.Encode(rmsPower, payload)
	if err != nil {
		return err
	}
	return sink.WriteSamples(samples)
}

// synthesize fills word with the sum of the chord's tones, phase zero at the
// first sample.
func (e *Encoder) synthesize(word []float64, chord []int, rmsPower float64) error {
	amplitude := rmsPower * math.Sqrt2 / math.Sqrt(float64(len(chord)))
	for _, pitch := range chord {
		omega := e.omegas[pitch]
		for n := range word {
			word[n] += amplitude * math.Sin(omega*float64(n))
		}
	}
	if len(chord) == 1 {
		return nil
	}

	// Tones of a short word are not exactly orthogonal.
	level, err := dsp.RMS(word)
	if err != nil {
		return err
	}
	if level > 0 {
		scale := rmsPower / level
		for n := range word {
			word[n] *= scale
		}
	}
	return nil
}
