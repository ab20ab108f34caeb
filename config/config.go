package config

import (
	"fmt"
	"math"

	"github.com/opd-ai/tonelink/fec"
	"github.com/opd-ai/tonelink/limits"
	"github.com/opd-ai/tonelink/symbol"
	"github.com/sirupsen/logrus"
)

// SemitoneMultiplier is 2^(1/12), the ratio between adjacent pitches of an
// equal-tempered alphabet.
const SemitoneMultiplier = 1.0594630943591

// MaxTrailerWords bounds the number of closing calibration words.
const MaxTrailerWords = 4

// Params holds the raw, unvalidated codec parameters.
// It is the form read from YAML files and environment variables; New turns it
// into an immutable Configuration.
type Params struct {
	SampleRate          float64 `yaml:"sample_rate"`          // Hz
	FirstFrequency      float64 `yaml:"first_frequency"`      // Hz, lowest pitch
	FrequencyMultiplier float64 `yaml:"frequency_multiplier"` // ratio between adjacent pitches, > 1
	WordDuration        float64 `yaml:"word_duration"`        // seconds per word
	PayloadLength       int     `yaml:"payload_length"`       // bytes per message
	PitchCount          int     `yaml:"pitch_count"`          // size of the frequency alphabet
	TriggerPitches      []int   `yaml:"trigger_pitches"`      // pitch indices used for synchronization
	ChordSize           int     `yaml:"chord_size"`           // data pitches sounding per data word
	TrailerWords        int     `yaml:"trailer_words"`        // closing calibration words
}

// DefaultParams returns the reference parameter set: a 32-pitch semitone
// alphabet from 1720 Hz sampled at 44.1 kHz, 87.2 ms words, triggers 9 and 25,
// two data pitches per word (one byte per data word).
//
// Default Value Rationale:
//   - 1720 Hz to ~10.3 kHz stays inside the band small speakers reproduce well
//   - 87.2 ms words give ~11.5 Hz analysis resolution, far below the ~100 Hz
//     spacing between the lowest adjacent pitches
//   - C(30, 2) = 435 chords carry 8 bits per data word
func DefaultParams() Params {
	return Params{
		SampleRate:          44100,
		FirstFrequency:      1720,
		FrequencyMultiplier: SemitoneMultiplier,
		WordDuration:        0.0872,
		PayloadLength:       8,
		PitchCount:          32,
		TriggerPitches:      []int{9, 25},
		ChordSize:           2,
		TrailerWords:        0,
	}
}

// Configuration is the validated, immutable codec configuration.
//
// It is built once by New and never mutated; every accessor returns copies of
// slices, so a Configuration may be shared freely across goroutines.
type Configuration struct {
	params      Params
	wordSamples int
	frequencies []float64
	triggers    []int
	isTrigger   []bool
	mapping     *symbol.Mapping
	codec       fec.Codec
}

// Option customizes a Configuration during New.
type Option func(*Configuration) error

// WithFEC attaches the forward-error-correction codec. The default is fec.Passthrough.
func WithFEC(codec fec.Codec) Option {
	return func(c *Configuration) error {
		if codec == nil {
			return fmt.Errorf("%w: nil FEC codec", ErrConfiguration)
		}
		c.codec = codec
		return nil
	}
}

// New validates p and returns the immutable configuration.
//
// Fails with ErrConfiguration on non-positive parameters, a frequency alphabet
// whose top pitch is not below the Nyquist limit, duplicate or out-of-range
// trigger indices, or a chord size the data pitches cannot support.
func New(p Params, opts ...Option) (*Configuration, error) {
	logrus.WithFields(logrus.Fields{
		"function":       "config.New",
		"sample_rate":    p.SampleRate,
		"first_freq":     p.FirstFrequency,
		"multiplier":     p.FrequencyMultiplier,
		"word_duration":  p.WordDuration,
		"payload_length": p.PayloadLength,
		"pitch_count":    p.PitchCount,
		"triggers":       p.TriggerPitches,
		"chord_size":     p.ChordSize,
	}).Debug("Validating codec configuration")

	cfg, err := build(p)
	if err == nil {
		for _, opt := range opts {
			if err = opt(cfg); err != nil {
				break
			}
		}
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "config.New",
			"error":    err.Error(),
		}).Warn("Rejected codec configuration")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":       "config.New",
		"word_samples":   cfg.wordSamples,
		"top_frequency":  cfg.frequencies[len(cfg.frequencies)-1],
		"bits_per_word":  cfg.mapping.Bits(),
		"fec":            cfg.codec.Name(),
		"carried_length": cfg.CarriedLength(),
	}).Info("Codec configuration created")

	return cfg, nil
}

func build(p Params) (*Configuration, error) {
	if !(p.WordDuration > 0) || math.IsInf(p.WordDuration, 0) {
		return nil, fmt.Errorf("%w: word duration %v s must be positive", ErrConfiguration, p.WordDuration)
	}
	if p.PitchCount > limits.MaxPitchCount {
		return nil, fmt.Errorf("%w: pitch count %d exceeds limit %d", ErrConfiguration, p.PitchCount, limits.MaxPitchCount)
	}

	frequencies, err := BuildFrequencyTable(p.FirstFrequency, p.FrequencyMultiplier, p.PitchCount, p.SampleRate)
	if err != nil {
		return nil, err
	}

	wordSamples := int(math.Round(p.WordDuration * p.SampleRate))
	if err := limits.ValidateWordSamples(wordSamples); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if err := limits.ValidatePayloadLength(p.PayloadLength); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if p.TrailerWords < 0 || p.TrailerWords > MaxTrailerWords {
		return nil, fmt.Errorf("%w: trailer words %d outside [0, %d]", ErrConfiguration, p.TrailerWords, MaxTrailerWords)
	}

	if len(p.TriggerPitches) == 0 {
		return nil, fmt.Errorf("%w: at least one trigger pitch is required", ErrConfiguration)
	}
	isTrigger := make([]bool, p.PitchCount)
	for _, idx := range p.TriggerPitches {
		if idx < 0 || idx >= p.PitchCount {
			return nil, fmt.Errorf("%w: trigger pitch %d outside [0, %d)", ErrConfiguration, idx, p.PitchCount)
		}
		if isTrigger[idx] {
			return nil, fmt.Errorf("%w: duplicate trigger pitch %d", ErrConfiguration, idx)
		}
		isTrigger[idx] = true
	}

	pool := make([]int, 0, p.PitchCount-len(p.TriggerPitches))
	for i := 0; i < p.PitchCount; i++ {
		if !isTrigger[i] {
			pool = append(pool, i)
		}
	}
	mapping, err := symbol.NewMapping(pool, p.ChordSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	params := p
	params.TriggerPitches = append([]int(nil), p.TriggerPitches...)

	return &Configuration{
		params:      params,
		wordSamples: wordSamples,
		frequencies: frequencies,
		triggers:    append([]int(nil), p.TriggerPitches...),
		isTrigger:   isTrigger,
		mapping:     mapping,
		codec:       fec.Passthrough{},
	}, nil
}

// Params returns a copy of the parameters the configuration was built from.
func (c *Configuration) Params() Params {
	p := c.params
	p.TriggerPitches = append([]int(nil), c.params.TriggerPitches...)
	return p
}

// SampleRate returns the sample rate in Hz.
func (c *Configuration) SampleRate() float64 { return c.params.SampleRate }

// WordDuration returns the configured word duration in seconds.
func (c *Configuration) WordDuration() float64 { return c.params.WordDuration }

// WordSamples returns round(WordDuration·SampleRate), the length of every word.
func (c *Configuration) WordSamples() int { return c.wordSamples }

// PayloadLength returns the payload length in bytes.
func (c *Configuration) PayloadLength() int { return c.params.PayloadLength }

// PitchCount returns the size of the frequency alphabet.
func (c *Configuration) PitchCount() int { return len(c.frequencies) }

// TrailerWords returns the number of closing calibration words.
func (c *Configuration) TrailerWords() int { return c.params.TrailerWords }

// Frequencies returns a copy of the frequency table.
func (c *Configuration) Frequencies() []float64 {
	return append([]float64(nil), c.frequencies...)
}

// Frequency returns the frequency of pitch index i.
func (c *Configuration) Frequency(i int) float64 { return c.frequencies[i] }

// Triggers returns the trigger pitch indices in their configured order.
// The order defines the order of the calibration words.
func (c *Configuration) Triggers() []int {
	return append([]int(nil), c.triggers...)
}

// TriggerFrequencies returns the frequencies of the trigger pitches, in trigger order.
func (c *Configuration) TriggerFrequencies() []float64 {
	out := make([]float64, len(c.triggers))
	for i, idx := range c.triggers {
		out[i] = c.frequencies[idx]
	}
	return out
}

// IsTrigger reports whether pitch index i is a trigger.
func (c *Configuration) IsTrigger(i int) bool {
	return i >= 0 && i < len(c.isTrigger) && c.isTrigger[i]
}

// Mapping returns the shared bit↔chord mapping over the data pitches.
func (c *Configuration) Mapping() *symbol.Mapping { return c.mapping }

// FEC returns the forward-error-correction codec.
func (c *Configuration) FEC() fec.Codec { return c.codec }

// CarriedLength returns how many bytes the data words carry once the FEC codec
// has added its redundancy.
func (c *Configuration) CarriedLength() int {
	return c.codec.EncodedLen(c.params.PayloadLength)
}
