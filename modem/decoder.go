package modem

import (
	"fmt"
	"math"
	"sort"

	"github.com/opd-ai/tonelink/config"
	"github.com/opd-ai/tonelink/dsp"
	"github.com/opd-ai/tonelink/symbol"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// Word is the decision made for one data word.
type Word struct {
	// Levels holds the RMS-equivalent level of every pitch.
	Levels []float64
	// Threshold is the adaptive level a data pitch had to reach.
	Threshold float64
	// Active lists the data pitches at or above Threshold, ascending.
	Active []int
	// Chord is the chord used for the decision: Active, or its strongest
	// members when more than the chord size passed the threshold.
	Chord []int
	// Value is the word value the chord encodes.
	Value uint32
}

// Decoder turns aligned word buffers into word values.
// It is safe for concurrent use.
type Decoder struct {
	cfg       *config.Configuration
	opts      ReceiverOptions
	mapping   *symbol.Mapping
	triggers  []int
	isTrigger []bool
	analyzer  *dsp.Analyzer
}

// NewDecoder creates a decoder for cfg.
func NewDecoder(cfg *config.Configuration, opts ReceiverOptions) (*Decoder, error) {
	resolved, err := opts.resolve(cfg.WordSamples())
	if err != nil {
		return nil, err
	}
	analyzer, err := dsp.NewAnalyzer(cfg.SampleRate(), cfg.WordSamples(), cfg.Frequencies())
	if err != nil {
		return nil, err
	}
	isTrigger := make([]bool, cfg.PitchCount())
	for i := range isTrigger {
		isTrigger[i] = cfg.IsTrigger(i)
	}
	return &Decoder{
		cfg:       cfg,
		opts:      resolved,
		mapping:   cfg.Mapping(),
		triggers:  cfg.Triggers(),
		isTrigger: isTrigger,
		analyzer:  analyzer,
	}, nil
}

// DecodeWord decides the value carried by samples, one aligned data word.
//
// Every trigger must reach ThresholdRatio times its expected level, the word's
// RMS level divided by √(triggers+chord size). Data pitches are then compared
// with ThresholdRatio times the mean trigger level of the same word. Missing
// triggers, fewer active data pitches than the chord size, or a chord outside
// the mapping yield a *SymbolConfidenceError for word index.
func (d *Decoder) DecodeWord(index int, samples []float64) (*Word, error) {
	levels, rms, err := d.analyze(samples)
	if err != nil {
		return nil, err
	}

	tones := float64(len(d.triggers) + d.mapping.ChordSize())
	if missing := d.missingTriggers(levels, rms/math.Sqrt(tones)); len(missing) > 0 {
		return nil, &SymbolConfidenceError{Word: index, Missing: missing}
	}

	word := &Word{Levels: levels, Threshold: d.opts.ThresholdRatio * d.triggerMean(levels)}
	for p, level := range levels {
		if !d.isTrigger[p] && level >= word.Threshold {
			word.Active = append(word.Active, p)
		}
	}

	k := d.mapping.ChordSize()
	if len(word.Active) < k {
		return nil, &SymbolConfidenceError{
			Word: index,
			Err:  fmt.Errorf("%w: %d data pitches above threshold, want %d", symbol.ErrInvalidChord, len(word.Active), k),
		}
	}
	word.Chord = strongest(word.Active, levels, k)

	value, err := d.mapping.Value(word.Chord)
	if err != nil {
		return nil, &SymbolConfidenceError{Word: index, Err: err}
	}
	word.Value = value

	logrus.WithFields(logrus.Fields{
		"function":  "Decoder.DecodeWord",
		"word":      index,
		"threshold": word.Threshold,
		"active":    word.Active,
		"chord":     word.Chord,
		"value":     value,
	}).Debug("Decoded data word")

	return word, nil
}

// CheckCalibration verifies that samples, a trailer word, sounds every trigger
// at its expected level. It returns the triggers found missing.
func (d *Decoder) CheckCalibration(samples []float64) ([]int, error) {
	levels, rms, err := d.analyze(samples)
	if err != nil {
		return nil, err
	}
	return d.missingTriggers(levels, rms/math.Sqrt(float64(len(d.triggers)))), nil
}

func (d *Decoder) analyze(samples []float64) ([]float64, float64, error) {
	rms, err := dsp.RMS(samples)
	if err != nil {
		return nil, 0, err
	}
	levels, err := d.analyzer.AnalyzeParallel(samples, d.opts.Workers)
	if err != nil {
		return nil, 0, err
	}
	return levels, rms, nil
}

// missingTriggers lists triggers below ThresholdRatio times expected.
// Silence has every trigger missing.
func (d *Decoder) missingTriggers(levels []float64, expected float64) []int {
	var missing []int
	for _, t := range d.triggers {
		if !(expected > 0) || levels[t] < d.opts.ThresholdRatio*expected {
			missing = append(missing, t)
		}
	}
	return missing
}

func (d *Decoder) triggerMean(levels []float64) float64 {
	values := make([]float64, len(d.triggers))
	for i, t := range d.triggers {
		values[i] = levels[t]
	}
	return floats.Sum(values) / float64(len(values))
}

// strongest returns the k pitches of candidates with the highest levels,
// ascending by pitch. Equal levels prefer the lower pitch.
func strongest(candidates []int, levels []float64, k int) []int {
	ranked := append([]int(nil), candidates...)
	sort.SliceStable(ranked, func(a, b int) bool {
		return levels[ranked[a]] > levels[ranked[b]]
	})
	chord := ranked[:k]
	sort.Ints(chord)
	return chord
}

// chordMargin is the gap between the k-th and (k+1)-th strongest data pitch,
// relative to the strongest trigger. Larger margins decode more reliably.
func chordMargin(levels []float64, isTrigger []bool, k int) float64 {
	data := make([]float64, 0, len(levels))
	reference := 0.0
	for p, level := range levels {
		if isTrigger[p] {
			reference = math.Max(reference, level)
			continue
		}
		data = append(data, level)
	}
	if !(reference > 0) || len(data) < k {
		return math.Inf(-1)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(data)))
	next := 0.0
	if len(data) > k {
		next = data[k]
	}
	return (data[k-1] - next) / reference
}
