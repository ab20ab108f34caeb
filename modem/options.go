package modem

import (
	"fmt"
	"math"

	"github.com/opd-ai/tonelink/limits"
)

// ReceiverOptions tunes synchronization and decoding.
// The zero value is not usable; start from NewReceiverOptions.
type ReceiverOptions struct {
	// Step is the coarse scan step in samples. Zero selects an eighth of a word.
	// Larger steps scan faster and rely more on refinement.
	Step int

	// RefineStep is the resolution, in samples, of the refinement after a coarse hit.
	RefineStep int

	// TriggerRatio is the minimum ratio between a calibration trigger's level
	// and the RMS level of its word.
	TriggerRatio float64

	// CrossRatio is the maximum ratio between any other pitch's level and the
	// calibration trigger's level inside a calibration word.
	CrossRatio float64

	// ThresholdRatio scales the decoder's adaptive threshold: a data pitch is
	// active when its level reaches ThresholdRatio times the mean trigger level
	// of the same word, and a trigger is present when its level reaches
	// ThresholdRatio times its expected level.
	ThresholdRatio float64

	// ScanBudget is the number of samples the synchronizer scans before
	// reporting ErrSynchronizationTimeout.
	ScanBudget int64

	// Workers spreads full-alphabet analysis across goroutines when above one.
	Workers int

	// Metrics receives counters; nil disables them.
	Metrics *Metrics
}

// NewReceiverOptions returns the default receiver tuning.
func NewReceiverOptions() ReceiverOptions {
	return ReceiverOptions{
		Step:           0,
		RefineStep:     1,
		TriggerRatio:   0.6,
		CrossRatio:     0.5,
		ThresholdRatio: 0.5,
		ScanBudget:     limits.DefaultScanBudget,
		Workers:        1,
	}
}

// resolve validates o and fills the defaults that depend on the word length.
func (o ReceiverOptions) resolve(wordSamples int) (ReceiverOptions, error) {
	if o.Step == 0 {
		o.Step = wordSamples / 8
		if o.Step < 1 {
			o.Step = 1
		}
	}
	if o.Step < 0 || o.Step > wordSamples {
		return o, fmt.Errorf("%w: step %d outside [1, %d]", ErrInvalidOptions, o.Step, wordSamples)
	}
	if o.RefineStep <= 0 || o.RefineStep > o.Step {
		return o, fmt.Errorf("%w: refine step %d outside [1, %d]", ErrInvalidOptions, o.RefineStep, o.Step)
	}
	if !validRatio(o.TriggerRatio) {
		return o, fmt.Errorf("%w: trigger ratio %v", ErrInvalidOptions, o.TriggerRatio)
	}
	if !validRatio(o.CrossRatio) || o.CrossRatio >= 1 {
		return o, fmt.Errorf("%w: cross ratio %v outside (0, 1)", ErrInvalidOptions, o.CrossRatio)
	}
	if !validRatio(o.ThresholdRatio) || o.ThresholdRatio > 1 {
		return o, fmt.Errorf("%w: threshold ratio %v outside (0, 1]", ErrInvalidOptions, o.ThresholdRatio)
	}
	if o.ScanBudget <= 0 {
		return o, fmt.Errorf("%w: scan budget %d", ErrInvalidOptions, o.ScanBudget)
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	return o, nil
}

func validRatio(r float64) bool {
	return r > 0 && !math.IsInf(r, 0)
}
