package modem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/opd-ai/tonelink/config"
	"github.com/opd-ai/tonelink/dsp"
	"github.com/sirupsen/logrus"
)

// Synchronizer locates messages in a sample stream.
//
// A message opens with one calibration word per trigger pitch, each sounding
// that trigger alone. The synchronizer slides a word-sized window across the
// stream by Step samples and accepts an offset when, for every calibration
// word, the expected trigger stands out against the word's RMS level and the
// other triggers stay low. The first calibration word must also be free of
// data pitches, which no data word is. An accepted offset is then refined to
// RefineStep resolution by maximizing the calibration energy.
type Synchronizer struct {
	cfg         *config.Configuration
	opts        ReceiverOptions
	wordSamples int
	triggers    []int
	isTrigger   []bool
	trigger     *dsp.Analyzer // trigger frequencies, in trigger order
	full        *dsp.Analyzer // every pitch
}

// NewSynchronizer creates a synchronizer for cfg.
func NewSynchronizer(cfg *config.Configuration, opts ReceiverOptions) (*Synchronizer, error) {
	w := cfg.WordSamples()
	resolved, err := opts.resolve(w)
	if err != nil {
		return nil, err
	}
	trigger, err := dsp.NewAnalyzer(cfg.SampleRate(), w, cfg.TriggerFrequencies())
	if err != nil {
		return nil, err
	}
	full, err := dsp.NewAnalyzer(cfg.SampleRate(), w, cfg.Frequencies())
	if err != nil {
		return nil, err
	}
	isTrigger := make([]bool, cfg.PitchCount())
	for i := range isTrigger {
		isTrigger[i] = cfg.IsTrigger(i)
	}
	return &Synchronizer{
		cfg:         cfg,
		opts:        resolved,
		wordSamples: w,
		triggers:    cfg.Triggers(),
		isTrigger:   isTrigger,
		trigger:     trigger,
		full:        full,
	}, nil
}

// Options returns the resolved options.
func (s *Synchronizer) Options() ReceiverOptions {
	return s.opts
}

// Synchronize scans stream from absolute position from and returns the
// absolute position of the first calibration word of the next message.
//
// Returns an error wrapping ErrSynchronizationTimeout when ScanBudget samples
// were scanned without a match, or when the stream ended (the error then also
// wraps io.EOF). Cancellation of ctx returns the context's error.
func (s *Synchronizer) Synchronize(ctx context.Context, stream *Stream, from int64) (int64, error) {
	s.opts.Metrics.syncStarted()
	if from < stream.Position() {
		from = stream.Position()
	}
	step := int64(s.opts.Step)

	for pos := from; ; pos += step {
		if err := ctx.Err(); err != nil {
			s.opts.Metrics.syncEnded(false, pos-from)
			return 0, fmt.Errorf("synchronization stopped at sample %d: %w", pos, err)
		}
		if pos-from > s.opts.ScanBudget {
			s.opts.Metrics.syncEnded(false, pos-from)
			logrus.WithFields(logrus.Fields{
				"function": "Synchronizer.Synchronize",
				"from":     from,
				"budget":   s.opts.ScanBudget,
			}).Debug("Scan budget exhausted")
			return 0, fmt.Errorf("%w: no calibration pattern in %d samples from %d", ErrSynchronizationTimeout, s.opts.ScanBudget, from)
		}

		score, ok, err := s.measure(stream, pos, true)
		if err != nil {
			s.opts.Metrics.syncEnded(false, pos-from)
			if errors.Is(err, io.EOF) {
				return 0, fmt.Errorf("%w: stream ended at sample %d: %w", ErrSynchronizationTimeout, stream.Buffered(), io.EOF)
			}
			return 0, err
		}
		if ok {
			start := s.refine(stream, pos, score)
			s.opts.Metrics.syncEnded(true, pos-from)
			logrus.WithFields(logrus.Fields{
				"function":   "Synchronizer.Synchronize",
				"coarse":     pos,
				"offset":     start,
				"scanned":    pos - from,
				"score_db":   dsp.ToDecibels(score),
				"word_count": len(s.triggers),
			}).Debug("Located calibration words")
			return start, nil
		}

		stream.Discard(pos)
	}
}

// measure evaluates the calibration hypothesis at pos. The score is the sum,
// over calibration words, of the expected trigger's level minus the other
// triggers' levels. With strict set it also reports whether the detection
// criteria hold.
func (s *Synchronizer) measure(stream *Stream, pos int64, strict bool) (float64, bool, error) {
	w := s.wordSamples
	score := 0.0
	ok := strict
	for i := range s.triggers {
		win, err := stream.Window(pos+int64(i*w), w)
		if err != nil {
			return 0, false, err
		}
		levels, err := s.trigger.Analyze(win)
		if err != nil {
			return 0, false, err
		}
		level := levels[i]
		score += level
		for j, other := range levels {
			if j != i {
				score -= other
			}
		}
		if !ok {
			continue
		}

		rms, err := dsp.RMS(win)
		if err != nil {
			return 0, false, err
		}
		ok = s.accepts(levels, i, rms)
		if ok && i == 0 {
			full, err := s.full.AnalyzeParallel(win, s.opts.Workers)
			if err != nil {
				return 0, false, err
			}
			ok = s.quiet(full, level)
		}
	}
	return score, ok, nil
}

// accepts reports whether trigger i dominates a calibration word.
func (s *Synchronizer) accepts(levels []float64, i int, rms float64) bool {
	level := levels[i]
	if !(rms > 0) || level < s.opts.TriggerRatio*rms {
		return false
	}
	for j, other := range levels {
		if j != i && other > s.opts.CrossRatio*level {
			return false
		}
	}
	return true
}

// quiet reports whether every data pitch stays below the cross ratio.
func (s *Synchronizer) quiet(levels []float64, reference float64) bool {
	for p, level := range levels {
		if !s.isTrigger[p] && level > s.opts.CrossRatio*reference {
			return false
		}
	}
	return true
}

// refine climbs from a coarse hit to the calibration energy peak.
func (s *Synchronizer) refine(stream *Stream, pos int64, score float64) int64 {
	step := int64(s.opts.Step)
	best, bestScore := pos, score

	for {
		next, err := s.score(stream, best+step)
		if err != nil || next <= bestScore {
			break
		}
		best, bestScore = best+step, next
	}

	return s.bisect(stream, best, bestScore, step, func(p int64) (float64, error) {
		return s.score(stream, p)
	})
}

// bisect narrows a peak around center by halving the probe distance until it
// drops below RefineStep. Ties keep the earlier position.
func (s *Synchronizer) bisect(stream *Stream, center int64, best float64, span int64, score func(int64) (float64, error)) int64 {
	refine := int64(s.opts.RefineStep)
	for delta := span / 2; delta >= refine; delta /= 2 {
		pivot := center
		for _, cand := range []int64{pivot - delta, pivot + delta} {
			if cand < stream.Position() {
				continue
			}
			sc, err := score(cand)
			if err != nil {
				continue
			}
			if sc > best || (sc == best && cand < center) {
				center, best = cand, sc
			}
		}
	}
	return center
}

func (s *Synchronizer) score(stream *Stream, pos int64) (float64, error) {
	sc, _, err := s.measure(stream, pos, false)
	return sc, err
}

// Realign searches within radius samples of expected for the word boundary
// that decodes with the widest margin, and returns it. It is used after a
// data word was rejected, to recover from a drifted alignment.
func (s *Synchronizer) Realign(ctx context.Context, stream *Stream, expected int64, radius int) (int64, error) {
	if radius <= 0 {
		return expected, nil
	}
	chord := s.cfg.Mapping().ChordSize()
	margin := func(pos int64) (float64, error) {
		win, err := stream.Window(pos, s.wordSamples)
		if err != nil {
			return 0, err
		}
		levels, err := s.full.AnalyzeParallel(win, s.opts.Workers)
		if err != nil {
			return 0, err
		}
		return chordMargin(levels, s.isTrigger, chord), nil
	}

	best, bestMargin := expected, math.Inf(-1)
	found := false
	step := int64(s.opts.Step)
	for pos := expected - int64(radius); pos <= expected+int64(radius); pos += step {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("realignment stopped at sample %d: %w", pos, err)
		}
		if pos < stream.Position() {
			continue
		}
		m, err := margin(pos)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
		if !found || m > bestMargin {
			best, bestMargin, found = pos, m, true
		}
	}
	if !found {
		return 0, fmt.Errorf("%w: no samples around %d", ErrDecodeFailure, expected)
	}

	aligned := s.bisect(stream, best, bestMargin, step, margin)
	logrus.WithFields(logrus.Fields{
		"function": "Synchronizer.Realign",
		"expected": expected,
		"aligned":  aligned,
		"margin":   bestMargin,
	}).Debug("Realigned data word")
	return aligned, nil
}
