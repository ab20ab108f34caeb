package modem

import (
	"github.com/opd-ai/tonelink/config"
	"github.com/opd-ai/tonelink/symbol"
)

// Layout describes the word structure of one message.
//
// A message is PreambleWords calibration words (one per trigger, in trigger
// order, each sounding that trigger alone), then DataWords data words (all
// triggers plus one chord each), then TrailerWords closing words (all
// triggers, no data).
type Layout struct {
	PreambleWords int
	DataWords     int
	TrailerWords  int
	WordSamples   int
}

// NewLayout returns the layout of a message carrying payloadLength payload bytes.
// The data words carry the FEC-expanded length.
func NewLayout(cfg *config.Configuration, payloadLength int) Layout {
	return Layout{
		PreambleWords: len(cfg.Triggers()),
		DataWords:     symbol.WordCount(cfg.FEC().EncodedLen(payloadLength), cfg.Mapping().Bits()),
		TrailerWords:  cfg.TrailerWords(),
		WordSamples:   cfg.WordSamples(),
	}
}

// Words returns the total number of words.
func (l Layout) Words() int {
	return l.PreambleWords + l.DataWords + l.TrailerWords
}

// TotalSamples returns the message length in samples.
func (l Layout) TotalSamples() int {
	return l.Words() * l.WordSamples
}

// DataOffset returns the distance in samples from the message start to the
// first data word.
func (l Layout) DataOffset() int {
	return l.PreambleWords * l.WordSamples
}

// WindowSize returns the length in samples of a message carrying
// payloadLength bytes. It is deterministic and non-decreasing in payloadLength.
func WindowSize(cfg *config.Configuration, payloadLength int) int {
	return NewLayout(cfg, payloadLength).TotalSamples()
}
