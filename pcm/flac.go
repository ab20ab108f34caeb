package pcm

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
	"github.com/sirupsen/logrus"
)

// flacBlockSize is the number of samples per encoded FLAC frame.
const flacBlockSize = 4096

// FLACSource decodes a FLAC recording and implements interfaces.ISampleSource.
// Only the first channel is read; samples are scaled so that the format's full
// scale maps to fullScale.
type FLACSource struct {
	stream    *flac.Stream
	fullScale float64
	gain      float64
	pending   []int32
}

// NewFLACSource parses the FLAC header from r.
func NewFLACSource(r io.Reader, fullScale float64) (*FLACSource, error) {
	if err := checkScale(fullScale); err != nil {
		return nil, err
	}
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	logrus.WithFields(logrus.Fields{
		"function":    "NewFLACSource",
		"sample_rate": info.SampleRate,
		"channels":    info.NChannels,
		"bit_depth":   info.BitsPerSample,
		"samples":     info.NSamples,
	}).Debug("Opened FLAC recording")

	return &FLACSource{
		stream:    stream,
		fullScale: fullScale,
		gain:      fullScale / float64(uint64(1)<<(info.BitsPerSample-1)),
	}, nil
}

// SampleRate returns the recording's sample rate in Hz.
func (s *FLACSource) SampleRate() int {
	return int(s.stream.Info.SampleRate)
}

// ReadSamples implements interfaces.ISampleSource.
func (s *FLACSource) ReadSamples(p []float64) (int, error) {
	for len(s.pending) == 0 {
		f, err := s.stream.ParseNext()
		if errors.Is(err, io.EOF) {
			return 0, io.EOF
		}
		if err != nil {
			return 0, fmt.Errorf("decoding FLAC frame: %w", err)
		}
		s.pending = f.Subframes[0].Samples[:f.BlockSize]
	}

	n := len(p)
	if n > len(s.pending) {
		n = len(s.pending)
	}
	for i := 0; i < n; i++ {
		p[i] = float64(s.pending[i]) * s.gain
	}
	s.pending = s.pending[n:]
	return n, nil
}

// Close releases the decoder.
func (s *FLACSource) Close() error {
	return s.stream.Close()
}

// WriteFLAC encodes samples as a 16-bit mono FLAC stream, mapping ±fullScale to
// the int16 range.
func WriteFLAC(w io.Writer, samples []float64, sampleRate int, fullScale float64) error {
	quantized, _, err := Quantize(samples, fullScale)
	if err != nil {
		return err
	}

	info := &meta.StreamInfo{
		BlockSizeMin:  16,
		BlockSizeMax:  flacBlockSize,
		SampleRate:    uint32(sampleRate),
		NChannels:     1,
		BitsPerSample: 16,
		NSamples:      uint64(len(quantized)),
	}
	enc, err := flac.NewEncoder(w, info)
	if err != nil {
		return fmt.Errorf("failed to create FLAC encoder: %w", err)
	}

	for start := 0; start < len(quantized); start += flacBlockSize {
		end := start + flacBlockSize
		if end > len(quantized) {
			end = len(quantized)
		}
		block := make([]int32, end-start)
		for i, v := range quantized[start:end] {
			block[i] = int32(v)
		}
		f := &frame.Frame{
			Header: frame.Header{
				HasFixedBlockSize: false,
				BlockSize:         uint16(len(block)),
				SampleRate:        uint32(sampleRate),
				Channels:          frame.ChannelsMono,
				BitsPerSample:     16,
			},
			Subframes: []*frame.Subframe{{
				SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
				Samples:   block,
				NSamples:  len(block),
			}},
		}
		if err := enc.WriteFrame(f); err != nil {
			enc.Close()
			return fmt.Errorf("failed to write FLAC frame at sample %d: %w", start, err)
		}
	}
	return enc.Close()
}
