package modem

import (
	"errors"
	"fmt"
	"io"

	"github.com/opd-ai/tonelink/interfaces"
)

// minReadSize is the smallest chunk requested from the source.
const minReadSize = 4096

// maxEmptyReads bounds consecutive (0, nil) reads before giving up.
const maxEmptyReads = 100

// Stream buffers an ISampleSource so the synchronizer and decoder can address
// samples by absolute position.
//
// Samples are read lazily as windows are requested and kept until Discard
// drops them. A Stream is not safe for concurrent use.
type Stream struct {
	src  interfaces.ISampleSource
	buf  []float64
	base int64 // absolute position of buf[0]
	eof  bool
	err  error
}

// NewStream wraps src.
func NewStream(src interfaces.ISampleSource) *Stream {
	return &Stream{src: src}
}

// Window returns the n samples starting at absolute position pos.
//
// The returned slice aliases the stream's buffer and is only valid until the
// next call on the stream. Returns io.EOF when the source ends before pos+n,
// and ErrStreamDiscarded when pos precedes the retained samples.
func (s *Stream) Window(pos int64, n int) ([]float64, error) {
	if pos < s.base {
		return nil, fmt.Errorf("%w: position %d, oldest retained %d", ErrStreamDiscarded, pos, s.base)
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: window of %d samples", ErrInvalidOptions, n)
	}
	end := pos - s.base + int64(n)
	if err := s.fill(end); err != nil {
		return nil, err
	}
	start := pos - s.base
	return s.buf[start:end:end], nil
}

// WindowPadded is Window, except that when the source ended at most maxPad
// samples short of pos+n the missing tail is returned as silence. The result
// is then a fresh slice.
func (s *Stream) WindowPadded(pos int64, n, maxPad int) ([]float64, error) {
	win, err := s.Window(pos, n)
	if err == nil || !errors.Is(err, io.EOF) {
		return win, err
	}
	short := pos + int64(n) - s.Buffered()
	if short > int64(maxPad) || short >= int64(n) {
		return nil, err
	}
	out := make([]float64, n)
	copy(out, s.buf[pos-s.base:])
	return out, nil
}

// fill reads from the source until the buffer holds want samples.
func (s *Stream) fill(want int64) error {
	empty := 0
	for int64(len(s.buf)) < want {
		if s.eof {
			return io.EOF
		}
		if s.err != nil {
			return s.err
		}

		need := int(want - int64(len(s.buf)))
		if need < minReadSize {
			need = minReadSize
		}
		if cap(s.buf)-len(s.buf) < need {
			grown := make([]float64, len(s.buf), len(s.buf)+need)
			copy(grown, s.buf)
			s.buf = grown
		}

		n, err := s.src.ReadSamples(s.buf[len(s.buf) : len(s.buf)+need])
		s.buf = s.buf[:len(s.buf)+n]
		switch {
		case errors.Is(err, io.EOF):
			s.eof = true
		case err != nil:
			s.err = fmt.Errorf("reading samples: %w", err)
		case n == 0:
			empty++
			if empty >= maxEmptyReads {
				s.err = io.ErrNoProgress
			}
		default:
			empty = 0
		}
	}
	return nil
}

// Discard drops every sample before absolute position pos.
func (s *Stream) Discard(pos int64) {
	if pos <= s.base {
		return
	}
	drop := pos - s.base
	if drop >= int64(len(s.buf)) {
		s.base += int64(len(s.buf))
		s.buf = s.buf[:0]
		return
	}
	kept := copy(s.buf, s.buf[drop:])
	s.buf = s.buf[:kept]
	s.base = pos
}

// Position returns the absolute position of the oldest retained sample.
func (s *Stream) Position() int64 {
	return s.base
}

// Buffered returns the absolute position just past the last buffered sample.
func (s *Stream) Buffered() int64 {
	return s.base + int64(len(s.buf))
}
