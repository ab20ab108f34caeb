package pcm

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Int16Source reads little-endian signed 16-bit mono PCM from an io.Reader,
// such as a raw capture pipe, and implements interfaces.ISampleSource.
type Int16Source struct {
	r         *bufio.Reader
	fullScale float64
	scratch   []byte
}

// NewInt16Source wraps r. fullScale is the sample level of int16 full scale.
func NewInt16Source(r io.Reader, fullScale float64) (*Int16Source, error) {
	if err := checkScale(fullScale); err != nil {
		return nil, err
	}
	return &Int16Source{r: bufio.NewReader(r), fullScale: fullScale}, nil
}

// ReadSamples implements interfaces.ISampleSource. A trailing odd byte is
// dropped at the end of the stream.
func (s *Int16Source) ReadSamples(p []float64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if cap(s.scratch) < 2*len(p) {
		s.scratch = make([]byte, 2*len(p))
	}
	buf := s.scratch[:2*len(p)]

	n, err := io.ReadAtLeast(s.r, buf, 2)
	if n%2 == 1 && err == nil {
		var m int
		m, err = io.ReadFull(s.r, buf[n:n+1])
		n += m
	}
	n -= n % 2

	gain := s.fullScale / 32768.0
	for i := 0; i < n/2; i++ {
		p[i] = float64(int16(binary.LittleEndian.Uint16(buf[2*i:]))) * gain
	}

	switch {
	case n > 0:
		return n / 2, nil
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return 0, io.EOF
	case err != nil:
		return 0, fmt.Errorf("reading PCM: %w", err)
	}
	return 0, nil
}

// Int16Sink writes little-endian signed 16-bit mono PCM to an io.Writer and
// implements interfaces.ISampleSink.
type Int16Sink struct {
	w         io.Writer
	fullScale float64
	clipped   int
}

// NewInt16Sink wraps w. fullScale is the sample level of int16 full scale.
func NewInt16Sink(w io.Writer, fullScale float64) (*Int16Sink, error) {
	if err := checkScale(fullScale); err != nil {
		return nil, err
	}
	return &Int16Sink{w: w, fullScale: fullScale}, nil
}

// WriteSamples implements interfaces.ISampleSink.
func (s *Int16Sink) WriteSamples(samples []float64) error {
	quantized, clipped, err := Quantize(samples, s.fullScale)
	if err != nil {
		return err
	}
	s.clipped += clipped
	return binary.Write(s.w, binary.LittleEndian, quantized)
}

// Clipped returns how many samples were clipped so far.
func (s *Int16Sink) Clipped() int {
	return s.clipped
}

// Close implements interfaces.ISampleSink. It closes the writer when it is an io.Closer.
func (s *Int16Sink) Close() error {
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
