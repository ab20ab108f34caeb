package interfaces

import (
	"errors"
	"io"
	"sync"
)

// ErrSinkClosed indicates a write to a closed sample sink.
var ErrSinkClosed = errors.New("sample sink closed")

// ISampleSource supplies mono samples to a receiver, for example from a
// microphone capture loop or a decoded recording.
//
// ReadSamples follows io.Reader conventions: it fills up to len(p) samples,
// returns the number read, and returns io.EOF once the stream has ended.
// A source that has no data yet may block.
type ISampleSource interface {
	ReadSamples(p []float64) (n int, err error)
}

// ISampleSink consumes encoder output, for example a speaker playback queue
// or a recording writer.
type ISampleSink interface {
	// WriteSamples queues samples for playback or storage
	WriteSamples(samples []float64) error

	// Close flushes and releases the sink
	Close() error
}

// SliceSource is an ISampleSource over an in-memory buffer.
type SliceSource struct {
	mu      sync.Mutex
	samples []float64
	pos     int
}

// NewSliceSource returns a source that yields samples and then io.EOF.
func NewSliceSource(samples []float64) *SliceSource {
	return &SliceSource{samples: samples}
}

// ReadSamples implements ISampleSource.
func (s *SliceSource) ReadSamples(p []float64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pos >= len(s.samples) {
		return 0, io.EOF
	}
	n := copy(p, s.samples[s.pos:])
	s.pos += n
	return n, nil
}

// Remaining returns how many samples have not been read yet.
func (s *SliceSource) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.samples) - s.pos
}

// BufferSink is an ISampleSink that accumulates samples in memory.
type BufferSink struct {
	mu      sync.Mutex
	samples []float64
	closed  bool
}

// NewBufferSink returns an empty in-memory sink.
func NewBufferSink() *BufferSink {
	return &BufferSink{}
}

// WriteSamples implements ISampleSink.
func (b *BufferSink) WriteSamples(samples []float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrSinkClosed
	}
	b.samples = append(b.samples, samples...)
	return nil
}

// Close implements ISampleSink.
func (b *BufferSink) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Samples returns a copy of everything written so far.
func (b *BufferSink) Samples() []float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]float64(nil), b.samples...)
}
