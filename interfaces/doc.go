// Package interfaces defines the audio I/O boundary of tonelink.
//
// Capturing from a microphone, playing through a speaker, or reading and
// writing audio files are external collaborators. The codec only sees them
// through two contracts:
//
// [ISampleSource] supplies mono float64 samples to a receiver with io.Reader
// semantics:
//
//	type Capture struct{ dev *Device }
//
//	func (c *Capture) ReadSamples(p []float64) (int, error) {
//	    return c.dev.Read(p)
//	}
//
// [ISampleSink] consumes encoder output:
//
//	samples, err := codec.Encode(payload)
//	err = sink.WriteSamples(samples)
//
// SliceSource and BufferSink are in-memory implementations used by tests and
// by callers that already hold the whole recording.
package interfaces
