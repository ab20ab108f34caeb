// Package pcm converts between the codec's float64 samples and the 16-bit
// PCM used at the audio boundary.
//
// Quantize and Dequantize map a configurable full-scale level to the int16
// range, clipping and logging overflow. Int16Source and Int16Sink adapt raw
// little-endian PCM streams to the interfaces.ISampleSource and
// interfaces.ISampleSink contracts, and FLACSource and WriteFLAC do the same
// for FLAC recordings:
//
//	f, _ := os.Open("capture.flac")
//	src, err := pcm.NewFLACSource(f, pcm.DefaultFullScale)
//	msg, err := receiver.Receive(ctx, src)
package pcm
