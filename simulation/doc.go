// Package simulation provides an in-memory acoustic channel for deterministic
// testing of the tonelink modem.
//
// # Overview
//
// A Channel stands in for the speaker, the air and the microphone. Encoded
// waveforms are transmitted into it and a receiver reads them back through the
// interfaces.ISampleSource contract, so tests exercise the real receive path
// without audio hardware:
//
//	ch := simulation.NewChannel(simulation.ChannelConfig{
//	    LeadingSamples: 10000,
//	    NoiseRMS:       25,
//	    Seed:           1,
//	})
//	ch.Transmit(samples)
//	msg, err := receiver.Receive(ctx, ch)
//
// # Impairments
//
// The configuration adds a leading delay, a gain and additive white gaussian
// noise. AddTone, Drop and InsertBurst edit the buffered signal afterwards to
// corrupt single tones, silence a word or slip the timing.
//
// Noise comes from a PCG generator seeded by ChannelConfig.Seed, so every run
// of a test sees the same samples.
package simulation
