// Package symbol maps payload bits to chords and back.
//
// Mapping is the one shared correspondence between a data word's value and
// the set of data pitches sounding in it. Pack and Unpack cut the carried byte
// stream into word-sized values and reassemble it. Encoder and decoder both go
// through this package, so a value always survives Chord followed by Value.
package symbol
