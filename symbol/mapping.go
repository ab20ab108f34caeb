package symbol

import (
	"fmt"
	"math"
	"sort"

	"github.com/opd-ai/tonelink/limits"
	"gonum.org/v1/gonum/stat/combin"
)

// maxCombinations bounds C(n, k) so that gonum's integer binomials cannot overflow.
const maxCombinations = 1 << 62

// Mapping is the single bit↔chord correspondence shared by the encoder and the
// decoder.
//
// A data word sounds exactly ChordSize pitches chosen from the data pitch pool
// (every non-trigger pitch). The C(len(pool), ChordSize) possible chords are
// ranked in lexicographic order with the combinatorial number system; the first
// 2^Bits ranks carry a Bits-wide value and the rest are never emitted.
//
// Mapping is immutable and safe for concurrent use.
type Mapping struct {
	pool      []int
	position  map[int]int
	chordSize int
	bits      int
}

// NewMapping builds the mapping over pool, the ascending data pitch indices.
// Returns ErrInvalidMapping when the pool has duplicates, the chord size is out
// of range, or the pool cannot carry at least one bit per word.
func NewMapping(pool []int, chordSize int) (*Mapping, error) {
	if chordSize <= 0 || chordSize > limits.MaxChordSize {
		return nil, fmt.Errorf("%w: chord size %d outside [1, %d]", ErrInvalidMapping, chordSize, limits.MaxChordSize)
	}
	if chordSize > len(pool) {
		return nil, fmt.Errorf("%w: chord size %d exceeds %d data pitches", ErrInvalidMapping, chordSize, len(pool))
	}

	sorted := append([]int(nil), pool...)
	sort.Ints(sorted)
	position := make(map[int]int, len(sorted))
	for i, p := range sorted {
		if _, dup := position[p]; dup {
			return nil, fmt.Errorf("%w: duplicate data pitch %d", ErrInvalidMapping, p)
		}
		position[p] = i
	}

	combinations := binomialSaturating(len(sorted), chordSize)
	if combinations > maxCombinations {
		return nil, fmt.Errorf("%w: C(%d, %d) is too large", ErrInvalidMapping, len(sorted), chordSize)
	}
	bits := BitsPerWord(len(sorted), chordSize)
	if bits < 1 {
		return nil, fmt.Errorf("%w: C(%d, %d) = %d chords cannot carry a bit", ErrInvalidMapping, len(sorted), chordSize, combinations)
	}

	return &Mapping{
		pool:      sorted,
		position:  position,
		chordSize: chordSize,
		bits:      bits,
	}, nil
}

// Bits returns how many payload bits one data word carries.
func (m *Mapping) Bits() int {
	return m.bits
}

// ChordSize returns how many data pitches sound in each data word.
func (m *Mapping) ChordSize() int {
	return m.chordSize
}

// Pool returns a copy of the data pitch pool.
func (m *Mapping) Pool() []int {
	return append([]int(nil), m.pool...)
}

// Chord returns the ascending pitch indices that encode value.
func (m *Mapping) Chord(value uint32) ([]int, error) {
	if uint64(value) >= uint64(1)<<uint(m.bits) {
		return nil, fmt.Errorf("%w: %d does not fit in %d bits", ErrInvalidValue, value, m.bits)
	}
	positions := combin.IndexToCombination(nil, int(value), len(m.pool), m.chordSize)
	chord := make([]int, len(positions))
	for i, pos := range positions {
		chord[i] = m.pool[pos]
	}
	return chord, nil
}

// Value returns the word value encoded by chord, the inverse of Chord.
// The pitches may be given in any order.
func (m *Mapping) Value(chord []int) (uint32, error) {
	if len(chord) != m.chordSize {
		return 0, fmt.Errorf("%w: %d pitches, want %d", ErrInvalidChord, len(chord), m.chordSize)
	}
	positions := make([]int, len(chord))
	for i, p := range chord {
		pos, ok := m.position[p]
		if !ok {
			return 0, fmt.Errorf("%w: pitch %d is not a data pitch", ErrInvalidChord, p)
		}
		positions[i] = pos
	}
	sort.Ints(positions)
	for i := 1; i < len(positions); i++ {
		if positions[i] == positions[i-1] {
			return 0, fmt.Errorf("%w: pitch %d repeated", ErrInvalidChord, m.pool[positions[i]])
		}
	}

	rank := combin.CombinationIndex(positions, len(m.pool), m.chordSize)
	if uint64(rank) >= uint64(1)<<uint(m.bits) {
		return 0, fmt.Errorf("%w: rank %d is not used by %d-bit words", ErrInvalidChord, rank, m.bits)
	}
	return uint32(rank), nil
}

// BitsPerWord returns ⌊log2 C(n, k)⌋ capped at limits.MaxBitsPerWord, or 0 when
// the arguments do not describe a valid selection.
func BitsPerWord(n, k int) int {
	if n <= 0 || k <= 0 || k > n {
		return 0
	}
	c := binomialSaturating(n, k)
	bits := 0
	for bits < limits.MaxBitsPerWord && c >= uint64(1)<<uint(bits+1) {
		bits++
	}
	return bits
}

// binomialSaturating returns C(n, k), saturating at just above maxCombinations.
func binomialSaturating(n, k int) uint64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	c := uint64(1)
	for i := 1; i <= k; i++ {
		// c = C(n-k+i, i); each step is an exact division and never decreases c.
		factor := uint64(n - k + i)
		if c > math.MaxUint64/factor {
			return maxCombinations + 1
		}
		c = c * factor / uint64(i)
		if c > maxCombinations {
			return maxCombinations + 1
		}
	}
	return c
}
