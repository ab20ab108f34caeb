package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// defaultPool returns the 30 data pitches of a 32-pitch alphabet with triggers 9 and 25.
func defaultPool() []int {
	pool := make([]int, 0, 30)
	for i := 0; i < 32; i++ {
		if i != 9 && i != 25 {
			pool = append(pool, i)
		}
	}
	return pool
}

func TestBitsPerWord(t *testing.T) {
	tests := []struct {
		n, k int
		want int
	}{
		{n: 30, k: 2, want: 8},  // C = 435
		{n: 30, k: 1, want: 4},  // C = 30
		{n: 30, k: 4, want: 14}, // C = 27405
		{n: 8, k: 1, want: 3},   // C = 8, exact power of two
		{n: 4, k: 2, want: 2},   // C = 6
		{n: 2, k: 1, want: 1},
		{n: 1, k: 1, want: 0},
		{n: 5, k: 5, want: 0},
		{n: 64, k: 16, want: 32}, // capped
		{n: 0, k: 1, want: 0},
		{n: 3, k: 4, want: 0},
		{n: 3, k: 0, want: 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BitsPerWord(tt.n, tt.k), "BitsPerWord(%d, %d)", tt.n, tt.k)
	}
}

func TestNewMapping_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		pool      []int
		chordSize int
	}{
		{name: "zero_chord", pool: defaultPool(), chordSize: 0},
		{name: "chord_larger_than_pool", pool: []int{1, 2}, chordSize: 3},
		{name: "chord_above_limit", pool: defaultPool(), chordSize: 17},
		{name: "duplicate_pitch", pool: []int{1, 2, 2, 3}, chordSize: 1},
		{name: "single_chord_possible", pool: []int{4}, chordSize: 1},
		{name: "all_pitches_sound", pool: []int{1, 2, 3}, chordSize: 3},
		{name: "too_many_combinations", pool: make256(), chordSize: 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMapping(tt.pool, tt.chordSize)
			assert.ErrorIs(t, err, ErrInvalidMapping)
			assert.Nil(t, m)
		})
	}
}

func make256() []int {
	pool := make([]int, 256)
	for i := range pool {
		pool[i] = i
	}
	return pool
}

func TestMapping_RoundTripAllValues(t *testing.T) {
	m, err := NewMapping(defaultPool(), 2)
	require.NoError(t, err)
	require.Equal(t, 8, m.Bits())
	require.Equal(t, 2, m.ChordSize())

	seen := make(map[[2]int]bool)
	for v := uint32(0); v < 1<<8; v++ {
		chord, err := m.Chord(v)
		require.NoError(t, err)
		require.Len(t, chord, 2)
		assert.Less(t, chord[0], chord[1], "chord must be ascending")
		for _, p := range chord {
			assert.NotEqual(t, 9, p)
			assert.NotEqual(t, 25, p)
		}

		key := [2]int{chord[0], chord[1]}
		assert.False(t, seen[key], "chord %v emitted twice", chord)
		seen[key] = true

		got, err := m.Value(chord)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestMapping_RoundTripWideChords(t *testing.T) {
	m, err := NewMapping(defaultPool(), 4)
	require.NoError(t, err)
	require.Equal(t, 14, m.Bits())

	for _, v := range []uint32{0, 1, 2, 1000, 8191, 16383} {
		chord, err := m.Chord(v)
		require.NoError(t, err)
		got, err := m.Value(chord)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestMapping_ValueOrderInsensitive(t *testing.T) {
	m, err := NewMapping(defaultPool(), 3)
	require.NoError(t, err)

	chord, err := m.Chord(77)
	require.NoError(t, err)
	reversed := []int{chord[2], chord[1], chord[0]}

	got, err := m.Value(reversed)
	require.NoError(t, err)
	assert.Equal(t, uint32(77), got)
}

func TestMapping_Errors(t *testing.T) {
	m, err := NewMapping(defaultPool(), 2)
	require.NoError(t, err)

	_, err = m.Chord(256)
	assert.ErrorIs(t, err, ErrInvalidValue)

	tests := []struct {
		name  string
		chord []int
	}{
		{name: "too_few", chord: []int{0}},
		{name: "too_many", chord: []int{0, 1, 2}},
		{name: "trigger_pitch", chord: []int{0, 9}},
		{name: "out_of_range", chord: []int{0, 40}},
		{name: "repeated", chord: []int{3, 3}},
		{name: "unused_rank", chord: []int{30, 31}}, // last combination, rank 434
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Value(tt.chord)
			assert.ErrorIs(t, err, ErrInvalidChord)
		})
	}
}

func TestMapping_PoolIsCopied(t *testing.T) {
	pool := []int{5, 1, 3}
	m, err := NewMapping(pool, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5}, m.Pool())

	pool[0] = 99
	chord, err := m.Chord(0)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, chord)
}
