package modem

import (
	"io"
	"testing"

	"github.com/opd-ai/tonelink/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

func TestStream_Window(t *testing.T) {
	s := NewStream(interfaces.NewSliceSource(ramp(10000)))

	win, err := s.Window(5000, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{5000, 5001, 5002}, win)

	win, err = s.Window(9998, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{9998, 9999}, win)

	_, err = s.Window(9999, 2)
	assert.ErrorIs(t, err, io.EOF)

	_, err = s.Window(0, 0)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestStream_Discard(t *testing.T) {
	s := NewStream(interfaces.NewSliceSource(ramp(10000)))
	_, err := s.Window(0, 6000)
	require.NoError(t, err)

	s.Discard(4000)
	assert.Equal(t, int64(4000), s.Position())

	win, err := s.Window(4000, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{4000, 4001}, win)

	_, err = s.Window(3999, 1)
	assert.ErrorIs(t, err, ErrStreamDiscarded)

	s.Discard(100)
	assert.Equal(t, int64(4000), s.Position())

	s.Discard(1 << 20)
	assert.Equal(t, s.Buffered(), s.Position())
	win, err = s.Window(s.Position(), 1)
	require.NoError(t, err)
	assert.Equal(t, float64(s.Position()), win[0])
}

func TestStream_NoProgress(t *testing.T) {
	s := NewStream(stalledSource{})
	_, err := s.Window(0, 10)
	assert.ErrorIs(t, err, io.ErrNoProgress)
}

func TestStream_WindowPadded(t *testing.T) {
	s := NewStream(interfaces.NewSliceSource(ramp(100)))

	win, err := s.WindowPadded(95, 8, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{95, 96, 97, 98, 99, 0, 0, 0}, win)

	_, err = s.WindowPadded(95, 9, 3)
	assert.ErrorIs(t, err, io.EOF)

	win, err = s.WindowPadded(10, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 11}, win)
}
