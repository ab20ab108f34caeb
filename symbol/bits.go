package symbol

import (
	"bytes"
	"fmt"

	"github.com/icza/bitio"
	"github.com/opd-ai/tonelink/limits"
)

// WordCount returns how many bits-wide words carry byteLen bytes.
func WordCount(byteLen, bits int) int {
	if byteLen <= 0 || bits <= 0 {
		return 0
	}
	return (byteLen*8 + bits - 1) / bits
}

// Pack splits data into bits-wide word values, most significant bit first.
// The last word is padded with zero bits.
func Pack(data []byte, bits int) ([]uint32, error) {
	if bits <= 0 || bits > limits.MaxBitsPerWord {
		return nil, fmt.Errorf("%w: word width %d bits", ErrInvalidValue, bits)
	}
	count := WordCount(len(data), bits)
	padded := make([]byte, (count*bits+7)/8)
	copy(padded, data)

	r := bitio.NewReader(bytes.NewReader(padded))
	values := make([]uint32, count)
	for i := range values {
		v, err := r.ReadBits(uint8(bits))
		if err != nil {
			return nil, fmt.Errorf("reading word %d: %w", i, err)
		}
		values[i] = uint32(v)
	}
	return values, nil
}

// Unpack is the inverse of Pack: it concatenates bits-wide word values and
// returns the first byteLen bytes.
func Unpack(values []uint32, bits, byteLen int) ([]byte, error) {
	if bits <= 0 || bits > limits.MaxBitsPerWord {
		return nil, fmt.Errorf("%w: word width %d bits", ErrInvalidValue, bits)
	}
	if len(values)*bits < byteLen*8 {
		return nil, fmt.Errorf("%w: %d words of %d bits cannot hold %d bytes", ErrInvalidValue, len(values), bits, byteLen)
	}

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	mask := uint64(1)<<uint(bits) - 1
	for i, v := range values {
		if err := w.WriteBits(uint64(v)&mask, uint8(bits)); err != nil {
			return nil, fmt.Errorf("writing word %d: %w", i, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("flushing words: %w", err)
	}
	return buf.Bytes()[:byteLen], nil
}
