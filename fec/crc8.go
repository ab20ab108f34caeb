package fec

import (
	"fmt"

	"github.com/sigurn/crc8"
	"github.com/sirupsen/logrus"
)

// CRC8 appends a CRC-8 checksum to the payload before handing it to an inner
// codec, and verifies it after the inner codec has decoded. It turns residual
// errors the inner codec missed into an explicit *UncorrectableError instead of
// silently returning a corrupted payload.
type CRC8 struct {
	inner Codec
	table *crc8.Table
}

// NewCRC8 wraps inner with a CRC-8 check. A nil inner codec means Passthrough.
func NewCRC8(inner Codec) *CRC8 {
	if inner == nil {
		inner = Passthrough{}
	}
	return &CRC8{
		inner: inner,
		table: crc8.MakeTable(crc8.CRC8),
	}
}

// Encode appends the checksum of payload and encodes the result with the inner codec.
func (c *CRC8) Encode(payload []byte) ([]byte, error) {
	framed := make([]byte, len(payload)+1)
	copy(framed, payload)
	framed[len(payload)] = crc8.Checksum(payload, c.table)
	return c.inner.Encode(framed)
}

// Decode decodes received with the inner codec and verifies the trailing checksum.
func (c *CRC8) Decode(received []byte) ([]byte, error) {
	framed, err := c.inner.Decode(received)
	if err != nil {
		return nil, err
	}
	if len(framed) == 0 {
		return nil, fmt.Errorf("%w: block too short for checksum", ErrUncorrectable)
	}

	payload := framed[:len(framed)-1]
	want := framed[len(framed)-1]
	got := crc8.Checksum(payload, c.table)
	if got != want {
		logrus.WithFields(logrus.Fields{
			"function":     "CRC8.Decode",
			"inner":        c.inner.Name(),
			"payload_size": len(payload),
			"crc_read":     want,
			"crc_computed": got,
		}).Warn("Payload checksum mismatch")
		return nil, &UncorrectableError{Errors: 1, Partial: append([]byte(nil), payload...)}
	}
	return append([]byte(nil), payload...), nil
}

// EncodedLen returns the inner codec's length for the payload plus one checksum byte.
func (c *CRC8) EncodedLen(payloadLen int) int {
	return c.inner.EncodedLen(payloadLen + 1)
}

// Name returns "crc8+" followed by the inner codec name.
func (c *CRC8) Name() string {
	return "crc8+" + c.inner.Name()
}
