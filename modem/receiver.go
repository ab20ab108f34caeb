package modem

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/opd-ai/tonelink/config"
	"github.com/opd-ai/tonelink/fec"
	"github.com/opd-ai/tonelink/interfaces"
	"github.com/opd-ai/tonelink/symbol"
	"github.com/sirupsen/logrus"
)

// Message is one received payload.
type Message struct {
	// Payload is the decoded payload. After an uncorrectable FEC block it holds
	// the codec's best-effort partial payload, possibly nil.
	Payload []byte
	// Offset is the absolute position of the first calibration word.
	Offset int64
	// End is the absolute position just past the last word.
	End int64
	// Resynced reports whether a data word needed realignment.
	Resynced bool
}

// Receiver locates and decodes messages.
//
// A rejected data word triggers one realignment per message; a second
// rejection fails the message with ErrDecodeFailure.
type Receiver struct {
	cfg     *config.Configuration
	sync    *Synchronizer
	decoder *Decoder
	layout  Layout
	opts    ReceiverOptions
}

// NewReceiver creates a receiver for messages of the configured payload length.
func NewReceiver(cfg *config.Configuration, opts ReceiverOptions) (*Receiver, error) {
	sync, err := NewSynchronizer(cfg, opts)
	if err != nil {
		return nil, err
	}
	decoder, err := NewDecoder(cfg, opts)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":      "NewReceiver",
		"step":          sync.opts.Step,
		"refine_step":   sync.opts.RefineStep,
		"scan_budget":   sync.opts.ScanBudget,
		"workers":       sync.opts.Workers,
		"payload_bytes": cfg.PayloadLength(),
	}).Info("Receiver created")

	return &Receiver{
		cfg:     cfg,
		sync:    sync,
		decoder: decoder,
		layout:  NewLayout(cfg, cfg.PayloadLength()),
		opts:    sync.opts,
	}, nil
}

// Receive decodes the first message found in src.
func (r *Receiver) Receive(ctx context.Context, src interfaces.ISampleSource) (*Message, error) {
	return r.ReceiveStream(ctx, NewStream(src), 0)
}

// ReceiveEach decodes every message in src and passes each to fn, until src
// ends, ctx is cancelled, or fn returns an error. Undecodable messages are
// logged and skipped. The end of src is not an error.
func (r *Receiver) ReceiveEach(ctx context.Context, src interfaces.ISampleSource, fn func(*Message) error) error {
	stream := NewStream(src)
	var from int64
	for {
		msg, err := r.ReceiveStream(ctx, stream, from)
		switch {
		case err == nil:
			if err := fn(msg); err != nil {
				return err
			}
			from = msg.End
		case errors.Is(err, ErrSynchronizationTimeout):
			if errors.Is(err, io.EOF) {
				return nil
			}
			from = stream.Position()
		case errors.Is(err, ErrDecodeFailure), errors.Is(err, fec.ErrUncorrectable):
			logrus.WithFields(logrus.Fields{
				"function": "Receiver.ReceiveEach",
				"from":     from,
				"error":    err.Error(),
			}).Warn("Skipping undecodable message")
			if msg != nil {
				from = msg.Offset + int64(r.layout.WordSamples)
			} else {
				from += int64(r.layout.WordSamples)
			}
		default:
			return err
		}
	}
}

// ReceiveStream synchronizes on stream from absolute position from and decodes
// the message found there. On success, samples before the message end are
// discarded.
//
// Failures wrap ErrSynchronizationTimeout, ErrDecodeFailure, or
// fec.ErrUncorrectable. After a decode failure or an uncorrectable block the
// returned Message is non-nil and carries the offset; for an uncorrectable
// block it also carries the partial payload.
func (r *Receiver) ReceiveStream(ctx context.Context, stream *Stream, from int64) (*Message, error) {
	offset, err := r.sync.Synchronize(ctx, stream, from)
	if err != nil {
		if errors.Is(err, ErrSynchronizationTimeout) {
			r.opts.Metrics.message(ResultTimeout)
		}
		return nil, err
	}

	msg := &Message{Offset: offset}
	values, next, err := r.decodeData(ctx, stream, msg)
	if err != nil {
		r.opts.Metrics.message(ResultFailed)
		logrus.WithFields(logrus.Fields{
			"function": "Receiver.ReceiveStream",
			"offset":   offset,
			"error":    err.Error(),
		}).Warn("Message decoding failed")
		return msg, err
	}
	msg.End = r.checkTrailer(stream, next)

	carried, err := symbol.Unpack(values, r.cfg.Mapping().Bits(), r.cfg.CarriedLength())
	if err != nil {
		r.opts.Metrics.message(ResultFailed)
		return msg, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}
	payload, err := r.cfg.FEC().Decode(carried)
	if err != nil {
		var uerr *fec.UncorrectableError
		if errors.As(err, &uerr) {
			msg.Payload = uerr.Partial
		}
		r.opts.Metrics.message(ResultUncorrectable)
		logrus.WithFields(logrus.Fields{
			"function": "Receiver.ReceiveStream",
			"offset":   offset,
			"fec":      r.cfg.FEC().Name(),
			"error":    err.Error(),
		}).Warn("Payload could not be corrected")
		return msg, fmt.Errorf("decoding %s block: %w", r.cfg.FEC().Name(), err)
	}
	msg.Payload = payload

	stream.Discard(msg.End)
	r.opts.Metrics.message(ResultDecoded)
	logrus.WithFields(logrus.Fields{
		"function":     "Receiver.ReceiveStream",
		"offset":       msg.Offset,
		"end":          msg.End,
		"payload_size": len(payload),
		"resynced":     msg.Resynced,
	}).Info("Message received")

	return msg, nil
}

// decodeData decodes every data word and returns the word values and the
// position just past the last one.
func (r *Receiver) decodeData(ctx context.Context, stream *Stream, msg *Message) ([]uint32, int64, error) {
	w := int64(r.layout.WordSamples)
	pos := msg.Offset + int64(r.layout.DataOffset())
	values := make([]uint32, 0, r.layout.DataWords)

	for i := 0; i < r.layout.DataWords; i++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, fmt.Errorf("decoding stopped at word %d: %w", i, err)
		}
		word, err := r.decodeAt(stream, i, pos)
		if err != nil && errors.Is(err, ErrSymbolConfidence) && !msg.Resynced {
			r.opts.Metrics.wordRejected()
			r.opts.Metrics.resynced()
			msg.Resynced = true
			logrus.WithFields(logrus.Fields{
				"function": "Receiver.decodeData",
				"word":     i,
				"position": pos,
				"error":    err.Error(),
			}).Info("Word rejected, realigning")

			aligned, rerr := r.sync.Realign(ctx, stream, pos, r.layout.WordSamples/2)
			if rerr != nil {
				return nil, 0, fmt.Errorf("%w: %w", ErrDecodeFailure, rerr)
			}
			pos = aligned
			word, err = r.decodeAt(stream, i, pos)
		}
		if err != nil {
			if errors.Is(err, ErrSymbolConfidence) {
				r.opts.Metrics.wordRejected()
			}
			return nil, 0, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
		}

		r.opts.Metrics.wordDecoded()
		values = append(values, word.Value)
		pos += w
	}
	return values, pos, nil
}

func (r *Receiver) decodeAt(stream *Stream, index int, pos int64) (*Word, error) {
	samples, err := stream.WindowPadded(pos, r.layout.WordSamples, r.opts.Step)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("stream ended before data word %d: %w", index, err)
		}
		return nil, err
	}
	return r.decoder.DecodeWord(index, samples)
}

// checkTrailer verifies the closing words starting at pos and returns the
// position just past them. Missing trailer tones are logged, not fatal.
func (r *Receiver) checkTrailer(stream *Stream, pos int64) int64 {
	w := int64(r.layout.WordSamples)
	for i := 0; i < r.layout.TrailerWords; i++ {
		samples, err := stream.WindowPadded(pos, r.layout.WordSamples, r.opts.Step)
		if err == nil {
			var missing []int
			if missing, err = r.decoder.CheckCalibration(samples); err == nil && len(missing) > 0 {
				r.opts.Metrics.trailerMismatch()
				logrus.WithFields(logrus.Fields{
					"function": "Receiver.checkTrailer",
					"word":     i,
					"missing":  missing,
				}).Warn("Trailer word is missing trigger tones")
			}
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Receiver.checkTrailer",
				"word":     i,
				"error":    err.Error(),
			}).Debug("Trailer word unavailable")
		}
		pos += w
	}
	return pos
}
