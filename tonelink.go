package tonelink

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/opd-ai/tonelink/config"
	"github.com/opd-ai/tonelink/fec"
	"github.com/opd-ai/tonelink/interfaces"
	"github.com/opd-ai/tonelink/modem"
	"github.com/sirupsen/logrus"
)

// DefaultRMSPower is the transmit level used when Options.RMSPower is zero.
const DefaultRMSPower = 500.0

// ErrInvalidOptions indicates facade options that cannot build a codec.
var ErrInvalidOptions = errors.New("invalid codec options")

// Options contains codec configuration.
type Options struct {
	// Params are the codec parameters. Ignored when ConfigFile is set.
	Params config.Params
	// ConfigFile is an optional YAML parameter file.
	ConfigFile string
	// UseEnvironment applies TONELINK_* environment overrides to the parameters.
	UseEnvironment bool
	// RMSPower is the total RMS level of every transmitted word.
	RMSPower float64
	// FEC is the forward-error-correction codec; nil means fec.Passthrough.
	FEC fec.Codec
	// Receiver tunes synchronization and decoding.
	Receiver modem.ReceiverOptions
}

// NewOptions returns the default options.
func NewOptions() *Options {
	return &Options{
		Params:   config.DefaultParams(),
		RMSPower: DefaultRMSPower,
		Receiver: modem.NewReceiverOptions(),
	}
}

// Codec is the transmit and receive facade over a single configuration.
// It is safe for concurrent use.
type Codec struct {
	options  Options
	cfg      *config.Configuration
	encoder  *modem.Encoder
	receiver *modem.Receiver
}

// New creates a codec. A nil options means NewOptions().
func New(options *Options) (*Codec, error) {
	if options == nil {
		options = NewOptions()
	}
	opts := *options
	if opts.RMSPower == 0 {
		opts.RMSPower = DefaultRMSPower
	}
	if !(opts.RMSPower > 0) || math.IsInf(opts.RMSPower, 0) {
		return nil, fmt.Errorf("%w: RMS power %v", ErrInvalidOptions, opts.RMSPower)
	}

	params := opts.Params
	if opts.ConfigFile != "" {
		loaded, err := config.Load(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		params = loaded
	}
	if opts.UseEnvironment {
		config.ApplyEnvironment(&params)
	}

	var cfgOpts []config.Option
	if opts.FEC != nil {
		cfgOpts = append(cfgOpts, config.WithFEC(opts.FEC))
	}
	cfg, err := config.New(params, cfgOpts...)
	if err != nil {
		return nil, err
	}
	receiver, err := modem.NewReceiver(cfg, opts.Receiver)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":     "New",
		"config_file":  opts.ConfigFile,
		"rms_power":    opts.RMSPower,
		"payload_size": cfg.PayloadLength(),
		"window_size":  modem.WindowSize(cfg, cfg.PayloadLength()),
	}).Info("Codec created")

	return &Codec{
		options:  opts,
		cfg:      cfg,
		encoder:  modem.NewEncoder(cfg),
		receiver: receiver,
	}, nil
}

// Configuration returns the validated configuration.
func (c *Codec) Configuration() *config.Configuration {
	return c.cfg
}

// WindowSize returns the length in samples of one message.
func (c *Codec) WindowSize() int {
	return modem.WindowSize(c.cfg, c.cfg.PayloadLength())
}

// Encode returns the waveform carrying payload.
func (c *Codec) Encode(payload []byte) ([]float64, error) {
	return c.encoder.Encode(c.options.RMSPower, payload)
}

// Transmit encodes payload and writes the waveform to sink.
func (c *Codec) Transmit(sink interfaces.ISampleSink, payload []byte) error {
	return c.encoder.EncodeTo(sink, c.options.RMSPower, payload)
}

// Decode returns the payload of the first message in src.
func (c *Codec) Decode(ctx context.Context, src interfaces.ISampleSource) ([]byte, error) {
	msg, err := c.receiver.Receive(ctx, src)
	if err != nil {
		return nil, err
	}
	return msg.Payload, nil
}

// DecodeMessage returns the first message in src with its position. On an
// uncorrectable FEC block the message carries the partial payload.
func (c *Codec) DecodeMessage(ctx context.Context, src interfaces.ISampleSource) (*modem.Message, error) {
	return c.receiver.Receive(ctx, src)
}

// DecodeAll passes the payload of every message in src to fn until src ends.
func (c *Codec) DecodeAll(ctx context.Context, src interfaces.ISampleSource, fn func(payload []byte) error) error {
	return c.receiver.ReceiveEach(ctx, src, func(m *modem.Message) error {
		return fn(m.Payload)
	})
}
