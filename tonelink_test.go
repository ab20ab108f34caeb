package tonelink

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/opd-ai/tonelink/config"
	"github.com/opd-ai/tonelink/fec"
	"github.com/opd-ai/tonelink/interfaces"
	"github.com/opd-ai/tonelink/modem"
	"github.com/opd-ai/tonelink/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	codec, err := New(nil)
	require.NoError(t, err)

	cfg := codec.Configuration()
	assert.Equal(t, 8, cfg.PayloadLength())
	assert.Equal(t, 10*cfg.WordSamples(), codec.WindowSize())
}

func TestCodec_RoundTrip(t *testing.T) {
	options := NewOptions()
	options.Params.PayloadLength = 6

	codec, err := New(options)
	require.NoError(t, err)

	samples, err := codec.Encode([]byte("parrot"))
	require.NoError(t, err)
	assert.Len(t, samples, codec.WindowSize())

	payload, err := codec.Decode(context.Background(), interfaces.NewSliceSource(samples))
	require.NoError(t, err)
	assert.Equal(t, []byte("parrot"), payload)
}

func TestCodec_TransmitThroughChannel(t *testing.T) {
	options := NewOptions()
	options.Params.PayloadLength = 5
	options.FEC = fec.NewCRC8(nil)

	codec, err := New(options)
	require.NoError(t, err)

	ch := simulation.NewChannel(simulation.ChannelConfig{
		LeadingSamples:  15000,
		TrailingSamples: 15000,
		Gain:            0.5,
		NoiseRMS:        30,
		Seed:            21,
	})
	require.NoError(t, codec.Transmit(ch, []byte("hello")))
	require.NoError(t, codec.Transmit(ch, []byte("world")))

	var got []string
	err = codec.DecodeAll(context.Background(), ch, func(p []byte) error {
		got = append(got, string(p))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "world"}, got)
}

func TestCodec_DecodeMessage(t *testing.T) {
	options := NewOptions()
	options.Params.PayloadLength = 2
	codec, err := New(options)
	require.NoError(t, err)

	samples, err := codec.Encode([]byte("ok"))
	require.NoError(t, err)
	src := interfaces.NewSliceSource(append(make([]float64, 5000), samples...))

	msg, err := codec.DecodeMessage(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), msg.Payload)
	assert.InDelta(t, 5000, float64(msg.Offset), 64)
}

func TestCodec_Timeout(t *testing.T) {
	options := NewOptions()
	options.Receiver.ScanBudget = 10000
	codec, err := New(options)
	require.NoError(t, err)

	_, err = codec.Decode(context.Background(), interfaces.NewSliceSource(make([]float64, 50000)))
	assert.ErrorIs(t, err, modem.ErrSynchronizationTimeout)
}

func TestNew_ConfigFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codec.yaml")
	require.NoError(t, os.WriteFile(path, []byte("payload_length: 3\nchord_size: 3\n"), 0o600))
	t.Setenv(config.EnvPayloadLength, "4")

	options := NewOptions()
	options.ConfigFile = path
	codec, err := New(options)
	require.NoError(t, err)
	assert.Equal(t, 3, codec.Configuration().PayloadLength())
	assert.Equal(t, 3, codec.Configuration().Mapping().ChordSize())

	options.UseEnvironment = true
	codec, err = New(options)
	require.NoError(t, err)
	assert.Equal(t, 4, codec.Configuration().PayloadLength())
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
		target error
	}{
		{"negative power", func(o *Options) { o.RMSPower = -1 }, ErrInvalidOptions},
		{"bad params", func(o *Options) { o.Params.FrequencyMultiplier = 1 }, config.ErrConfiguration},
		{"bad receiver", func(o *Options) { o.Receiver.CrossRatio = 2 }, modem.ErrInvalidOptions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			options := NewOptions()
			tt.mutate(options)
			_, err := New(options)
			assert.ErrorIs(t, err, tt.target)
		})
	}

	options := NewOptions()
	options.ConfigFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := New(options)
	assert.Error(t, err)
}
