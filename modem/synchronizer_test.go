package modem

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/opd-ai/tonelink/config"
	"github.com/opd-ai/tonelink/dsp"
	"github.com/opd-ai/tonelink/interfaces"
	"github.com/opd-ai/tonelink/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func synchronize(t *testing.T, cfg *config.Configuration, opts ReceiverOptions, src interfaces.ISampleSource) (int64, error) {
	t.Helper()
	s, err := NewSynchronizer(cfg, opts)
	require.NoError(t, err)
	return s.Synchronize(context.Background(), NewStream(src), 0)
}

func TestSynchronizer_CleanSignal(t *testing.T) {
	cfg := testConfig(t, 4, nil)
	signal := encode(t, cfg, []byte("tone"))

	for _, lead := range []int{0, 1, 777, 12345} {
		ch := simulation.NewChannel(simulation.ChannelConfig{LeadingSamples: lead})
		ch.Transmit(signal)

		offset, err := synchronize(t, cfg, NewReceiverOptions(), ch)
		require.NoError(t, err, "lead %d", lead)
		assert.InDelta(t, float64(lead), float64(offset), 64, "lead %d", lead)
	}
}

func TestSynchronizer_NoisyChannel(t *testing.T) {
	cfg := testConfig(t, 4, nil)
	ch := simulation.NewChannel(simulation.ChannelConfig{
		LeadingSamples: 20000,
		Gain:           0.4,
		NoiseRMS:       40,
		Seed:           7,
	})
	ch.Transmit(encode(t, cfg, []byte("tone")))

	offset, err := synchronize(t, cfg, NewReceiverOptions(), ch)
	require.NoError(t, err)
	assert.InDelta(t, 20000, float64(offset), float64(cfg.WordSamples()/8))
}

func TestSynchronizer_CorruptedDataTones(t *testing.T) {
	cfg := testConfig(t, 4, nil)
	w := cfg.WordSamples()
	ch := simulation.NewChannel(simulation.ChannelConfig{LeadingSamples: 5000})
	rec := ch.Transmit(encode(t, cfg, []byte("tone")))

	// Loud extra data pitches in every data word.
	for i := 2; i < 6; i++ {
		require.NoError(t, ch.AddTone(rec.Offset+i*w, w, cfg.Frequency(i+3), cfg.SampleRate(), 2*testPower))
	}
	// A weak data pitch inside each calibration word.
	require.NoError(t, ch.AddTone(rec.Offset, w, cfg.Frequency(4), cfg.SampleRate(), 0.3*testPower))
	require.NoError(t, ch.AddTone(rec.Offset+w, w, cfg.Frequency(17), cfg.SampleRate(), 0.3*testPower))

	offset, err := synchronize(t, cfg, NewReceiverOptions(), ch)
	require.NoError(t, err)
	assert.InDelta(t, 5000, float64(offset), 64)
}

func TestSynchronizer_DataWordsAreNotCalibration(t *testing.T) {
	cfg := testConfig(t, 4, nil)
	signal := encode(t, cfg, []byte("tone"))

	_, err := synchronize(t, cfg, NewReceiverOptions(), interfaces.NewSliceSource(signal[2*cfg.WordSamples():]))
	assert.ErrorIs(t, err, ErrSynchronizationTimeout)
	assert.ErrorIs(t, err, io.EOF)
}

func TestSynchronizer_NoiseOnly(t *testing.T) {
	cfg := testConfig(t, 4, nil)
	ch := simulation.NewChannel(simulation.ChannelConfig{LeadingSamples: 100000, NoiseRMS: 300, Seed: 3})
	ch.Transmit(nil)

	_, err := synchronize(t, cfg, NewReceiverOptions(), ch)
	assert.ErrorIs(t, err, ErrSynchronizationTimeout)
	assert.ErrorIs(t, err, io.EOF)
}

func TestSynchronizer_ScanBudget(t *testing.T) {
	cfg := testConfig(t, 4, nil)
	opts := NewReceiverOptions()
	opts.ScanBudget = 50000

	_, err := synchronize(t, cfg, opts, zeroSource{})
	assert.ErrorIs(t, err, ErrSynchronizationTimeout)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestSynchronizer_Cancellation(t *testing.T) {
	cfg := testConfig(t, 4, nil)
	s, err := NewSynchronizer(cfg, NewReceiverOptions())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Synchronize(ctx, NewStream(zeroSource{}), 0)
	assert.ErrorIs(t, err, context.Canceled)

	ctx, cancel = context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = s.Synchronize(ctx, NewStream(zeroSource{}), 0)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSynchronizer_DeterministicAtThreshold(t *testing.T) {
	cfg := testConfig(t, 4, nil)
	signal := encode(t, cfg, []byte("tone"))
	w := cfg.WordSamples()

	// The exact trigger-to-RMS ratio of the aligned first calibration word.
	levels, err := dsp.GeneralizedGoertzel(signal[:w], cfg.SampleRate(), []float64{cfg.Frequency(9)})
	require.NoError(t, err)
	rms, err := dsp.RMS(signal[:w])
	require.NoError(t, err)
	ratio := levels[0] / rms

	for _, triggerRatio := range []float64{ratio, ratio * 1.05} {
		opts := NewReceiverOptions()
		opts.TriggerRatio = triggerRatio

		offset, firstErr := synchronize(t, cfg, opts, interfaces.NewSliceSource(signal))
		for run := 0; run < 5; run++ {
			again, err := synchronize(t, cfg, opts, interfaces.NewSliceSource(signal))
			assert.Equal(t, firstErr == nil, err == nil, "ratio %v run %d", triggerRatio, run)
			assert.Equal(t, offset, again, "ratio %v run %d", triggerRatio, run)
		}
	}

	opts := NewReceiverOptions()
	opts.TriggerRatio = ratio * 1.05
	_, err = synchronize(t, cfg, opts, interfaces.NewSliceSource(signal))
	assert.ErrorIs(t, err, ErrSynchronizationTimeout)
}

func TestSynchronizer_Realign(t *testing.T) {
	cfg := testConfig(t, 4, nil)
	w := cfg.WordSamples()
	signal := encode(t, cfg, []byte("tone"))

	s, err := NewSynchronizer(cfg, NewReceiverOptions())
	require.NoError(t, err)
	stream := NewStream(interfaces.NewSliceSource(signal))

	truth := int64(3 * w)
	aligned, err := s.Realign(context.Background(), stream, truth+700, w/2)
	require.NoError(t, err)
	assert.InDelta(t, float64(truth), float64(aligned), 200)
}

func TestNewSynchronizer_InvalidOptions(t *testing.T) {
	cfg := testConfig(t, 4, nil)
	tests := []struct {
		name   string
		mutate func(*ReceiverOptions)
	}{
		{"negative step", func(o *ReceiverOptions) { o.Step = -1 }},
		{"step longer than word", func(o *ReceiverOptions) { o.Step = cfg.WordSamples() + 1 }},
		{"zero refine step", func(o *ReceiverOptions) { o.RefineStep = 0 }},
		{"zero trigger ratio", func(o *ReceiverOptions) { o.TriggerRatio = 0 }},
		{"cross ratio one", func(o *ReceiverOptions) { o.CrossRatio = 1 }},
		{"threshold above one", func(o *ReceiverOptions) { o.ThresholdRatio = 1.5 }},
		{"zero budget", func(o *ReceiverOptions) { o.ScanBudget = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := NewReceiverOptions()
			tt.mutate(&opts)
			_, err := NewSynchronizer(cfg, opts)
			assert.ErrorIs(t, err, ErrInvalidOptions)
		})
	}
}

func TestNewSynchronizer_DefaultStep(t *testing.T) {
	cfg := testConfig(t, 4, nil)
	s, err := NewSynchronizer(cfg, NewReceiverOptions())
	require.NoError(t, err)
	assert.Equal(t, cfg.WordSamples()/8, s.Options().Step)
}
