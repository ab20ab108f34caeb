package simulation

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrOutOfRange indicates an edit outside the buffered samples.
var ErrOutOfRange = errors.New("region outside channel buffer")

// ChannelConfig describes the simulated acoustic path.
type ChannelConfig struct {
	// LeadingSamples of noise precede every transmission.
	LeadingSamples int
	// TrailingSamples of noise follow every transmission.
	TrailingSamples int
	// Gain scales transmitted samples. Zero means 1.
	Gain float64
	// NoiseRMS is the standard deviation of additive white gaussian noise.
	NoiseRMS float64
	// Seed makes the noise reproducible.
	Seed uint64
}

// TransmissionRecord describes one transmission for test verification.
type TransmissionRecord struct {
	Offset  int // absolute position of the first transmitted sample
	Samples int // transmitted samples, excluding leading and trailing noise
}

// Channel is an in-memory acoustic channel. Transmitted waveforms are
// delayed, scaled and mixed with seeded noise; receivers read the result
// through ReadSamples.
//
// Channel implements interfaces.ISampleSink and interfaces.ISampleSource.
// All methods are safe for concurrent use.
type Channel struct {
	mu      sync.Mutex
	config  ChannelConfig
	rng     *rand.Rand
	samples []float64
	pos     int
	closed  bool
	log     []TransmissionRecord
}

// NewChannel creates an empty channel.
func NewChannel(config ChannelConfig) *Channel {
	if config.Gain == 0 {
		config.Gain = 1
	}
	logrus.WithFields(logrus.Fields{
		"function":  "NewChannel",
		"leading":   config.LeadingSamples,
		"trailing":  config.TrailingSamples,
		"gain":      config.Gain,
		"noise_rms": config.NoiseRMS,
	}).Debug("Creating simulated acoustic channel")

	return &Channel{
		config: config,
		rng:    rand.New(rand.NewPCG(config.Seed, config.Seed^0x9e3779b97f4a7c15)),
	}
}

// Transmit appends signal to the channel, surrounded by the configured
// leading and trailing noise.
func (c *Channel) Transmit(signal []float64) TransmissionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.appendNoise(c.config.LeadingSamples)
	record := TransmissionRecord{Offset: len(c.samples), Samples: len(signal)}
	for _, s := range signal {
		c.samples = append(c.samples, c.config.Gain*s+c.noise())
	}
	c.appendNoise(c.config.TrailingSamples)
	c.log = append(c.log, record)
	return record
}

// WriteSamples implements interfaces.ISampleSink by transmitting samples.
func (c *Channel) WriteSamples(samples []float64) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return fmt.Errorf("simulated channel: %w", io.ErrClosedPipe)
	}
	c.Transmit(samples)
	return nil
}

// Close stops accepting transmissions. Buffered samples stay readable.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// ReadSamples implements interfaces.ISampleSource. It returns io.EOF once
// every buffered sample has been read.
func (c *Channel) ReadSamples(p []float64) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pos >= len(c.samples) {
		return 0, io.EOF
	}
	n := copy(p, c.samples[c.pos:])
	c.pos += n
	return n, nil
}

// AddTone mixes a sinusoid of the given RMS level into [start, start+length),
// for example to corrupt the tones of one word.
func (c *Channel) AddTone(start, length int, frequency, sampleRate, rms float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkRegion(start, length); err != nil {
		return err
	}
	amplitude := rms * math.Sqrt2
	omega := 2 * math.Pi * frequency / sampleRate
	for n := 0; n < length; n++ {
		c.samples[start+n] += amplitude * math.Sin(omega*float64(n))
	}
	return nil
}

// Drop silences [start, start+length), simulating a capture drop-out.
func (c *Channel) Drop(start, length int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkRegion(start, length); err != nil {
		return err
	}
	clear(c.samples[start : start+length])
	return nil
}

// InsertBurst inserts length samples of white noise at position at, shifting
// everything after it. It simulates a clock slip or an interfering burst.
func (c *Channel) InsertBurst(at, length int, rms float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if at < c.pos || at > len(c.samples) || length < 0 {
		return fmt.Errorf("%w: insert of %d samples at %d", ErrOutOfRange, length, at)
	}
	burst := make([]float64, length)
	for i := range burst {
		burst[i] = rms * c.rng.NormFloat64()
	}
	c.samples = append(c.samples[:at], append(burst, c.samples[at:]...)...)
	return nil
}

// Samples returns a copy of every buffered sample, read or not.
func (c *Channel) Samples() []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]float64(nil), c.samples...)
}

// Transmissions returns a copy of the transmission log.
func (c *Channel) Transmissions() []TransmissionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]TransmissionRecord(nil), c.log...)
}

func (c *Channel) checkRegion(start, length int) error {
	if start < c.pos || length < 0 || start+length > len(c.samples) {
		return fmt.Errorf("%w: [%d, %d) of %d samples", ErrOutOfRange, start, start+length, len(c.samples))
	}
	return nil
}

func (c *Channel) appendNoise(n int) {
	for i := 0; i < n; i++ {
		c.samples = append(c.samples, c.noise())
	}
}

func (c *Channel) noise() float64 {
	if c.config.NoiseRMS == 0 {
		return 0
	}
	return c.config.NoiseRMS * c.rng.NormFloat64()
}
