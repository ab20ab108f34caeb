// Package config builds the immutable tonelink codec configuration.
//
// Raw parameters live in Params, which can come from code, a YAML file or
// TONELINK_* environment variables:
//
//	p, err := config.Load("tonelink.yaml") // or config.DefaultParams()
//	config.ApplyEnvironment(&p)
//	cfg, err := config.New(p, config.WithFEC(fec.NewCRC8(nil)))
//
// New validates everything once. A *Configuration never changes afterwards
// and every accessor returns copies, so one value is shared by encoders and
// receivers running concurrently.
//
// # Frequency Alphabet
//
// BuildFrequencyTable produces the geometric alphabet
// f[i] = FirstFrequency·FrequencyMultiplier^i. The highest pitch must be
// strictly below the Nyquist limit SampleRate/2.
//
// # Errors
//
// Every validation failure wraps ErrConfiguration.
package config
