package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Environment variables recognized by ApplyEnvironment.
const (
	EnvSampleRate          = "TONELINK_SAMPLE_RATE"
	EnvFirstFrequency      = "TONELINK_FIRST_FREQUENCY"
	EnvFrequencyMultiplier = "TONELINK_FREQUENCY_MULTIPLIER"
	EnvWordDuration        = "TONELINK_WORD_DURATION"
	EnvPayloadLength       = "TONELINK_PAYLOAD_LENGTH"
	EnvPitchCount          = "TONELINK_PITCH_COUNT"
	EnvTriggerPitches      = "TONELINK_TRIGGER_PITCHES"
	EnvChordSize           = "TONELINK_CHORD_SIZE"
	EnvTrailerWords        = "TONELINK_TRAILER_WORDS"
)

// ApplyEnvironment overrides fields of p from TONELINK_* environment variables.
// Values that fail to parse are logged and ignored, keeping the current value.
// Range checks are left to New.
func ApplyEnvironment(p *Params) {
	parseFloatSetting(EnvSampleRate, &p.SampleRate)
	parseFloatSetting(EnvFirstFrequency, &p.FirstFrequency)
	parseFloatSetting(EnvFrequencyMultiplier, &p.FrequencyMultiplier)
	parseFloatSetting(EnvWordDuration, &p.WordDuration)
	parseIntSetting(EnvPayloadLength, &p.PayloadLength)
	parseIntSetting(EnvPitchCount, &p.PitchCount)
	parseIntSetting(EnvChordSize, &p.ChordSize)
	parseIntSetting(EnvTrailerWords, &p.TrailerWords)
	parseTriggerSetting(p)
}

// parseFloatSetting updates *dst from the float environment variable name.
func parseFloatSetting(name string, dst *float64) {
	raw := os.Getenv(name)
	if raw == "" {
		return
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "parseFloatSetting",
			"env_var":     name,
			"value":       raw,
			"error":       err.Error(),
			"using_value": *dst,
		}).Warn("Failed to parse environment variable, using current value")
		return
	}
	*dst = v
}

// parseIntSetting updates *dst from the integer environment variable name.
func parseIntSetting(name string, dst *int) {
	raw := os.Getenv(name)
	if raw == "" {
		return
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "parseIntSetting",
			"env_var":     name,
			"value":       raw,
			"error":       err.Error(),
			"using_value": *dst,
		}).Warn("Failed to parse environment variable, using current value")
		return
	}
	*dst = v
}

// parseTriggerSetting updates the trigger pitches from a comma separated list
// such as "9,25". The whole list is ignored if any element fails to parse.
func parseTriggerSetting(p *Params) {
	raw := os.Getenv(EnvTriggerPitches)
	if raw == "" {
		return
	}
	fields := strings.Split(raw, ",")
	triggers := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "parseTriggerSetting",
				"env_var":     EnvTriggerPitches,
				"value":       raw,
				"error":       err.Error(),
				"using_value": p.TriggerPitches,
			}).Warn("Failed to parse environment variable, using current value")
			return
		}
		triggers = append(triggers, v)
	}
	p.TriggerPitches = triggers
}
